package planner

import (
	"strings"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

// Micro-behaviors layered onto every reply so the persona reads like a
// person typing, not a service answering. Fear spikes when money is on
// the table, hesitation when the scammer pushes a link or payment.

var delayPhrases = []string{
	"Let me check...",
	"Wait, give me a moment...",
	"Hold on, I need to find...",
	"Just a second...",
	"Let me get my glasses...",
}

var fearPhrases = []string{
	"I'm getting worried about this.",
	"This is making me nervous.",
	"Should I be concerned?",
	"I'm scared something bad will happen.",
	"What if I do something wrong?",
}

var hesitationPhrases = []string{
	"I'm not sure about this...",
	"I don't know if I should...",
	"Maybe I should wait...",
	"Let me think about this first...",
	"I'm a bit hesitant...",
}

// typoPairs maps a word to its misspelling. Only the first occurrence
// is replaced, and only when the casing matches.
var typoPairs = [][2]string{
	{"account", "acount"},
	{"payment", "payement"},
	{"this", "thi s"},
	{"really", "realy"},
}

var correctionPrefixes = []string{
	"Sorry, I meant to say: ",
	"Wait, let me correct that: ",
	"Actually, ",
	"No wait, ",
}

// humanize layers the micro-behaviors onto a reply in a fixed order:
// delay phrase, fear, hesitation, typo, self-correction. It returns
// the reworked reply and a simulated typing delay in seconds, zero
// when no delay phrase fired.
func (p *Planner) humanize(state domain.State, reply string) (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delay := 0
	if p.rng.Float64() < 0.25 {
		reply = delayPhrases[p.rng.Intn(len(delayPhrases))] + " " + reply
		delay = 2 + p.rng.Intn(7)
	}

	fearChance := 0.15
	if state == domain.StateProbePayment || state == domain.StateEscalateExtraction {
		fearChance = 0.30
	}
	if p.rng.Float64() < fearChance {
		reply = fearPhrases[p.rng.Intn(len(fearPhrases))] + " " + reply
	}

	hesitationChance := 0.20
	if state == domain.StateProbeLink || state == domain.StateProbePayment {
		hesitationChance = 0.35
	}
	if p.rng.Float64() < hesitationChance {
		reply = hesitationPhrases[p.rng.Intn(len(hesitationPhrases))] + " " + reply
	}

	if p.rng.Float64() < 0.10 {
		pair := typoPairs[p.rng.Intn(len(typoPairs))]
		if idx := strings.Index(strings.ToLower(reply), pair[0]); idx >= 0 &&
			reply[idx:idx+len(pair[0])] == pair[0] {
			reply = reply[:idx] + pair[1] + reply[idx+len(pair[0]):]
		}
	}

	if p.rng.Float64() < 0.08 {
		reply = correctionPrefixes[p.rng.Intn(len(correctionPrefixes))] + reply
	}

	return reply, delay
}
