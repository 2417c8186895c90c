// Package defense handles bot accusations from the other side of the
// conversation. When the scammer asks "are you a bot?" the reply must
// come from here, not the dialogue planner, so the persona deflects
// instead of plowing ahead with its next probing question.
package defense

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Accusation classifies how the scammer challenged the persona.
type Accusation string

const (
	AccusationDirectBot    Accusation = "direct_bot"
	AccusationRealQuestion Accusation = "real_question"
	AccusationAutomated    Accusation = "automated"
	AccusationCopyPaste    Accusation = "copy_paste"
	AccusationAI           Accusation = "ai"
)

// Deflection is the reply chosen for an accusation.
type Deflection struct {
	Reply      string
	Accusation Accusation
	Strategy   string
}

var directBotRes = compile(
	`\bare you (?:a )?bot\b`,
	`\byou(?:'re| are) (?:a )?bot\b`,
	`\bthis is (?:a )?bot\b`,
	`\brobot?\b`,
	`\byou a bot\b`,
	`\byou seem (?:like )?(?:a )?bot\b`,
	`\byou sound (?:like )?(?:a )?bot\b`,
	`\bacting (?:like )?(?:a )?bot\b`,
)

var realQuestionRes = compile(
	`\bare you real\b`,
	`\byou real\b`,
	`\breal person\b`,
	`\bis this real\b`,
)

var automatedRes = compile(
	`\bautomated\b`,
	`\bscript(?:ed)?\b`,
	`\bprogrammed\b`,
	`\bauto.?reply\b`,
)

var copyPastePhrases = []string{"copy paste", "copy-paste", "copypaste", "canned response"}

var aiRes = compile(
	`\bai\b`,
	`\bchatgpt\b`,
	`\bgpt\b`,
	`\bartificial intelligence\b`,
)

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

// Detect reports whether the text accuses the persona of being
// automated, and how.
func Detect(text string) (Accusation, bool) {
	lower := strings.ToLower(text)

	if matchAny(lower, directBotRes) {
		return AccusationDirectBot, true
	}
	if matchAny(lower, realQuestionRes) {
		return AccusationRealQuestion, true
	}
	if matchAny(lower, automatedRes) {
		return AccusationAutomated, true
	}
	for _, p := range copyPastePhrases {
		if strings.Contains(lower, p) {
			return AccusationCopyPaste, true
		}
	}
	if matchAny(lower, aiRes) {
		return AccusationAI, true
	}
	return "", false
}

func matchAny(text string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var humorReplies = []string{
	"Haha what? No I'm just sitting here with my phone 😅",
	"LOL I wish I was a bot, then I'd understand all this better!",
	"Ha! My son says I'm terrible with technology, definitely not a bot 😄",
	"Hehe no, just confused! Why would you think that?",
	"😂 I'm very real, just not good with these things",
	"Haha no, bots probably understand this stuff better than me!",
	"What? 😂 No I'm just slow at typing on my phone",
	"LOL nope, just an old person trying to figure this out",
}

var confusionReplies = []string{
	"What do you mean? I don't understand...",
	"Bot? What's that got to do with this?",
	"I'm not sure what you're asking... I'm just trying to help",
	"Sorry, I don't follow. Did I say something wrong?",
	"What? I'm confused now... what makes you say that?",
	"I don't understand... is there a problem?",
	"What? I'm just responding to what you're telling me",
	"I'm lost... why would you ask that?",
	"Huh? I'm just asking questions like anyone would",
	"I'm confused... did I miss something?",
}

var redirectReplies = []string{
	"Anyway, you were saying about the account verification?",
	"Let's get back to the issue - what exactly do I need to do?",
	"Okay... so what's the next step you mentioned?",
	"Right, so about my account - what was that number again?",
	"Can we focus on fixing this? I'm already stressed enough",
	"Never mind that - just tell me what I need to pay",
	"Anyway, you said something about UPI?",
	"Okay okay, let's just solve this problem first",
	"So what's the process? You were explaining...",
	"Alright, can you just repeat the instructions?",
}

var technicalReplies = []string{
	"Sorry, my phone is acting weird. What did you ask?",
	"Hold on, my connection keeps dropping. Say that again?",
	"My battery is dying, can we make this quick?",
	"Sorry, my messages aren't sending properly. Can you repeat?",
	"My phone just froze for a second. What were you saying?",
	"This app keeps glitching. Did you send something?",
	"Sorry, bad signal here. What did you say?",
	"My keyboard is being weird today. What was the question?",
	"Give me a sec, my phone is lagging so bad",
	"Sorry, autocorrect is messing up my typing. What did you ask?",
}

var clarifyingReplies = []string{
	"What do you mean by that? Why would you ask?",
	"I don't understand - what makes you think that?",
	"Why are you asking me this? Is something wrong?",
	"What? Why would you say that about me?",
	"I'm confused - why do you think I'm not real?",
	"What kind of question is that? I'm just asking for help",
	"Why would you ask that? Have I done something strange?",
	"What makes you think that? I'm just trying to understand",
	"I don't get it - why are you questioning me?",
	"That's odd... why would you ask that?",
}

var strategyPools = map[string][]string{
	"humor":      humorReplies,
	"confusion":  confusionReplies,
	"redirect":   redirectReplies,
	"technical":  technicalReplies,
	"clarifying": clarifyingReplies,
}

// Defender picks deflection replies. The random source is injected so
// runs can be made reproducible; access is serialized because
// rand.Rand is not safe for concurrent use.
type Defender struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(rng *rand.Rand) *Defender {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Defender{rng: rng}
}

// Deflect returns a reply for the accusation in text, if one is
// present. Depth is the number of conversation turns so far; early
// accusations get confusion, later ones humor or technical excuses.
func (d *Defender) Deflect(text string, depth int) (Deflection, bool) {
	accusation, ok := Detect(text)
	if !ok {
		return Deflection{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	strategy := d.pickStrategy(depth)
	pool := strategyPools[strategy]
	return Deflection{
		Reply:      pool[d.rng.Intn(len(pool))],
		Accusation: accusation,
		Strategy:   strategy,
	}, true
}

func (d *Defender) pickStrategy(depth int) string {
	switch {
	case depth < 5:
		return []string{"confusion", "clarifying"}[d.rng.Intn(2)]
	case depth < 10:
		return d.weighted([]string{"humor", "redirect", "clarifying"}, []float64{0.4, 0.4, 0.2})
	default:
		return d.weighted([]string{"technical", "redirect", "confusion"}, []float64{0.4, 0.4, 0.2})
	}
}

func (d *Defender) weighted(options []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	roll := d.rng.Float64() * total
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return options[i]
		}
	}
	return options[len(options)-1]
}
