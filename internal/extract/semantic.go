package extract

import (
	"regexp"
	"strings"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
)

// Third pass: meaning-level artifacts the pattern passes cannot see.
// Names come from introduction phrasing, organizations and amounts go
// into the free-form section, and the analyzer's verdict contributes
// the manipulation tactics observed this turn.

var (
	honorificNameRe = regexp.MustCompile(`\b(?:[Oo]fficer|[Ii]nspector|Mr|Mrs|Ms|Dr)\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	selfIntroRe     = regexp.MustCompile(`\b(?:[Mm]y name is|[Tt]his is|[Ii] am|[Ii]'m)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	amountRe        = regexp.MustCompile(`(?i)(?:rs\.?|₹|inr|rupees?)\s*([\d,]+(?:\.\d+)?)`)
)

// nameStopwords are capitalized words the intro patterns catch that
// are never names.
var nameStopwords = map[string]bool{
	"Calling": true, "Speaking": true, "From": true, "Here": true,
	"Sir": true, "Madam": true, "Urgent": true, "The": true,
	"Officer": true, "Inspector": true,
}

// knownOrganizations maps lowercase markers to canonical names.
var knownOrganizations = []struct {
	marker string
	name   string
}{
	{"state bank", "State Bank of India"},
	{"sbi", "State Bank of India"},
	{"hdfc", "HDFC Bank"},
	{"icici", "ICICI Bank"},
	{"axis bank", "Axis Bank"},
	{"reserve bank", "Reserve Bank of India"},
	{"rbi", "Reserve Bank of India"},
	{"income tax", "Income Tax Department"},
	{"cyber cell", "Cyber Cell"},
	{"paytm", "Paytm"},
	{"phonepe", "PhonePe"},
	{"amazon", "Amazon"},
	{"microsoft", "Microsoft"},
	{"airtel", "Airtel"},
	{"jio", "Jio"},
}

// Semantic extracts meaning-level artifacts from the raw text and the
// analyzer's verdict for this message.
func Semantic(raw string, analysis llm.Analysis) Harvest {
	h := NewHarvest()

	for _, re := range []*regexp.Regexp{honorificNameRe, selfIntroRe} {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			name := strings.TrimSpace(m[1])
			if first := strings.Fields(name); len(first) > 0 && nameStopwords[first[0]] {
				continue
			}
			h.add(domain.CategoryNames, name)
		}
	}

	lower := strings.ToLower(raw)
	for _, org := range knownOrganizations {
		if containsToken(lower, org.marker) {
			h.Additional["organizations"] = append(h.Additional["organizations"], org.name)
		}
	}

	for _, m := range amountRe.FindAllStringSubmatch(raw, -1) {
		h.Additional["amounts"] = append(h.Additional["amounts"], "Rs."+strings.ReplaceAll(m[1], ",", ""))
	}

	for _, tactic := range analysis.SocialEngineering.Tactics {
		h.Additional["tactics"] = append(h.Additional["tactics"], tactic)
	}
	if cat := analysis.Narrative.Category; cat != "" && cat != "unknown" {
		h.Additional["narratives"] = append(h.Additional["narratives"], cat)
	}

	return h
}

// containsToken reports whether marker occurs in text on word
// boundaries, so "sbi" does not fire inside unrelated words.
func containsToken(text, marker string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], marker)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(marker)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}
