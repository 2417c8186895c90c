package extract

import (
	"regexp"
	"strings"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

var (
	hxxpURLRe    = regexp.MustCompile(`hxxps?://[\w\-.\[\]()]+`)
	bracketURLRe = regexp.MustCompile(`https?://[\w\-]+(?:\[\.\]|\(\.\)|\[dot\])[\w\-.\[\]()]+`)
	atDomainRe   = regexp.MustCompile(`@[\w.\-]+`)
	spelledURLRe = regexp.MustCompile(`(?i)([\w\-]+)\s+dot\s+(\w+)(?:\s+(?:slash|/)\s+([\w\-]+))?`)
	spacedURLRe  = regexp.MustCompile(`([\w\-]+)\s*\.\s*(\w+)(?:\s*/\s*([\w\-]+))?`)

	singleSpacedRe = regexp.MustCompile(`(?:\d\s){9,}\d`)
	multiSpacedRe  = regexp.MustCompile(`\d{3,5}\s+\d{3,5}(?:\s+\d{2,5})*`)
	dashedRe       = regexp.MustCompile(`\d{3,5}-\d{3,5}(?:-\d{2,5})*`)
	commaSepRe     = regexp.MustCompile(`\d{3,5},\d{3,5}(?:,\d{2,5})*`)

	anySpaceRe = regexp.MustCompile(`\s+`)

	numberWordRe = regexp.MustCompile(`(?:zero|one|two|three|four|five|six|seven|eight|nine)(?:[\s\-]+(?:zero|one|two|three|four|five|six|seven|eight|nine)){5,}`)
	wordDigitRe  = regexp.MustCompile(`zero|one|two|three|four|five|six|seven|eight|nine`)
)

// TLDs accepted for spaced-out domains. Kept tight so sentences like
// "5. com" or "it. So" never become links.
var spacedTLDs = map[string]struct{}{
	"com": {}, "net": {}, "org": {}, "in": {}, "co": {}, "io": {}, "app": {},
}

var wordToDigit = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

// Obfuscated is the second extraction pass. It targets artifacts the
// plain patterns miss: disguised URLs and phone numbers broken up with
// spaces, dashes, commas or spelled-out digits.
func Obfuscated(raw string) Harvest {
	h := NewHarvest()
	h.Fields[domain.CategoryLinks] = obfuscatedURLs(raw)
	phones := splitNumbers(raw)
	phones = append(phones, numberWords(raw)...)
	h.Fields[domain.CategoryPhones] = phones
	return h
}

func obfuscatedURLs(text string) []string {
	var urls []string
	lower := strings.ToLower(text)

	for _, u := range hxxpURLRe.FindAllString(lower, -1) {
		u = strings.ReplaceAll(u, "hxxp://", "http://")
		u = strings.ReplaceAll(u, "hxxps://", "https://")
		urls = append(urls, undot(u))
	}
	for _, u := range bracketURLRe.FindAllString(lower, -1) {
		urls = append(urls, undot(u))
	}

	// Mask address domains first so user@gmail.com does not leak
	// "gmail.com" into the spaced-URL matches below.
	safe := atDomainRe.ReplaceAllString(text, "@MASKED")
	safeLower := atDomainRe.ReplaceAllString(lower, "@MASKED")

	for _, m := range spelledURLRe.FindAllStringSubmatch(safe, -1) {
		u := "http://" + m[1] + "." + m[2]
		if m[3] != "" {
			u += "/" + m[3]
		}
		urls = append(urls, u)
	}
	for _, m := range spacedURLRe.FindAllStringSubmatch(safeLower, -1) {
		if len(m[1]) <= 2 {
			continue
		}
		if _, ok := spacedTLDs[m[2]]; !ok {
			continue
		}
		u := "http://" + m[1] + "." + m[2]
		if m[3] != "" {
			u += "/" + m[3]
		}
		urls = append(urls, u)
	}
	return urls
}

func splitNumbers(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	keep := func(cleaned string, minLen, maxLen int) {
		if len(cleaned) < minLen || len(cleaned) > maxLen {
			return
		}
		if _, dup := seen[cleaned]; dup {
			return
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}

	for _, m := range singleSpacedRe.FindAllString(text, -1) {
		keep(strings.ReplaceAll(m, " ", ""), 10, 10)
	}
	for _, m := range multiSpacedRe.FindAllString(text, -1) {
		keep(anySpaceRe.ReplaceAllString(m, ""), 10, 12)
	}
	for _, m := range dashedRe.FindAllString(text, -1) {
		keep(strings.ReplaceAll(m, "-", ""), 10, 12)
	}
	for _, m := range commaSepRe.FindAllString(text, -1) {
		keep(strings.ReplaceAll(m, ",", ""), 10, 12)
	}
	return out
}

func numberWords(text string) []string {
	var out []string
	for _, m := range numberWordRe.FindAllString(strings.ToLower(text), -1) {
		var digits strings.Builder
		for _, w := range wordDigitRe.FindAllString(m, -1) {
			digits.WriteString(wordToDigit[w])
		}
		if n := digits.Len(); n >= 10 && n <= 12 {
			out = append(out, digits.String())
		}
	}
	return out
}

func undot(u string) string {
	u = strings.ReplaceAll(u, "[.]", ".")
	u = strings.ReplaceAll(u, "(.)", ".")
	u = strings.ReplaceAll(u, "[dot]", ".")
	return u
}
