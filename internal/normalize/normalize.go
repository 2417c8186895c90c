// Package normalize removes scammer obfuscation from inbound text before
// detection and extraction run over it.
//
// The detection pipeline is deterministic and idempotent:
//
//	unicode NFKC -> zero-width strip -> control chars -> homoglyphs ->
//	hex-url decode -> leetspeak -> char-spacing collapse ->
//	url deobfuscation -> whitespace collapse -> lowercase
package normalize

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	zeroWidthRe  = regexp.MustCompile("[\u200B\u200C\u200D\u200E\u200F\uFEFF\u2060\u180E]")
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Runs of 4+ single characters separated by single spaces,
	// e.g. "h t t p : / / s b i . c o m".
	charSpacingRe = regexp.MustCompile(`(?:^|\s)((?:\S ){3,}\S)(?:\s|$)`)

	// Continuous hex strings long enough to hold at least "http://".
	hexEncodedRe = regexp.MustCompile(`\b([0-9a-fA-F]{14,})\b`)

	decodedURLRe    = regexp.MustCompile(`(?i)https?://`)
	decodedDomainRe = regexp.MustCompile(`[a-zA-Z0-9\-]+\.[a-zA-Z]{2,}`)

	starredProtoRe = regexp.MustCompile(`(?i)h\*{2,}ps?`)
	spelledDotRe   = regexp.MustCompile(`(?i)\s*dot\s*`)

	// Sequences shielded from leetspeak digit folding.
	protectPhoneRe   = regexp.MustCompile(`\+?\d{10,}`)
	protectNumberRe  = regexp.MustCompile(`\b\d{8,}\b`)
	protectURLRe     = regexp.MustCompile(`https?://\S+`)
	protectAccountRe = regexp.MustCompile(`\b\d{4}-\d{4}-\d{4,}\b`)

	nonPhoneRuneRe = regexp.MustCompile(`[^\d+]`)
)

// Visually confusable characters folded to their ASCII lookalikes.
// Cyrillic and Greek letters are the ones scammers actually use to
// slip brand names past keyword filters.
var homoglyphs = map[rune]string{
	// Cyrillic
	'а': "a", 'е': "e", 'о': "o", 'р': "p", 'с': "c", 'у': "y",
	'х': "x", 'і': "i", 'ӏ': "l", 'ј': "j", 'ѕ': "s", 'һ': "h", 'ԁ': "d",
	// Greek
	'α': "a", 'β': "b", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z",
	'η': "n", 'θ': "o", 'ι': "i", 'κ': "k", 'λ': "l", 'μ': "u",
	'ν': "v", 'ξ': "e", 'ο': "o", 'π': "n", 'ρ': "p", 'σ': "o",
	'τ': "t", 'υ': "u", 'φ': "f", 'χ': "x", 'ψ': "ps", 'ω': "w",
	// Mathematical alphanumerics that survive NFKC
	'ℊ': "g", 'ℎ': "h", 'ℓ': "l", '℘': "p", 'ℛ': "r", 'ℯ': "e", 'ℴ': "o",
	// Devanagari nukta forms (precomposed code points; NFKC upstream
	// decomposes them, so the bare nukta mapping does the real work)
	'\u0958': "क", '\u0959': "ख", '\u095A': "ग", '\u095B': "ज",
	'\u095C': "ड", '\u095D': "ढ", '\u095E': "फ", '\u095F': "य",
	'\u093C': "",
}

var symbolLeet = map[rune]string{
	'@': "a", '$': "s", '€': "e", '£': "l", '¥': "y", '₹': "r", '|': "i",
}

var digitLeet = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a',
	'5': 's', '7': 't', '8': 'b', '9': 'g',
}

// Multi-character ASCII-art substitutions, longest first.
var multiLeet = []struct{ from, to string }{
	{`|\/|`, "m"},
	{`/-\`, "a"},
	{`|\|`, "n"},
	{`\|/`, "v"},
	{"()", "o"},
	{"[]", "i"},
	{"{}", "o"},
	{"<>", "o"},
}

// URL obfuscation spellings and their plain forms, applied in order.
var urlObfuscations = []struct{ from, to string }{
	{"hxxps", "https"},
	{"hxxp", "http"},
	{"h**ps", "https"},
	{"h**p", "http"},
	{"ht_tps", "https"},
	{"ht_tp", "http"},
	{"[.]", "."},
	{"(.)", "."},
	{"{.}", "."},
	{"< . >", "."},
	{"_dot_", "."},
	{"-dot-", "."},
	{"[dot]", "."},
	{"(dot)", "."},
	{`\/`, "/"},
}

// ForDetection runs the full deobfuscation pipeline and returns lowercase
// text suitable for keyword and pattern matching. Shortened URLs are left
// as-is; resolving them needs network access and belongs to downstream
// analysis, not normalization.
func ForDetection(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	text = zeroWidthRe.ReplaceAllString(text, "")
	text = stripControl(text)
	text = foldHomoglyphs(text)
	text = decodeHexURLs(text)
	text = foldLeetspeak(text)
	text = collapseCharSpacing(text)
	text = DeobfuscateURL(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// ForExtraction applies only the lossless stages. Extraction patterns need
// original casing and punctuation intact, so leet folding and lowercasing
// would destroy the very artifacts being extracted.
func ForExtraction(text string) string {
	text = norm.NFKC.String(text)
	text = zeroWidthRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// DeobfuscateURL rewrites common URL evasion spellings (hxxp, [.], "dot")
// into their plain forms.
func DeobfuscateURL(text string) string {
	for _, o := range urlObfuscations {
		text = strings.ReplaceAll(text, o.from, o.to)
	}
	text = starredProtoRe.ReplaceAllString(text, "https")
	text = spelledDotRe.ReplaceAllString(text, ".")
	text = strings.ReplaceAll(text, "hxxp://", "http://")
	text = strings.ReplaceAll(text, "hxxps://", "https://")
	// Repair single-slash protocols without doubling healthy ones.
	text = strings.ReplaceAll(text, "http://", "\x00P\x00")
	text = strings.ReplaceAll(text, "https://", "\x00S\x00")
	text = strings.ReplaceAll(text, "http:/", "http://")
	text = strings.ReplaceAll(text, "https:/", "https://")
	text = strings.ReplaceAll(text, "\x00P\x00", "http://")
	text = strings.ReplaceAll(text, "\x00S\x00", "https://")
	return text
}

// Phone strips everything except digits and a leading plus.
func Phone(raw string) string {
	return nonPhoneRuneRe.ReplaceAllString(raw, "")
}

func stripControl(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func foldHomoglyphs(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if repl, ok := homoglyphs[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeHexURLs replaces long hex runs with their decoded form when the
// decoded bytes look like a URL or domain. Anything else is left alone to
// avoid mangling legitimate reference numbers.
func decodeHexURLs(text string) string {
	return hexEncodedRe.ReplaceAllStringFunc(text, func(m string) string {
		if len(m)%2 != 0 {
			return m
		}
		raw, err := hex.DecodeString(m)
		if err != nil || !utf8.Valid(raw) {
			return m
		}
		decoded := string(raw)
		if decodedURLRe.MatchString(decoded) || decodedDomainRe.MatchString(decoded) {
			return decoded
		}
		return m
	})
}

// foldLeetspeak converts symbol and intra-word digit substitutions to
// letters. Phones, long numbers, URLs and account-shaped sequences are
// shielded behind placeholders first so their digits survive.
func foldLeetspeak(text string) string {
	protected := map[string]string{}
	counter := 0
	shield := func(re *regexp.Regexp, tag string) {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			// Keys must survive the digit folding below, so the
			// counter is spelled with letters.
			key := fmt.Sprintf("\x00%s%s\x00", tag, letterIndex(counter))
			counter++
			protected[key] = m
			return key
		})
	}
	shield(protectURLRe, "U")
	shield(protectPhoneRe, "P")
	shield(protectNumberRe, "N")
	shield(protectAccountRe, "A")

	for _, m := range multiLeet {
		text = strings.ReplaceAll(text, m.from, m.to)
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		if repl, ok := symbolLeet[r]; ok {
			b.WriteString(repl)
			continue
		}
		if letter, ok := digitLeet[r]; ok {
			before := i > 0 && unicode.IsLetter(runes[i-1])
			after := i < len(runes)-1 && unicode.IsLetter(runes[i+1])
			if before || after {
				b.WriteRune(letter)
				continue
			}
		}
		b.WriteRune(r)
	}
	text = b.String()

	for key, original := range protected {
		text = strings.ReplaceAll(text, key, original)
	}
	return text
}

func letterIndex(n int) string {
	var b strings.Builder
	for {
		b.WriteByte(byte('a' + n%26))
		n /= 26
		if n == 0 {
			return b.String()
		}
	}
}

// collapseCharSpacing joins runs of single characters separated by spaces,
// e.g. "s b i - l o g i n . x y z" becomes "sbi-login.xyz". Runs shorter
// than four tokens are kept so normal short words are untouched.
func collapseCharSpacing(text string) string {
	return charSpacingRe.ReplaceAllStringFunc(text, func(m string) string {
		lead, frag := "", m
		if strings.HasPrefix(frag, " ") {
			lead, frag = " ", frag[1:]
		}
		trail := ""
		if strings.HasSuffix(frag, " ") {
			trail, frag = " ", frag[:len(frag)-1]
		}
		tokens := strings.Split(frag, " ")
		single := 0
		for _, t := range tokens {
			if len(t) == 1 {
				single++
			}
		}
		if len(tokens) >= 4 && float64(single)/float64(len(tokens)) >= 0.7 {
			return lead + strings.Join(tokens, "") + trail
		}
		return m
	})
}
