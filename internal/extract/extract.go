// Package extract pulls actionable artifacts out of scammer messages.
//
// Extraction runs in three passes: plain pattern matching over lightly
// normalized text, a deobfuscation pass for disguised URLs and split
// phone numbers, and an optional model-driven pass supplied by the
// caller. The passes are merged with per-category normalization so the
// same artifact surfacing in different spellings collapses to one entry.
package extract

import (
	"regexp"
	"strings"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/normalize"
)

// Harvest holds the raw output of one extraction pass, keyed by category.
// Values are unnormalized; Merge owns normalization and dedup.
type Harvest struct {
	Fields     map[domain.Category][]string
	Additional map[string][]string
}

// NewHarvest returns an empty harvest.
func NewHarvest() Harvest {
	return Harvest{
		Fields:     make(map[domain.Category][]string),
		Additional: make(map[string][]string),
	}
}

func (h Harvest) add(cat domain.Category, values ...string) {
	h.Fields[cat] = append(h.Fields[cat], values...)
}

var (
	atTokenRe  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+`)
	emailDomRe = regexp.MustCompile(`^[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	numberRunRe = regexp.MustCompile(`\+?\d+`)
	httpLinkRe  = regexp.MustCompile(`https?://\S+`)
	wwwLinkRe   = regexp.MustCompile(`www\.\S+`)
	accountRe   = regexp.MustCompile(`\b\d{9,18}\b`)
	ifscRe      = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	caseIDRe = regexp.MustCompile(`(?i)\b(?:CASE|REF|FIR|CRN|COMP|CR|TKT|INC|SR|TICKET)[\s\-/#]?\d{3,15}(?:/\d{2,4})?\b`)
	policyRe = regexp.MustCompile(`(?i)\b(?:POL|POLICY|LIC|INS|PLAN)[\s\-/#]?\d{4,15}(?:/\d{2,4})?\b`)
	orderRe  = regexp.MustCompile(`(?i)\b(?:ORD|ORDER|AWB|TRACK|TRK|SHIP|PKG)[\s\-/#]?\d{4,15}\b`)

	// Ids referenced indirectly, e.g. "about case CC-2026-7782".
	labelCaseRe   = regexp.MustCompile(`(?i)\b(?:case|reference|complaint|ticket|fir)\s*(?:number|no\.?|id)?\s*[:#]?\s*([A-Za-z]{2,6}[-/]\d[\dA-Za-z/\-]*)`)
	labelPolicyRe = regexp.MustCompile(`(?i)\b(?:policy|insurance|plan)\s*(?:number|no\.?|id)?\s*[:#]?\s*([A-Za-z]{2,6}[-/]\d[\dA-Za-z/\-]*)`)
	labelOrderRe  = regexp.MustCompile(`(?i)\b(?:order|tracking|shipment|parcel)\s*(?:number|no\.?|id)?\s*[:#]?\s*([A-Za-z]{2,6}[-/]\d[\dA-Za-z/\-]*)`)

	nonDigitRe  = regexp.MustCompile(`\D`)
	protocolRe  = regexp.MustCompile(`(?i)^https?://`)
	ifscExactRe = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// Payment handle suffixes used by Indian UPI apps and banks. An @-token
// whose domain is one of these is a payment handle, not an email.
var upiSuffixes = map[string]struct{}{
	"paytm": {}, "ybl": {}, "okhdfcbank": {}, "okaxis": {}, "oksbi": {},
	"okicici": {}, "upi": {}, "sbi": {}, "hdfcbank": {}, "icici": {},
	"axisbank": {}, "kotak": {}, "pnb": {}, "gpay": {}, "phonepe": {},
	"apl": {}, "ratn": {}, "barodampay": {}, "ibl": {}, "axl": {},
	"pingpay": {}, "freecharge": {}, "waaxis": {}, "wasbi": {},
	"wahdfcbank": {}, "waicici": {}, "abfspay": {}, "ikwik": {},
	"jupiteraxis": {}, "yesbankltd": {}, "yesbank": {}, "federal": {},
	"rbl": {}, "dbs": {}, "indus": {}, "citi": {}, "hsbc": {}, "sc": {},
	"idbi": {}, "unionbank": {}, "boi": {}, "cnrb": {}, "idfcbank": {},
	"aubank": {}, "dlb": {}, "cub": {}, "kvb": {}, "tmb": {}, "jio": {},
	"slice": {}, "niyoicici": {}, "postbank": {}, "finobank": {},
	"kkbk": {}, "imobile": {}, "mahb": {}, "indianbank": {}, "psb": {},
	"uboi": {}, "cbin": {},
}

// Patterns is the first extraction pass: direct pattern matching over
// text that has only had unicode, zero-width and whitespace cleanup.
func Patterns(raw string) Harvest {
	text := normalize.ForExtraction(raw)
	h := NewHarvest()

	for _, token := range atTokenRe.FindAllString(text, -1) {
		at := strings.LastIndex(token, "@")
		domainPart := token[at+1:]
		domainLower := strings.ToLower(domainPart)
		if _, known := upiSuffixes[domainLower]; known {
			h.add(domain.CategoryPaymentHandles, token)
		} else if !strings.Contains(domainPart, ".") {
			// No dot after the @ rules out an email address.
			h.add(domain.CategoryPaymentHandles, token)
		} else if emailDomRe.MatchString(domainPart) {
			h.add(domain.CategoryEmails, token)
		}
	}

	h.Fields[domain.CategoryPhones] = phoneCandidates(text)

	for _, link := range httpLinkRe.FindAllString(text, -1) {
		if !strings.Contains(link, "@") {
			h.add(domain.CategoryLinks, strings.TrimRight(link, ".,;:!?)"))
		}
	}
	for _, loc := range wwwLinkRe.FindAllStringIndex(text, -1) {
		// Skip www inside a URL path or an address local part.
		if loc[0] > 0 {
			prev := text[loc[0]-1]
			if prev == '/' || prev == '@' || isWordByte(prev) {
				continue
			}
		}
		link := text[loc[0]:loc[1]]
		if !strings.Contains(link, "@") {
			h.add(domain.CategoryLinks, strings.TrimRight(link, ".,;:!?)"))
		}
	}

	for _, acc := range accountRe.FindAllString(text, -1) {
		if phoneShaped(acc) {
			continue
		}
		h.add(domain.CategoryBankAccounts, acc)
	}

	h.Fields[domain.CategoryBranchCodes] = ifscRe.FindAllString(text, -1)
	h.Fields[domain.CategoryCaseIDs] = append(
		trimAll(caseIDRe.FindAllString(text, -1)),
		submatches(labelCaseRe, text)...)
	h.Fields[domain.CategoryPolicyNumbers] = append(
		trimAll(policyRe.FindAllString(text, -1)),
		submatches(labelPolicyRe, text)...)
	h.Fields[domain.CategoryOrderNumbers] = append(
		trimAll(orderRe.FindAllString(text, -1)),
		submatches(labelOrderRe, text)...)

	// Person names are left to the model pass. Pattern-matching names
	// after "I am" or "this is" misfires on ordinary verbs far too often.
	return h
}

// phoneCandidates finds phone-shaped digit runs. A run qualifies when it
// carries an international prefix, is a 91-prefixed 12-digit number, or
// is exactly 10 digits standing alone.
func phoneCandidates(text string) []string {
	var out []string
	for _, run := range numberRunRe.FindAllString(text, -1) {
		digits := strings.TrimPrefix(run, "+")
		switch {
		case strings.HasPrefix(run, "+") && len(digits) >= 10:
			out = append(out, run)
		case len(digits) == 12 && strings.HasPrefix(digits, "91"):
			out = append(out, run)
		case len(digits) == 10:
			out = append(out, run)
		}
	}
	return out
}

// phoneShaped reports whether a digit run is really a phone number: ten
// digits bare, or twelve with the 91 country code.
func phoneShaped(digits string) bool {
	if len(digits) == 10 {
		return true
	}
	return len(digits) == 12 && strings.HasPrefix(digits, "91")
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func submatches(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
