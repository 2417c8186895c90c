package scorer

import "regexp"

// Signal weights for the composite model.
const (
	weightKeyword   = 0.25
	weightUrgency   = 0.20
	weightAuthority = 0.20
	weightPayment   = 0.15
	weightLLM       = 0.20
)

// Decision thresholds.
const (
	scamThreshold       = 0.40
	suspiciousThreshold = 0.25
)

type keywordTier struct {
	name   string
	weight float64
	words  []string
}

var keywordTiers = []keywordTier{
	{
		name:   "critical",
		weight: 1.0,
		words: []string{
			"otp", "cvv", "pin", "password", "mpin",
			"phishing", "malware", "hack",
		},
	},
	{
		name:   "high",
		weight: 0.7,
		words: []string{
			"blocked", "suspended", "frozen", "locked", "deactivated",
			"verify", "confirm", "update", "kyc", "validation",
			"prize", "winner", "congratulations", "reward", "lottery",
			"refund", "cashback", "compensation",
		},
	},
	{
		name:   "medium",
		weight: 0.4,
		words: []string{
			"account", "bank", "transaction", "payment", "transfer",
			"wallet", "credit", "debit", "upi", "paytm", "phonepe",
			"gpay", "expire", "security", "customer care", "support",
			"helpline", "link", "click",
		},
	},
	{
		name:   "low",
		weight: 0.2,
		words: []string{
			"free", "offer", "deal", "limited", "exclusive",
			"pending", "failed", "issue", "problem",
		},
	},
}

// patternGroup scores at most its weight once, no matter how many of its
// patterns fire.
type patternGroup struct {
	name     string
	weight   float64
	patterns []*regexp.Regexp
}

func group(name string, weight float64, exprs ...string) patternGroup {
	g := patternGroup{name: name, weight: weight}
	for _, e := range exprs {
		g.patterns = append(g.patterns, regexp.MustCompile("(?i)"+e))
	}
	return g
}

var urgencyGroups = []patternGroup{
	group("time_pressure", 0.35,
		`\b(urgent|immediately|right now|asap|hurry|quickly)\b`,
		`\b(within \d+ (hour|minute|day)s?)\b`,
		`\b(last chance|final warning|deadline)\b`,
		`\b(today only|now or never|act fast)\b`,
		`\b(running out|time is running|don't delay)\b`,
	),
	group("threat_language", 0.40,
		`\b(will be (blocked|suspended|frozen|closed|terminated|deactivated))\b`,
		`\b(legal action|police|arrest|jail|court|case filed)\b`,
		`\b(permanent(ly)? (block|suspend|close|delete))\b`,
		`\b(cannot be (recovered|restored|reversed))\b`,
		`\b(your .{0,30} (at risk|in danger|compromised))\b`,
	),
	group("countdown", 0.25,
		`\b\d+\s*(hours?|minutes?|mins?|hrs?)\s*(left|remaining)\b`,
		`\b(expires? (in|within|by))\b`,
		`\b(before .{0,20} (expires?|closes?|blocks?))\b`,
	),
}

var authorityGroups = []patternGroup{
	group("institution_impersonation", 0.35,
		`\b(reserve bank|rbi|state bank|sbi|hdfc|icici|axis bank|pnb)\b`,
		`\b(national bank|central bank|federal bank)\b`,
		`\b(government|ministry|department of|income tax|it department)\b`,
		`\b(aadhaar|aadhar|pan card|passport office)\b`,
		`\b(customs|immigration|cyber cell|cyber crime)\b`,
		`\b(microsoft|apple|google|amazon|meta|facebook|whatsapp)\b`,
		`\b(paypal|razorpay|stripe)\b`,
		`\b(airtel|jio|vodafone|bsnl|idea)\b`,
	),
	group("title_impersonation", 0.30,
		`\b(officer|inspector|manager|director|executive|supervisor)\b`,
		`\b(senior .{0,15} (officer|manager|executive))\b`,
		`\b(chief .{0,15} (officer|manager))\b`,
		`\b(head of .{0,20}(department|division|security))\b`,
		`\b(i am (from|calling from|with) .{0,30}(bank|department|office|company))\b`,
	),
	group("official_language", 0.35,
		`\b(as per (rbi|government|regulation|policy|guideline))\b`,
		`\b(in accordance with|pursuant to|under section)\b`,
		`\b(official (notice|notification|communication|letter))\b`,
		`\b(reference (number|id|no\.?|code))\b`,
		`\b(case (number|id|no\.?|file))\b`,
		`\b(complaint (number|id|no\.?|registered))\b`,
		`\b(mandatory|compulsory|required by law)\b`,
	),
}

var paymentGroups = []patternGroup{
	group("payment_identifiers", 0.40,
		`[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}`,
		`\b\d{9,18}\b`,
		`\b[A-Z]{4}0[A-Z0-9]{6}\b`,
	),
	group("payment_request_language", 0.35,
		`\b(send|transfer|pay|deposit)\b.{0,30}\b(money|amount|rs|rupees?|inr|₹|\$)\b`,
		`\b(rs\.?|rupees?|₹)\s*\d+`,
		`\b\d+\s*(rs\.?|rupees?|₹|dollars?|\$)\b`,
		`\b(processing fee|service charge|verification fee|refundable deposit)\b`,
		`\b(registration fee|activation charge|insurance fee|convenience fee)\b`,
		`\b(pay .{0,20} (to|via|through|using) .{0,20}(upi|paytm|phonepe|gpay|account))\b`,
	),
	group("payment_redirection", 0.25,
		`\b(send (to|money to|payment to))\b`,
		`\b(transfer (to|funds to|amount to))\b`,
		`\b(pay (to|at|into|via))\b`,
		`\b(deposit (into|to|in))\b`,
		`\b(use (this|the following) (upi|account|number))\b`,
		`\b(scan (this|the) (qr|code|barcode))\b`,
		`\b(click .{0,15}(pay|send|transfer|confirm))\b`,
	),
}

var emotionalGroups = []patternGroup{
	group("fear", 0, // emotional tactics contribute a flat boost, not weight
		`\b(you will lose|lose (all|everything)|risk losing)\b`,
		`\b(arrested|jail|criminal|prosecution)\b`,
		`\b(compromised|breached|unauthorized access)\b`,
		`\b(someone (is|has been) (using|accessing))\b`,
	),
	group("greed", 0,
		`\b(won|winning|prize|reward|cashback|bonus)\b`,
		`\b(guaranteed|100%|easy money|double)\b`,
		`\b(free|complimentary|no cost|zero charge)\b`,
		`\b(lakh|crore|million|thousand)\b`,
	),
	group("sympathy", 0,
		`\b(please help|need help|emergency)\b`,
		`\b(hospital|accident|dying|illness)\b`,
		`\b(stranded|stuck|helpless)\b`,
	),
	group("guilt", 0,
		`\b(don't you trust|why won't you|are you refusing)\b`,
		`\b(everyone (else|is)|all (customers|users))\b`,
		`\b(if you (don't|refuse|fail to))\b`,
	),
}

var (
	credentialHarvestRe = regexp.MustCompile(`(?i)\b(share|send|provide|give|enter).{0,15}(otp|cvv|pin|password|mpin)\b`)
	handleTokenRe       = regexp.MustCompile(`[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}`)
	urlTokenRe          = regexp.MustCompile(`(?i)https?://|\bwww\.[^\s]+`)
	phoneTokenRe        = regexp.MustCompile(`\+?\d{10,}`)
	emailTokenRe        = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

var keywordRes = map[string]*regexp.Regexp{}

func init() {
	for _, tier := range keywordTiers {
		for _, w := range tier.words {
			keywordRes[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
	}
}

func containsWord(text, word string) bool {
	return keywordRes[word].MatchString(text)
}

// scoreKeywords sums tier weights for every keyword present and
// normalizes so three critical hits saturate the signal.
func scoreKeywords(text string) (float64, []string) {
	total := 0.0
	var matched []string
	for _, tier := range keywordTiers {
		for _, w := range tier.words {
			if containsWord(text, w) {
				total += tier.weight
				matched = append(matched, w)
			}
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	score := total / 3.0
	if score > 1 {
		score = 1
	}
	return score, matched
}

// scoreGroups accumulates one weight per matched group.
func scoreGroups(text string, groups []patternGroup) (float64, []string) {
	score := 0.0
	var matched []string
	for _, g := range groups {
		for _, p := range g.patterns {
			if p.MatchString(text) {
				score += g.weight
				matched = append(matched, g.name)
				break
			}
		}
	}
	if score > 1 {
		score = 1
	}
	return score, matched
}

// matchedGroupNames returns the names of groups with at least one hit.
func matchedGroupNames(text string, groups []patternGroup) []string {
	var names []string
	for _, g := range groups {
		for _, p := range g.patterns {
			if p.MatchString(text) {
				names = append(names, g.name)
				break
			}
		}
	}
	return names
}
