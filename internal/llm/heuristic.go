package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule-based fallback analysis. Mirrors the structured output of the
// model so downstream consumers never see a different shape.

type intentRule struct {
	label      string
	confidence float64
	patterns   []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile("(?i)" + e)
	}
	return out
}

var intentRules = []intentRule{
	{
		label:      "credential_harvesting",
		confidence: 0.92,
		patterns: compileAll(
			`\b(share|provide|send|enter|type|give).{0,25}(otp|cvv|pin|password|mpin|card.?number)\b`,
			`\b(otp|cvv|pin|password|mpin).{0,20}(share|send|provide|enter|give|tell)\b`,
			`\b(what is your|tell me your|enter your|share your).{0,20}(otp|pin|password|cvv)\b`,
		),
	},
	{
		label:      "tech_support_scam",
		confidence: 0.83,
		patterns: compileAll(
			`\b(virus|malware|trojan|hacked|breached|compromised)\b`,
			`\b(remote access|anydesk|teamviewer|download .{0,15}(app|software))\b`,
			`\b(your (computer|phone|device) .{0,20}(infected|at risk|compromised))\b`,
		),
	},
	{
		label:      "financial_fraud",
		confidence: 0.82,
		patterns: compileAll(
			`\b(won|winning|winner|lottery|prize|jackpot|lucky draw)\b`,
			`\b(invest|investment|guaranteed returns|double your money)\b`,
			`\b(inheritance|unclaimed funds|beneficiary)\b`,
		),
	},
	{
		label:      "payment_redirection",
		confidence: 0.80,
		patterns: compileAll(
			`\b(send|transfer|pay|deposit).{0,25}(money|amount|rs|rupees?|inr|₹|\$)\b`,
			`\b(processing fee|service charge|verification fee|refundable deposit)\b`,
			`[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}`,
		),
	},
	{
		label:      "advance_fee_fraud",
		confidence: 0.80,
		patterns: compileAll(
			`\b(advance|upfront|small).{0,15}(fee|charge|payment|deposit)\b`,
			`\b(release|unlock|claim).{0,20}(funds?|prize|reward|amount)\b`,
		),
	},
	{
		label:      "impersonation_scam",
		confidence: 0.78,
		patterns: compileAll(
			`\b(this is .{0,20}(officer|bank|department|police|customs))\b`,
			`\b(calling from .{0,20}(bank|rbi|police|cyber|government))\b`,
			`\b(we have detected|we found|your account has)\b`,
		),
	},
	{
		label:      "phishing_link",
		confidence: 0.75,
		patterns: compileAll(
			`\b(click|open|visit|go to|tap)\b.{0,30}(link|url|website|page|site)`,
			`https?://\S+`,
			`\b(verify|update|confirm).{0,15}(by clicking|via link|on this link)\b`,
		),
	},
	{
		label:      "emotional_manipulation",
		confidence: 0.68,
		patterns: compileAll(
			`\b(you will lose|lose all|risk losing|permanently lose)\b`,
			`\b(arrested|jail|criminal|prosecution|sued)\b`,
			`\b(please help|i (need|beg)|dying|hospital|emergency)\b`,
			`\b(everyone is doing|don't you trust|are you scared)\b`,
		),
	},
}

var seRules = []struct {
	tactic   string
	patterns []*regexp.Regexp
}{
	{"fear", compileAll(
		`\b(you will lose|lose (all|everything)|risk losing)\b`,
		`\b(arrested|jail|criminal|prosecution)\b`,
		`\b(compromised|breached|unauthorized)\b`,
	)},
	{"urgency", compileAll(
		`\b(urgent|immediately|right now|asap|hurry|quickly)\b`,
		`\b(within \d+ (hour|minute|day)s?)\b`,
		`\b(last chance|final warning|deadline|today only)\b`,
	)},
	{"authority", compileAll(
		`\b(officer|inspector|manager|director|executive)\b`,
		`\b(reserve bank|rbi|government|ministry|department)\b`,
		`\b(as per (rbi|government|regulation|policy))\b`,
	)},
	{"scarcity", compileAll(
		`\b(limited (time|offer|slots?)|only \d+ left|exclusive)\b`,
		`\b(first come|while (stocks?|supplies?) last)\b`,
	)},
	{"social_proof", compileAll(
		`\b(everyone|all (customers|users)|many people|thousands)\b`,
		`\b(already (received|claimed|verified))\b`,
	)},
	{"reciprocity", compileAll(
		`\b(free|complimentary|bonus|gift|as a token)\b`,
		`\b(we are giving|you have been selected)\b`,
	)},
	{"greed", compileAll(
		`\b(won|winning|prize|reward|cashback|bonus|jackpot)\b`,
		`\b(guaranteed|100%|easy money|double|crore|lakh|million)\b`,
	)},
	{"sympathy", compileAll(
		`\b(please help|need help|emergency|hospital|accident)\b`,
		`\b(stranded|stuck|helpless|dying|illness)\b`,
	)},
	{"guilt", compileAll(
		`\b(don't you trust|why won't you|are you refusing)\b`,
		`\b(if you (don't|refuse|fail to))\b`,
	)},
	{"intimidation", compileAll(
		`\b(legal action|police|arrest|court|case filed)\b`,
		`\b(permanent(ly)? (block|suspend|ban|close|delete))\b`,
	)},
}

var narrativeRules = []struct {
	category string
	patterns []*regexp.Regexp
}{
	{"bank_impersonation", compileAll(
		`\b(bank|sbi|hdfc|icici|axis|pnb|rbi).{0,30}(blocked|suspended|frozen|verify|officer|manager|alert)\b`,
		`\b(account|debit card|credit card).{0,20}(blocked|suspended|compromised|frozen)\b`,
	)},
	{"government_impersonation", compileAll(
		`\b(government|ministry|aadhaar|pan card|income tax|it department)\b`,
		`\b(customs|immigration|cyber cell|cyber crime)\b`,
	)},
	{"tech_support", compileAll(
		`\b(virus|malware|hacked|remote access|anydesk|teamviewer)\b`,
		`\b(microsoft|apple|google).{0,15}(support|helpline|alert)\b`,
	)},
	{"lottery_prize", compileAll(
		`\b(won|winner|lottery|lucky draw|prize|jackpot|congratulations)\b`,
	)},
	{"investment_fraud", compileAll(
		`\b(invest|investment|guaranteed returns|high returns|trading)\b`,
		`\b(double your|triple your|10x|100x)\b`,
	)},
	{"kyc_update", compileAll(
		`\b(kyc|know your customer).{0,20}(update|verify|expired|mandatory)\b`,
	)},
	{"account_verification", compileAll(
		`\b(verify|validate|confirm).{0,20}(account|identity|details)\b`,
	)},
	{"loan_approval", compileAll(
		`\b(loan|credit).{0,15}(approved|sanctioned|pre-?approved|eligible)\b`,
	)},
	{"delivery_scam", compileAll(
		`\b(package|parcel|delivery|shipment).{0,20}(stuck|held|customs|fee)\b`,
	)},
	{"tax_refund", compileAll(
		`\b(tax|refund|it returns?).{0,20}(claim|pending|eligible|process)\b`,
	)},
}

var severityScore = map[string]float64{
	"none": 0.0, "low": 0.2, "medium": 0.4, "high": 0.7, "critical": 0.9,
}

// Heuristic produces a full analysis from pattern rules alone.
func Heuristic(text string) Analysis {
	lower := strings.ToLower(text)

	intent := Intent{Label: "benign", Reasoning: "No scam indicators detected."}
	for _, rule := range intentRules {
		for _, p := range rule.patterns {
			if p.MatchString(lower) {
				if rule.confidence > intent.Confidence {
					intent = Intent{
						Label:      rule.label,
						Confidence: rule.confidence,
						Reasoning:  fmt.Sprintf("Pattern match: %s indicators found.", strings.ReplaceAll(rule.label, "_", " ")),
					}
				}
				break
			}
		}
	}

	var tactics []string
	for _, rule := range seRules {
		for _, p := range rule.patterns {
			if p.MatchString(lower) {
				tactics = append(tactics, rule.tactic)
				break
			}
		}
	}
	severity := "none"
	switch n := len(tactics); {
	case n == 0:
	case n == 1:
		severity = "low"
	case n == 2:
		severity = "medium"
	case n == 3:
		severity = "high"
	default:
		severity = "critical"
	}
	details := "No social-engineering tactics detected."
	if len(tactics) > 0 {
		details = fmt.Sprintf("Detected %d social-engineering tactic(s): %s.", len(tactics), strings.Join(tactics, ", "))
	}

	narrative := Narrative{
		Category:    "unknown",
		Stage:       "opening",
		Description: "No recognised scam narrative detected.",
	}
	for _, rule := range narrativeRules {
		matched := false
		for _, p := range rule.patterns {
			if p.MatchString(lower) {
				matched = true
				break
			}
		}
		if matched {
			narrative = Narrative{
				Category:    rule.category,
				Stage:       "exploitation",
				Description: fmt.Sprintf("Message matches %s scam pattern.", strings.ReplaceAll(rule.category, "_", " ")),
			}
			break
		}
	}

	return Analysis{
		Intent: intent,
		SocialEngineering: SocialEngineering{
			Tactics:  tactics,
			Severity: severity,
			Details:  details,
		},
		Narrative:      narrative,
		CompositeScore: 0.6*intent.Confidence + 0.4*severityScore[severity],
		Source:         "heuristic",
	}
}
