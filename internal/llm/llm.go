// Package llm provides the language-model capability used for intent
// analysis and reply generation. It wraps any OpenAI-compatible
// chat-completions endpoint, caches responses in redis keyed by content
// hash, and falls back to a rule-based analyzer when the remote service
// is unreachable.
package llm

import "errors"

// ErrUnavailable indicates the remote model could not be reached or is
// not configured. It is distinct from a valid low-confidence analysis.
var ErrUnavailable = errors.New("llm: service unavailable")

// Intent is the classified purpose of a scammer message.
type Intent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SocialEngineering describes manipulation tactics present in a message.
type SocialEngineering struct {
	Tactics  []string `json:"tactics"`
	Severity string   `json:"severity"`
	Details  string   `json:"details"`
}

// Narrative identifies which scam playbook is being run.
type Narrative struct {
	Category    string `json:"category"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
}

// Analysis is the full structured result of analyzing one message.
type Analysis struct {
	Intent            Intent            `json:"intent"`
	SocialEngineering SocialEngineering `json:"social_engineering"`
	Narrative         Narrative         `json:"scam_narrative"`
	CompositeScore    float64           `json:"composite_score"`
	Source            string            `json:"source"`
}

// Intent labels the analyzer may return.
var IntentCategories = []string{
	"credential_harvesting",
	"phishing_link",
	"financial_fraud",
	"impersonation_scam",
	"tech_support_scam",
	"payment_redirection",
	"emotional_manipulation",
	"advance_fee_fraud",
	"romance_scam",
	"benign",
}

var seTactics = []string{
	"fear", "urgency", "authority", "scarcity",
	"social_proof", "reciprocity", "greed",
	"sympathy", "guilt", "intimidation",
}

var narrativeCategories = []string{
	"bank_impersonation",
	"government_impersonation",
	"tech_support",
	"lottery_prize",
	"investment_fraud",
	"romance_scam",
	"job_offer_scam",
	"delivery_scam",
	"tax_refund",
	"account_verification",
	"kyc_update",
	"loan_approval",
	"custom_clearance",
	"unknown",
}

func validIntent(label string) bool {
	for _, c := range IntentCategories {
		if c == label {
			return true
		}
	}
	return false
}

func validTactic(t string) bool {
	for _, c := range seTactics {
		if c == t {
			return true
		}
	}
	return false
}

func validNarrative(cat string) bool {
	for _, c := range narrativeCategories {
		if c == cat {
			return true
		}
	}
	return false
}

func validSeverity(s string) bool {
	switch s {
	case "none", "low", "medium", "high", "critical":
		return true
	}
	return false
}

func validStage(s string) bool {
	switch s {
	case "opening", "building_trust", "exploitation", "closing":
		return true
	}
	return false
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
