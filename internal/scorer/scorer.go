// Package scorer classifies incoming messages with a weighted
// multi-signal model: keyword tiers, urgency, authority and payment
// pattern groups, plus model-assessed intent. Pattern signals run on
// the normalized form of the message so obfuscation does not dodge
// them; payment detection additionally checks the raw text because
// normalization folds the '@' out of UPI handles.
package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/normalize"
)

// Analyzer supplies model-based intent analysis. An error wrapping
// llm.ErrUnavailable means the signal is missing, not benign, and the
// remaining signals are reweighted to cover its share.
type Analyzer interface {
	AnalyzeRemote(ctx context.Context, text string, history []domain.Turn) (llm.Analysis, error)
}

// Signal is one component of the composite score.
type Signal struct {
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Weighted float64  `json:"weighted"`
	Triggers []string `json:"triggers,omitempty"`
}

// Result is the full scoring verdict for a single message.
type Result struct {
	Composite        float64           `json:"composite"`
	ScamDetected     bool              `json:"scamDetected"`
	Suspicious       bool              `json:"suspicious"`
	Signals          map[string]Signal `json:"signals"`
	HardTriggers     []string          `json:"hardTriggers,omitempty"`
	EmotionalTactics []string          `json:"emotionalTactics,omitempty"`
	EmotionalBoost   float64           `json:"emotionalBoost"`
	HistoryBoost     float64           `json:"historyBoost"`
	RedFlags         []string          `json:"redFlags,omitempty"`
	Analysis         llm.Analysis      `json:"analysis"`
	ModelAvailable   bool              `json:"modelAvailable"`
}

// Scorer evaluates messages. Safe for concurrent use.
type Scorer struct {
	analyzer Analyzer
	log      *slog.Logger
}

func New(analyzer Analyzer, log *slog.Logger) *Scorer {
	if log == nil {
		log = slog.Default()
	}
	return &Scorer{analyzer: analyzer, log: log}
}

// Score evaluates one raw message against the full signal set.
// History is the prior conversation, newest last, and only influences
// the persistence boost and the suspicious-tier decision.
func (s *Scorer) Score(ctx context.Context, raw string, history []domain.Turn) Result {
	norm := normalize.ForDetection(raw)
	rawLower := strings.ToLower(raw)

	keywordScore, keywordHits := scoreKeywords(norm)
	urgencyScore, urgencyHits := scoreGroups(norm, urgencyGroups)
	authorityScore, authorityHits := scoreGroups(norm, authorityGroups)
	paymentScore, paymentHits := paymentSignal(norm, rawLower)

	analysis, modelScore, available := s.analyze(ctx, raw, norm, history)

	signals := map[string]Signal{
		"keyword":   {Score: keywordScore, Weight: weightKeyword, Triggers: keywordHits},
		"urgency":   {Score: urgencyScore, Weight: weightUrgency, Triggers: urgencyHits},
		"authority": {Score: authorityScore, Weight: weightAuthority, Triggers: authorityHits},
		"payment":   {Score: paymentScore, Weight: weightPayment, Triggers: paymentHits},
		"llm_intent": {
			Score:    modelScore,
			Weight:   weightLLM,
			Triggers: modelTriggers(analysis, available),
		},
	}

	// When the model signal is missing, its weight is redistributed
	// proportionally across the four pattern signals.
	scale := 1.0
	if !available {
		scale = 1.0 / (1.0 - weightLLM)
		sig := signals["llm_intent"]
		sig.Weight = 0
		sig.Score = 0
		signals["llm_intent"] = sig
	}

	composite := 0.0
	for name, sig := range signals {
		if name != "llm_intent" {
			sig.Weight *= scale
		}
		sig.Weighted = sig.Score * sig.Weight
		composite += sig.Weighted
		signals[name] = sig
	}

	tactics := matchedGroupNames(norm, emotionalGroups)
	emotionalBoost := 0.03 * float64(len(tactics))
	if emotionalBoost > 0.10 {
		emotionalBoost = 0.10
	}
	historyBoost := 0.02 * float64(priorScammerTurns(history))
	if historyBoost > 0.10 {
		historyBoost = 0.10
	}
	composite += emotionalBoost + historyBoost

	result := Result{
		Signals:          signals,
		EmotionalTactics: tactics,
		EmotionalBoost:   emotionalBoost,
		HistoryBoost:     historyBoost,
		Analysis:         analysis,
		ModelAvailable:   available,
	}

	// Hard triggers floor or force the verdict regardless of the
	// weighted total.
	if credentialHarvestRe.MatchString(norm) {
		result.HardTriggers = append(result.HardTriggers, "credential_harvest_attempt")
		if composite < 0.90 {
			composite = 0.90
		}
	}
	if handleTokenRe.MatchString(raw) && paymentScore > 0.3 {
		result.HardTriggers = append(result.HardTriggers, "payment_redirection_with_upi")
		if composite < 0.80 {
			composite = 0.80
		}
	}
	result.HardTriggers = append(result.HardTriggers, hardTokens(raw)...)

	if composite > 1 {
		composite = 1
	}
	result.Composite = composite
	result.Suspicious = composite >= suspiciousThreshold && composite < scamThreshold

	switch {
	case len(result.HardTriggers) > 0:
		result.ScamDetected = true
	case composite >= scamThreshold:
		result.ScamDetected = true
	case result.Suspicious && len(history) > 0:
		result.ScamDetected = true
	case result.Suspicious && authorityScore >= 0.3:
		result.ScamDetected = true
	}

	result.RedFlags = redFlags(result)
	return result
}

// analyze runs the model signal, falling back to the rule-based
// heuristic for flag enrichment when the model cannot be reached. The
// returned bool reports whether the model contributed to the score.
func (s *Scorer) analyze(ctx context.Context, raw, norm string, history []domain.Turn) (llm.Analysis, float64, bool) {
	if s.analyzer == nil {
		return llm.Heuristic(norm), 0, false
	}
	analysis, err := s.analyzer.AnalyzeRemote(ctx, raw, history)
	if err != nil {
		s.log.Debug("intent analysis unavailable, reweighting pattern signals", "error", err)
		return llm.Heuristic(norm), 0, false
	}
	return analysis, analysis.Intent.Confidence, true
}

// paymentSignal takes the better of the normalized and raw-lowercase
// scores. Handles like pay.me@upi only survive in the raw text.
func paymentSignal(norm, rawLower string) (float64, []string) {
	normScore, normHits := scoreGroups(norm, paymentGroups)
	rawScore, rawHits := scoreGroups(rawLower, paymentGroups)
	if rawScore > normScore {
		return rawScore, rawHits
	}
	return normScore, normHits
}

// hardTokens reports artifact-shaped tokens in the raw text. Any of
// them forces a scam-positive verdict on its own: a benign-reading
// message carrying a URL or payment destination is still a lure.
func hardTokens(raw string) []string {
	var names []string
	if urlTokenRe.MatchString(raw) {
		names = append(names, "url_token")
	}
	if emailTokenRe.MatchString(raw) {
		names = append(names, "email_token")
	}
	if phoneTokenRe.MatchString(raw) {
		names = append(names, "phone_token")
	}
	return names
}

func priorScammerTurns(history []domain.Turn) int {
	n := 0
	for _, t := range history {
		if t.Sender == domain.SenderScammer {
			n++
		}
	}
	return n
}

func modelTriggers(a llm.Analysis, available bool) []string {
	if !available || a.Intent.Label == "" || a.Intent.Label == "benign" {
		return nil
	}
	return []string{a.Intent.Label}
}

var tacticFlags = map[string]string{
	"fear":     "plays on fear of loss, arrest, or account compromise",
	"greed":    "promises prizes, rewards, or easy money",
	"sympathy": "appeals for sympathy with an emergency story",
	"guilt":    "applies guilt or social pressure to force compliance",
}

var groupFlags = map[string]string{
	"time_pressure":             "applies time pressure to force a quick decision",
	"threat_language":           "threatens suspension, legal action, or irreversible loss",
	"countdown":                 "uses a countdown or expiry deadline",
	"institution_impersonation": "claims to represent a bank, government body, or major company",
	"title_impersonation":       "invokes an official title to sound authoritative",
	"official_language":         "mimics official notice language and reference numbers",
	"payment_identifiers":       "contains a payment handle, account number, or IFSC code",
	"payment_request_language":  "asks for a money transfer or an upfront fee",
	"payment_redirection":       "redirects payment to a destination it controls",
}

// redFlags renders the verdict as a plain-English list for analysts.
func redFlags(r Result) []string {
	var flags []string
	for _, t := range r.HardTriggers {
		switch t {
		case "credential_harvest_attempt":
			flags = append(flags, "asks the victim to share an OTP, PIN, or password")
		case "payment_redirection_with_upi":
			flags = append(flags, "pushes payment toward a UPI handle in the message")
		case "url_token":
			flags = append(flags, "contains a link, a common phishing vector")
		case "email_token":
			flags = append(flags, "supplies an email address to move the victim off-channel")
		case "phone_token":
			flags = append(flags, "supplies a phone number to move the victim off-channel")
		}
	}
	for _, name := range []string{"urgency", "authority", "payment"} {
		for _, g := range r.Signals[name].Triggers {
			if f, ok := groupFlags[g]; ok {
				flags = append(flags, f)
			}
		}
	}
	for _, t := range r.EmotionalTactics {
		if f, ok := tacticFlags[t]; ok {
			flags = append(flags, f)
		}
	}
	if cat := r.Analysis.Narrative.Category; cat != "" && cat != "unknown" {
		flags = append(flags, fmt.Sprintf("matches the %s narrative", strings.ReplaceAll(cat, "_", " ")))
	}
	return flags
}
