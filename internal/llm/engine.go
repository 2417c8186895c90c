package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/normalize"
)

const analysisSystemPrompt = `You are a cybersecurity analyst specializing in scam and fraud detection.
Analyze the given message (and optional conversation history) and return
a single JSON object with EXACTLY these three sections:

{
  "intent": {
    "label": "<one of: credential_harvesting, phishing_link, financial_fraud, impersonation_scam, tech_support_scam, payment_redirection, emotional_manipulation, advance_fee_fraud, romance_scam, benign>",
    "confidence": <float 0.0-1.0>,
    "reasoning": "<one sentence>"
  },
  "social_engineering": {
    "tactics": [<list of: fear, urgency, authority, scarcity, social_proof, reciprocity, greed, sympathy, guilt, intimidation>],
    "severity": "<none|low|medium|high|critical>",
    "details": "<one sentence>"
  },
  "scam_narrative": {
    "category": "<one of: bank_impersonation, government_impersonation, tech_support, lottery_prize, investment_fraud, romance_scam, job_offer_scam, delivery_scam, tax_refund, account_verification, kyc_update, loan_approval, custom_clearance, unknown>",
    "stage": "<opening|building_trust|exploitation|closing>",
    "description": "<one sentence>"
  },
  "composite_score": <float 0.0-1.0>
}

Rules:
- Output ONLY valid JSON. No markdown, no explanation, no extra keys.
- Be conservative: only flag as scam if there are clear indicators.
- composite_score should reflect overall scam likelihood.`

// Engine is the process-wide language-model capability: one shared
// client, one shared cache, injected everywhere it is needed.
type Engine struct {
	client   *Client
	cache    Cache
	cacheTTL time.Duration

	analysisTemp float64
	log          *slog.Logger
}

// NewEngine wires a client and cache into an engine. A nil cache
// disables caching; a nil logger uses the default.
func NewEngine(client *Client, cache Cache, cacheTTL time.Duration, analysisTemp float64, log *slog.Logger) *Engine {
	if cache == nil {
		cache = NopCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		client:       client,
		cache:        cache,
		cacheTTL:     cacheTTL,
		analysisTemp: analysisTemp,
		log:          log,
	}
}

// Available reports whether the remote model is configured.
func (e *Engine) Available() bool {
	return e != nil && e.client.Configured()
}

// Analyze runs structured scam analysis over one message. Results come
// from the cache, then the model, then the rule-based fallback, in that
// order; it never fails.
func (e *Engine) Analyze(ctx context.Context, text string, history []domain.Turn) Analysis {
	analysis, err := e.AnalyzeRemote(ctx, text, history)
	if err != nil {
		e.log.Debug("model analysis unavailable, using heuristic", "error", err)
		return Heuristic(normalize.ForDetection(text))
	}
	return analysis
}

// AnalyzeRemote performs analysis strictly via the remote model and
// cache. It returns ErrUnavailable instead of falling back, for callers
// that need to distinguish degraded service from a low-confidence result.
func (e *Engine) AnalyzeRemote(ctx context.Context, text string, history []domain.Turn) (Analysis, error) {
	normText := normalize.ForDetection(text)
	key := hashKey("analysis", normText, historyDigest(history))

	if raw, ok := e.cache.Get(ctx, key); ok {
		var cached Analysis
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	content, err := e.client.Complete(ctx, analysisSystemPrompt, buildUserPrompt(text, history), e.analysisTemp, 400)
	if err != nil {
		return Analysis{}, err
	}

	analysis, err := parseAnalysis(content)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if raw, err := json.Marshal(analysis); err == nil {
		e.cache.Set(ctx, key, string(raw), e.cacheTTL)
	}
	return analysis, nil
}

// ScoreIntent returns the model's intent confidence for the weighted
// scoring model. ErrUnavailable means the signal should be reweighted
// away, not scored as zero-confidence benign.
func (e *Engine) ScoreIntent(ctx context.Context, text string, history []domain.Turn) (float64, string, error) {
	analysis, err := e.AnalyzeRemote(ctx, text, history)
	if err != nil {
		return 0, "", err
	}
	return analysis.Intent.Confidence, analysis.Intent.Label, nil
}

// Generate produces reply text for a prompt at the given temperature,
// with content-hash caching so identical prompts are not re-issued.
func (e *Engine) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	key := hashKey("generate", fmt.Sprintf("%.2f", temperature), prompt)
	if cached, ok := e.cache.Get(ctx, key); ok {
		return cached, nil
	}

	text, err := e.client.Complete(ctx, "", prompt, temperature, 200)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(strings.Trim(text, `"`))
	if text == "" {
		return "", fmt.Errorf("%w: empty generation", ErrUnavailable)
	}

	e.cache.Set(ctx, key, text, e.cacheTTL)
	return text, nil
}

func buildUserPrompt(text string, history []domain.Turn) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation history (most recent):\n")
		start := 0
		if len(history) > 8 {
			start = len(history) - 8
		}
		for _, turn := range history[start:] {
			role := "Victim"
			if turn.Sender == domain.SenderScammer {
				role = "Scammer"
			}
			fmt.Fprintf(&b, "  %s: %s\n", role, turn.Text)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Analyze this latest message:\n%q", text)
	return b.String()
}

// historyDigest folds the recent history tail into the cache key so the
// same message in a different conversation is analyzed fresh.
func historyDigest(history []domain.Turn) string {
	start := 0
	if len(history) > 4 {
		start = len(history) - 4
	}
	var parts []string
	for _, t := range history[start:] {
		text := t.Text
		if len(text) > 60 {
			text = text[:60]
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "|")
}

func parseAnalysis(content string) (Analysis, error) {
	var raw Analysis
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return sanitize(raw), nil
}

// sanitize clamps and validates model output so a misbehaving model can
// never inject unexpected labels downstream.
func sanitize(a Analysis) Analysis {
	if !validIntent(a.Intent.Label) {
		a.Intent.Label = "benign"
	}
	a.Intent.Confidence = clamp01(a.Intent.Confidence)
	a.Intent.Reasoning = truncate(a.Intent.Reasoning, 200)

	var tactics []string
	for _, t := range a.SocialEngineering.Tactics {
		if validTactic(t) {
			tactics = append(tactics, t)
		}
	}
	a.SocialEngineering.Tactics = tactics
	if !validSeverity(a.SocialEngineering.Severity) {
		a.SocialEngineering.Severity = "none"
	}
	a.SocialEngineering.Details = truncate(a.SocialEngineering.Details, 200)

	if !validNarrative(a.Narrative.Category) {
		a.Narrative.Category = "unknown"
	}
	if !validStage(a.Narrative.Stage) {
		a.Narrative.Stage = "opening"
	}
	a.Narrative.Description = truncate(a.Narrative.Description, 200)

	a.CompositeScore = clamp01(a.CompositeScore)
	a.Source = "llm"
	return a
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
