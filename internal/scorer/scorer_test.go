package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
)

type stubAnalyzer struct {
	analysis llm.Analysis
	err      error
}

func (s stubAnalyzer) AnalyzeRemote(context.Context, string, []domain.Turn) (llm.Analysis, error) {
	return s.analysis, s.err
}

func offlineScorer() *Scorer {
	return New(stubAnalyzer{err: llm.ErrUnavailable}, nil)
}

func TestScoreBenign(t *testing.T) {
	s := New(stubAnalyzer{analysis: llm.Analysis{Intent: llm.Intent{Label: "benign"}}}, nil)
	r := s.Score(context.Background(), "see you at lunch tomorrow", nil)

	assert.False(t, r.ScamDetected)
	assert.False(t, r.Suspicious)
	assert.Empty(t, r.HardTriggers)
	assert.InDelta(t, 0.0, r.Composite, 0.001)
}

func TestCredentialHarvestFloor(t *testing.T) {
	r := offlineScorer().Score(context.Background(), "Please share your OTP immediately", nil)

	assert.True(t, r.ScamDetected)
	assert.Contains(t, r.HardTriggers, "credential_harvest_attempt")
	assert.GreaterOrEqual(t, r.Composite, 0.90)
	assert.Contains(t, r.RedFlags, "asks the victim to share an OTP, PIN, or password")
}

func TestHandleRedirectionFloor(t *testing.T) {
	r := offlineScorer().Score(context.Background(), "pay rs 500 to merchant@ybl now", nil)

	assert.True(t, r.ScamDetected)
	assert.Contains(t, r.HardTriggers, "payment_redirection_with_upi")
	assert.GreaterOrEqual(t, r.Composite, 0.80)
}

// A link or phone number forces a scam verdict even when the weighted
// score alone would fall below the suspicious band.
func TestHardTokenOverridesLowScore(t *testing.T) {
	s := offlineScorer()

	r := s.Score(context.Background(), "check http://example.com for pics", nil)
	assert.Less(t, r.Composite, 0.25)
	assert.True(t, r.ScamDetected)
	assert.Contains(t, r.HardTriggers, "url_token")

	r = s.Score(context.Background(), "reach me at 9876543210 whenever", nil)
	assert.Less(t, r.Composite, 0.25)
	assert.True(t, r.ScamDetected)
	assert.Contains(t, r.HardTriggers, "phone_token")
}

func TestReweightWhenModelUnavailable(t *testing.T) {
	r := offlineScorer().Score(context.Background(), "verify your account", nil)

	assert.False(t, r.ModelAvailable)
	assert.Equal(t, 0.0, r.Signals["llm_intent"].Weight)
	assert.InDelta(t, 0.3125, r.Signals["keyword"].Weight, 0.0001)
	// verify 0.7 + account 0.4, over 3, at the scaled keyword weight
	assert.InDelta(t, 1.1/3.0*0.3125, r.Composite, 0.001)
}

func TestModelSignalContribution(t *testing.T) {
	s := New(stubAnalyzer{analysis: llm.Analysis{
		Intent: llm.Intent{Label: "financial_fraud", Confidence: 0.8},
	}}, nil)
	r := s.Score(context.Background(), "hello", nil)

	assert.True(t, r.ModelAvailable)
	assert.Equal(t, []string{"financial_fraud"}, r.Signals["llm_intent"].Triggers)
	assert.InDelta(t, 0.16, r.Composite, 0.001)
}

func TestSuspiciousNeedsPriorTurns(t *testing.T) {
	s := offlineScorer()
	text := "verify your account immediately or it will be blocked"

	first := s.Score(context.Background(), text, nil)
	assert.True(t, first.Suspicious)
	assert.False(t, first.ScamDetected)

	history := []domain.Turn{{Sender: domain.SenderScammer, Text: "hello sir"}}
	followUp := s.Score(context.Background(), text, history)
	assert.True(t, followUp.Suspicious)
	assert.True(t, followUp.ScamDetected)
	assert.InDelta(t, 0.02, followUp.HistoryBoost, 0.0001)
}

func TestAuthorityEngagesFirstContact(t *testing.T) {
	r := offlineScorer().Score(context.Background(),
		"i am calling from sbi bank customer care about your account", nil)

	assert.True(t, r.Suspicious)
	assert.True(t, r.ScamDetected)
	assert.Contains(t, r.Signals["authority"].Triggers, "institution_impersonation")
}

func TestEmotionalTacticsBoostAndFlag(t *testing.T) {
	r := offlineScorer().Score(context.Background(),
		"congratulations you won a free prize, claim your reward", nil)

	assert.Contains(t, r.EmotionalTactics, "greed")
	assert.InDelta(t, 0.03, r.EmotionalBoost, 0.0001)
	assert.Contains(t, r.RedFlags, "promises prizes, rewards, or easy money")
}

func TestObfuscationDoesNotDodgeKeywords(t *testing.T) {
	r := offlineScorer().Score(context.Background(), "your acc0unt is bl0cked, v3rify now", nil)

	assert.Contains(t, r.Signals["keyword"].Triggers, "account")
	assert.Contains(t, r.Signals["keyword"].Triggers, "blocked")
	assert.Contains(t, r.Signals["keyword"].Triggers, "verify")
}
