package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/defense"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/planner"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/report"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/scorer"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/session"
)

type recordingSink struct {
	mu      sync.Mutex
	reports []report.Report
}

func (s *recordingSink) Deliver(_ context.Context, r report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func newTestEngine(t *testing.T, sink report.Sink) (*Engine, *session.RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := session.NewRedisStore(rdb)
	e := New(
		store,
		scorer.New(nil, nil),
		planner.New(nil, planner.Options{HardCeiling: 50}),
		defense.New(rand.New(rand.NewSource(1))),
		sink,
		nil,
		Options{SessionTTL: time.Hour, HardCeiling: 50},
	)
	return e, store
}

func TestNewSessionAssignsID(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	resp, err := e.ProcessTurn(context.Background(), TurnRequest{
		Message: "Please share your OTP immediately",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.False(t, resp.Ended)
	assert.True(t, resp.ScamDetected)
	assert.Equal(t, 1, resp.MessageCount)
	assert.NotEmpty(t, resp.Reply)
}

func TestExtractionMergesOnce(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	msg := "Call +919876543210 about case CC-2026-7782, pay via pay.me@upi or click http://bit.ly/x"

	resp, err := e.ProcessTurn(ctx, TurnRequest{Message: msg})
	require.NoError(t, err)
	require.True(t, resp.ScamDetected)

	intel := resp.ExtractedIntelligence
	assert.Equal(t, []string{"9876543210"}, intel.Fields[domain.CategoryPhones])
	assert.Equal(t, []string{"pay.me@upi"}, intel.Fields[domain.CategoryPaymentHandles])
	assert.Equal(t, []string{"http://bit.ly/x"}, intel.Fields[domain.CategoryLinks])
	assert.Equal(t, []string{"CC-2026-7782"}, intel.Fields[domain.CategoryCaseIDs])
	assert.Empty(t, intel.Fields[domain.CategoryBankAccounts])

	// Resending the same message must not duplicate anything.
	resp, err = e.ProcessTurn(ctx, TurnRequest{SessionID: resp.SessionID, Message: msg})
	require.NoError(t, err)
	assert.Equal(t, []string{"9876543210"}, resp.ExtractedIntelligence.Fields[domain.CategoryPhones])
	assert.Equal(t, []string{"pay.me@upi"}, resp.ExtractedIntelligence.Fields[domain.CategoryPaymentHandles])
}

func TestNeutralReplyBelowThreshold(t *testing.T) {
	e, store := newTestEngine(t, nil)
	ctx := context.Background()

	resp, err := e.ProcessTurn(ctx, TurnRequest{Message: "hello there"})
	require.NoError(t, err)

	assert.False(t, resp.ScamDetected)
	assert.Contains(t, neutralReplies, resp.Reply)
	assert.Equal(t, domain.StateInit, resp.DialogueState)

	sess, err := store.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.StateTurnCount, "holding replies do not advance the state machine")
	assert.Len(t, sess.History, 2)
}

func TestBotAccusationFreezesState(t *testing.T) {
	e, store := newTestEngine(t, nil)
	ctx := context.Background()

	sess := domain.NewSession("accused", time.Now().UTC())
	sess.DialogueState = domain.StateProbePayment
	sess.StateTurnCount = 3
	sess.MessageCount = 6
	require.NoError(t, store.Put(ctx, sess, time.Hour))

	resp, err := e.ProcessTurn(ctx, TurnRequest{SessionID: "accused", Message: "are you a bot?"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, domain.StateProbePayment, resp.DialogueState)
	assert.Equal(t, 7, resp.MessageCount)

	stored, err := store.Get(ctx, "accused")
	require.NoError(t, err)
	assert.Equal(t, domain.StateProbePayment, stored.DialogueState)
	assert.Equal(t, 3, stored.StateTurnCount)
	assert.Len(t, stored.History, 2)
}

func TestCeilingFinalization(t *testing.T) {
	sink := &recordingSink{}
	e, store := newTestEngine(t, sink)
	ctx := context.Background()

	sess := domain.NewSession("cap", time.Now().UTC())
	sess.DialogueState = domain.StateStall
	sess.MessageCount = 49
	sess.Intel.Add(domain.CategoryPaymentHandles, "pay.me@upi")
	sess.FlagsLog = append(sess.FlagsLog, domain.FlagRecord{Turn: 1, ScamDetected: true})
	require.NoError(t, store.Put(ctx, sess, time.Hour))

	resp, err := e.ProcessTurn(ctx, TurnRequest{SessionID: "cap", Message: "share your otp now to finish the transfer"})
	require.NoError(t, err)

	assert.Equal(t, StatusEnded, resp.Status)
	assert.True(t, resp.Ended)
	assert.Equal(t, 50, resp.MessageCount)
	assert.Equal(t, domain.StateClose, resp.DialogueState)
	require.Equal(t, 1, sink.count())
	assert.Equal(t, "cap", sink.reports[0].SessionID)
	assert.Equal(t, 50, sink.reports[0].TotalMessagesExchanged)
	assert.True(t, sink.reports[0].ScamDetected)

	// Further messages are short-circuited: no reply, no second
	// delivery, bundle untouched.
	again, err := e.ProcessTurn(ctx, TurnRequest{SessionID: "cap", Message: "hello?? answer me"})
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, again.Status)
	assert.Empty(t, again.Reply)
	assert.Equal(t, 50, again.MessageCount)
	assert.Equal(t, []string{"pay.me@upi"}, again.ExtractedIntelligence.Fields[domain.CategoryPaymentHandles])
	assert.Equal(t, 1, sink.count())
}

func TestConcurrentFinalizationDeliversOnce(t *testing.T) {
	sink := &recordingSink{}
	e, store := newTestEngine(t, sink)
	ctx := context.Background()

	sess := domain.NewSession("race", time.Now().UTC())
	sess.MessageCount = 49
	sess.FlagsLog = append(sess.FlagsLog, domain.FlagRecord{Turn: 1, ScamDetected: true})
	require.NoError(t, store.Put(ctx, sess, time.Hour))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ProcessTurn(ctx, TurnRequest{SessionID: "race", Message: "pay now"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sink.count())
}

func TestScamEngagesPlanner(t *testing.T) {
	e, store := newTestEngine(t, nil)
	ctx := context.Background()

	resp, err := e.ProcessTurn(ctx, TurnRequest{
		Message: "This is Officer Verma from SBI, your account will be blocked today, verify immediately",
	})
	require.NoError(t, err)
	require.True(t, resp.ScamDetected)

	sess, err := store.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.StateTurnCount)
	assert.Equal(t, []string{"Verma"}, sess.Intel.Fields[domain.CategoryNames])

	total := 0
	for _, n := range sess.AskedFields {
		total += n
	}
	assert.Equal(t, 1, total, "exactly one category probed per engaged turn")
}

type stubExtractor struct {
	mu    sync.Mutex
	calls int
	out   llm.Extraction
}

func (s *stubExtractor) ExtractIntel(_ context.Context, _ string) (llm.Extraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.out, nil
}

func TestModelExtractionRunsEveryTurn(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ext := &stubExtractor{out: llm.Extraction{
		Names:      []string{"Vikram Singh"},
		Additional: map[string][]string{"locations": {"Mumbai"}},
	}}
	e := New(
		session.NewRedisStore(rdb),
		scorer.New(nil, nil),
		planner.New(nil, planner.Options{}),
		defense.New(rand.New(rand.NewSource(1))),
		nil,
		nil,
		Options{Extractor: ext},
	)

	resp, err := e.ProcessTurn(context.Background(), TurnRequest{
		Message: "Your account is blocked, share your OTP to reactivate",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, ext.calls, "extraction pass issues exactly one model call per turn")
	assert.Equal(t, []string{"Vikram Singh"}, resp.ExtractedIntelligence.Fields[domain.CategoryNames])
	assert.Equal(t, []string{"Mumbai"}, resp.ExtractedIntelligence.Additional["locations"])

	_, err = e.ProcessTurn(context.Background(), TurnRequest{
		SessionID: resp.SessionID,
		Message:   "hello again",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ext.calls)
}
