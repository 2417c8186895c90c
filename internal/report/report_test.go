package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

func sampleSession() *domain.Session {
	sess := domain.NewSession("sess-1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	sess.Append(domain.SenderScammer, "Your account is blocked, verify immediately", sess.StartTime)
	sess.Append(domain.SenderAgent, "Who is this?", sess.StartTime)
	sess.MessageCount = 12
	sess.ScamType = "bank_impersonation"
	sess.Intel.Add(domain.CategoryPaymentHandles, "pay.me@upi")
	sess.Intel.Add(domain.CategoryPhones, "9876543210")
	sess.Intel.Add(domain.CategoryLinks, "http://bit.ly/x")
	sess.FlagsLog = append(sess.FlagsLog,
		domain.FlagRecord{Turn: 1, Score: 0.9, ScamDetected: true, Flags: []string{"applies time pressure to force a quick decision"}},
		domain.FlagRecord{Turn: 2, Score: 0.8, ScamDetected: true, Flags: []string{"applies time pressure to force a quick decision", "pushes payment toward a UPI handle in the message"}},
	)
	return sess
}

func TestBuild(t *testing.T) {
	endedAt := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	r := Build(sampleSession(), endedAt)

	assert.Equal(t, "sess-1", r.SessionID)
	assert.True(t, r.ScamDetected)
	assert.Equal(t, "bank_impersonation", r.ScamType)
	assert.Equal(t, 12, r.TotalMessagesExchanged)
	assert.Equal(t, endedAt, r.EndedAt)
	// Flags are deduplicated across turns, first-seen order kept.
	assert.Equal(t, []string{
		"applies time pressure to force a quick decision",
		"pushes payment toward a UPI handle in the message",
	}, r.RedFlags)
}

func TestNotes(t *testing.T) {
	notes := Notes(sampleSession())

	assert.Contains(t, notes, "urgency tactics")
	assert.Contains(t, notes, "verification/KYC pretext")
	assert.Contains(t, notes, "Shared 1 phishing link(s)")
	assert.Contains(t, notes, "Requested payment to 1 UPI handle(s)")
	assert.Contains(t, notes, "Provided 1 phone number(s) for callback")
	assert.Contains(t, notes, "Extended conversation to build trust")
}

func TestNotesQuickConversion(t *testing.T) {
	sess := domain.NewSession("s", time.Now())
	sess.MessageCount = 4
	assert.Contains(t, Notes(sess), "quick conversion")
}

func TestCallbackSinkDelivers(t *testing.T) {
	var got Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewCallbackSink(srv.URL, time.Second)
	r := Build(sampleSession(), time.Now().UTC())
	require.NoError(t, sink.Deliver(context.Background(), r))
	assert.Equal(t, "sess-1", got.SessionID)
	assert.True(t, got.ScamDetected)
}

func TestCallbackSinkErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewCallbackSink(srv.URL, time.Second)
	err := sink.Deliver(context.Background(), Report{SessionID: "x"})
	assert.Error(t, err)
}

func TestArchiveRoundTrip(t *testing.T) {
	archive, err := NewArchive(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer archive.Close()

	ctx := context.Background()
	r := Build(sampleSession(), time.Now().UTC())
	require.NoError(t, archive.Save(ctx, r))

	got, err := archive.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.SessionID, got.SessionID)
	assert.Equal(t, r.TotalMessagesExchanged, got.TotalMessagesExchanged)
	assert.Equal(t, []string{"pay.me@upi"}, got.ExtractedIntelligence.Fields[domain.CategoryPaymentHandles])

	// Saving again overwrites, not errors.
	r.TotalMessagesExchanged = 13
	require.NoError(t, archive.Save(ctx, r))
	got, err = archive.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 13, got.TotalMessagesExchanged)
}

func TestArchiveGetMissing(t *testing.T) {
	archive, err := NewArchive(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer archive.Close()

	got, err := archive.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}
