package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicCredentialHarvest(t *testing.T) {
	a := Heuristic("please share your otp immediately")
	assert.Equal(t, "credential_harvesting", a.Intent.Label)
	assert.InDelta(t, 0.92, a.Intent.Confidence, 0.001)
	assert.Equal(t, "heuristic", a.Source)
	assert.Contains(t, a.SocialEngineering.Tactics, "urgency")
}

func TestHeuristicBenign(t *testing.T) {
	a := Heuristic("see you at lunch tomorrow")
	assert.Equal(t, "benign", a.Intent.Label)
	assert.Equal(t, 0.0, a.Intent.Confidence)
	assert.Equal(t, "unknown", a.Narrative.Category)
	assert.Equal(t, "none", a.SocialEngineering.Severity)
}

func TestHeuristicNarrative(t *testing.T) {
	a := Heuristic("your sbi account has been blocked, verify now")
	assert.Equal(t, "bank_impersonation", a.Narrative.Category)
	assert.Equal(t, "exploitation", a.Narrative.Stage)
}

func TestHeuristicSeverityScaling(t *testing.T) {
	a := Heuristic("urgent: officer says you will be arrested, you won a free prize, everyone already claimed")
	assert.GreaterOrEqual(t, len(a.SocialEngineering.Tactics), 4)
	assert.Equal(t, "critical", a.SocialEngineering.Severity)
}

func TestClientUnconfigured(t *testing.T) {
	c := NewClient("", "", "", time.Second)
	_, err := c.Complete(context.Background(), "s", "u", 0.1, 100)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEngineAnalyzeRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"intent\":{\"label\":\"credential_harvesting\",\"confidence\":0.95,\"reasoning\":\"asks for otp\"},\"social_engineering\":{\"tactics\":[\"urgency\",\"bogus\"],\"severity\":\"high\",\"details\":\"\"},\"scam_narrative\":{\"category\":\"bank_impersonation\",\"stage\":\"exploitation\",\"description\":\"\"},\"composite_score\":0.9}"}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "test-key", "test-model", time.Second), nil, time.Minute, 0.1, nil)
	a, err := e.AnalyzeRemote(context.Background(), "share your otp", nil)
	require.NoError(t, err)
	assert.Equal(t, "credential_harvesting", a.Intent.Label)
	assert.InDelta(t, 0.95, a.Intent.Confidence, 0.001)
	assert.Equal(t, []string{"urgency"}, a.SocialEngineering.Tactics, "unknown tactics dropped")
	assert.Equal(t, "llm", a.Source)
}

func TestEngineAnalyzeFallsBackToHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), nil, time.Minute, 0.1, nil)

	_, err := e.AnalyzeRemote(context.Background(), "share your otp now", nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	a := e.Analyze(context.Background(), "share your otp now", nil)
	assert.Equal(t, "credential_harvesting", a.Intent.Label)
	assert.Equal(t, "heuristic", a.Source)
}

func TestEngineMarkdownFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"intent\\\":{\\\"label\\\":\\\"phishing_link\\\",\\\"confidence\\\":0.8,\\\"reasoning\\\":\\\"\\\"},\\\"social_engineering\\\":{\\\"tactics\\\":[],\\\"severity\\\":\\\"low\\\",\\\"details\\\":\\\"\\\"},\\\"scam_narrative\\\":{\\\"category\\\":\\\"unknown\\\",\\\"stage\\\":\\\"opening\\\",\\\"description\\\":\\\"\\\"},\\\"composite_score\\\":0.6}\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), nil, time.Minute, 0.1, nil)
	a, err := e.AnalyzeRemote(context.Background(), "click this link", nil)
	require.NoError(t, err)
	assert.Equal(t, "phishing_link", a.Intent.Label)
}

func TestEngineCachesByContentHash(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"intent\":{\"label\":\"benign\",\"confidence\":0.1,\"reasoning\":\"\"},\"social_engineering\":{\"tactics\":[],\"severity\":\"none\",\"details\":\"\"},\"scam_narrative\":{\"category\":\"unknown\",\"stage\":\"opening\",\"description\":\"\"},\"composite_score\":0.1}"}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), NewRedisCache(rdb), time.Minute, 0.1, nil)

	_, err := e.AnalyzeRemote(context.Background(), "hello there", nil)
	require.NoError(t, err)
	_, err = e.AnalyzeRemote(context.Background(), "hello there", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second call must hit the cache")

	_, err = e.AnalyzeRemote(context.Background(), "different text", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"\"Oh no, which account is this about?\""}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), nil, time.Minute, 0.1, nil)
	reply, err := e.Generate(context.Background(), "reply as a worried customer", 0.8)
	require.NoError(t, err)
	assert.Equal(t, "Oh no, which account is this about?", reply)
}

func TestGenerateUnavailable(t *testing.T) {
	e := NewEngine(NewClient("", "", "", time.Second), nil, time.Minute, 0.1, nil)
	_, err := e.Generate(context.Background(), "anything", 0.8)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestExtractIntel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"upiIds\":[\"fraud@ybl\"],\"phoneNumbers\":[\"+91 98765 43210\"],\"phishingLinks\":[],\"bankAccounts\":[],\"ifscCodes\":[\"SBIN0001234\"],\"names\":[\"Vikram Singh\"],\"emails\":[],\"caseIds\":[],\"policyNumbers\":[],\"orderNumbers\":[],\"additionalIntel\":{\"organization_names\":[\"ICICI Bank\"],\"amounts\":[\"50000\"]}}"}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), nil, time.Minute, 0.1, nil)
	ext, err := e.ExtractIntel(context.Background(), "transfer 50000 to fraud@ybl, this is Vikram Singh from ICICI")
	require.NoError(t, err)
	assert.Equal(t, []string{"fraud@ybl"}, ext.UPIIDs)
	assert.Equal(t, []string{"Vikram Singh"}, ext.Names)
	assert.Equal(t, []string{"SBIN0001234"}, ext.IFSCCodes)
	assert.Equal(t, []string{"ICICI Bank"}, ext.Additional["organization_names"])
}

func TestExtractIntelCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"upiIds\":[],\"phoneNumbers\":[],\"phishingLinks\":[],\"bankAccounts\":[],\"ifscCodes\":[],\"names\":[],\"emails\":[],\"caseIds\":[],\"policyNumbers\":[],\"orderNumbers\":[],\"additionalIntel\":{}}"}}]}`))
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), NewRedisCache(rdb), time.Minute, 0.1, nil)
	_, err := e.ExtractIntel(context.Background(), "same message")
	require.NoError(t, err)
	_, err = e.ExtractIntel(context.Background(), "same message")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second call must hit the cache")
}

func TestExtractIntelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewEngine(NewClient(srv.URL, "", "m", time.Second), nil, time.Minute, 0.1, nil)
	_, err := e.ExtractIntel(context.Background(), "anything")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
