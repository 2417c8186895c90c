// Package engine orchestrates one conversation turn: extraction,
// scoring, reply planning, persistence, and end-of-session reporting.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/defense"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/extract"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/metrics"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/planner"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/report"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/scorer"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/session"
)

// TurnRequest is one inbound scammer message.
type TurnRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// TurnResponse is the engine's answer for one turn.
type TurnResponse struct {
	SessionID             string              `json:"sessionId"`
	Reply                 string              `json:"reply"`
	Status                string              `json:"status"`
	Ended                 bool                `json:"ended"`
	ScamDetected          bool                `json:"scamDetected"`
	ScamType              string              `json:"scamType"`
	Confidence            float64             `json:"confidence"`
	DialogueState         domain.State        `json:"dialogueState"`
	MessageCount          int                 `json:"messageCount"`
	EngagementSeconds     float64             `json:"engagementSeconds"`
	RedFlags              []string            `json:"redFlags,omitempty"`
	AgentNotes            string              `json:"agentNotes"`
	ExtractedIntelligence *domain.IntelBundle `json:"extractedIntelligence"`
	FlagsLog              []domain.FlagRecord `json:"flagsLog,omitempty"`
	Error                 string              `json:"error,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusEnded   = "ended"
	StatusError   = "error"
)

// Archiver persists final reports locally and serves them back after
// the redis session has expired. Optional.
type Archiver interface {
	Save(ctx context.Context, r report.Report) error
	Get(ctx context.Context, sessionID string) (*report.Report, error)
}

// Options configure an Engine.
type Options struct {
	SessionTTL  time.Duration
	HardCeiling int
	// Extractor issues the model extraction pass. Nil disables it;
	// the pattern passes still run.
	Extractor extract.Extractor
	Log       *slog.Logger
	Now       func() time.Time
}

// Engine wires the per-turn pipeline together. One instance serves all
// sessions; per-session mutual exclusion comes from the locker.
type Engine struct {
	store    session.Store
	locker   *session.Locker
	scorer   *scorer.Scorer
	planner  *planner.Planner
	defender  *defense.Defender
	sink      report.Sink
	archive   Archiver
	extractor extract.Extractor

	ttl     time.Duration
	ceiling int
	log     *slog.Logger
	now     func() time.Time
}

func New(store session.Store, sc *scorer.Scorer, pl *planner.Planner, def *defense.Defender, sink report.Sink, archive Archiver, opts Options) *Engine {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.HardCeiling <= 0 {
		opts.HardCeiling = 50
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if sink == nil {
		sink = report.NopSink{}
	}
	return &Engine{
		store:     store,
		locker:    session.NewLocker(),
		scorer:    sc,
		planner:   pl,
		defender:  def,
		sink:      sink,
		archive:   archive,
		extractor: opts.Extractor,
		ttl:       opts.SessionTTL,
		ceiling:   opts.HardCeiling,
		log:       opts.Log,
		now:      opts.Now,
	}
}

// neutralReplies hold the line when a message has not crossed the
// engagement threshold. Counters advance, the state machine does not.
var neutralReplies = []string{
	"Sorry, who is this?",
	"I don't understand, what is this regarding?",
	"Okay... can you explain what this is about?",
	"I'm sorry, I think you may have the wrong number.",
	"What do you mean?",
}

// ProcessTurn handles one scammer message end to end. Duplicate
// requests for the same session are serialized, and a session that has
// already ended is returned untouched.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	start := time.Now()
	defer func() {
		metrics.TurnDuration.Observe(time.Since(start).Seconds())
	}()

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	unlock := e.locker.Lock(id)
	defer unlock()

	sess, err := e.store.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		sess = domain.NewSession(id, e.now())
	} else if err != nil {
		return TurnResponse{SessionID: id}, fmt.Errorf("process turn: %w", err)
	}

	if sess.Ended {
		return TurnResponse{
			SessionID:             sess.ID,
			Status:                StatusEnded,
			Ended:                 true,
			ScamDetected:          detectedEver(sess),
			ScamType:              sess.ScamType,
			DialogueState:         sess.DialogueState,
			MessageCount:          sess.MessageCount,
			EngagementSeconds:     sess.LastUpdated.Sub(sess.StartTime).Seconds(),
			AgentNotes:            report.Notes(sess),
			ExtractedIntelligence: sess.Intel,
			FlagsLog:              sess.FlagsLog,
		}, nil
	}

	// Scoring, pattern extraction, and the model extraction pass are
	// independent; run them in parallel. None returns an error: the
	// scorer and model pass degrade on their own and pattern
	// extraction is pure.
	var (
		res        scorer.Result
		patterns   extract.Harvest
		obfusc     extract.Harvest
		modelIntel extract.Harvest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res = e.scorer.Score(gctx, req.Message, sess.History)
		return nil
	})
	g.Go(func() error {
		patterns = extract.Patterns(req.Message)
		obfusc = extract.Obfuscated(req.Message)
		return nil
	})
	g.Go(func() error {
		modelIntel = extract.Model(gctx, e.extractor, req.Message)
		return nil
	})
	_ = g.Wait()

	outcome := "unavailable"
	if res.ModelAvailable {
		outcome = "ok"
	}
	metrics.ModelCalls.WithLabelValues(outcome).Inc()

	// Third pass needs the analysis, so it runs after the group.
	semantic := extract.Semantic(req.Message, res.Analysis)
	merged := extract.Merge(patterns, obfusc, modelIntel, semantic)
	e.applyHarvest(sess, merged)

	now := e.now()
	sess.Append(domain.SenderScammer, req.Message, now)
	sess.MessageCount++
	sess.FlagsLog = append(sess.FlagsLog, domain.FlagRecord{
		Turn:         sess.MessageCount,
		Score:        res.Composite,
		ScamDetected: res.ScamDetected,
		HardTriggers: res.HardTriggers,
		Flags:        res.RedFlags,
		Timestamp:    now,
	})
	if sess.ScamType == "unknown" && res.ScamDetected {
		if cat := res.Analysis.Narrative.Category; cat != "" && cat != "unknown" {
			sess.ScamType = cat
		}
	}
	metrics.MessagesProcessed.WithLabelValues(verdict(res)).Inc()

	reply := e.composeReply(ctx, sess, req.Message, res)

	sess.Append(domain.SenderAgent, reply, e.now())
	sess.LastUpdated = e.now()

	status := StatusSuccess
	finalized := false
	if sess.MessageCount >= e.ceiling {
		sess.Ended = true
		status = StatusEnded
		finalized = true
	}

	if err := e.store.Put(ctx, sess, e.ttl); err != nil {
		return TurnResponse{SessionID: id}, fmt.Errorf("process turn: %w", err)
	}

	// Delivery happens after the ended flag is durable, so a second
	// request for the same session can never report twice.
	if finalized {
		e.finalize(ctx, sess)
	}

	return TurnResponse{
		SessionID:             sess.ID,
		Reply:                 reply,
		Status:                status,
		Ended:                 sess.Ended,
		ScamDetected:          res.ScamDetected,
		ScamType:              sess.ScamType,
		Confidence:            res.Composite,
		DialogueState:         sess.DialogueState,
		MessageCount:          sess.MessageCount,
		EngagementSeconds:     sess.LastUpdated.Sub(sess.StartTime).Seconds(),
		RedFlags:              res.RedFlags,
		AgentNotes:            report.Notes(sess),
		ExtractedIntelligence: sess.Intel,
		FlagsLog:              sess.FlagsLog,
	}, nil
}

// detectedEver reports whether any turn in the session crossed the
// detection bar.
func detectedEver(sess *domain.Session) bool {
	for _, rec := range sess.FlagsLog {
		if rec.ScamDetected {
			return true
		}
	}
	return false
}

// composeReply picks the agent's reply. A bot accusation bypasses the
// planner entirely and freezes the state machine; otherwise a detected
// scam engages the planner and anything else gets a holding reply.
func (e *Engine) composeReply(ctx context.Context, sess *domain.Session, message string, res scorer.Result) string {
	if e.defender != nil {
		if defl, ok := e.defender.Deflect(message, sess.MessageCount); ok {
			metrics.Deflections.WithLabelValues(defl.Strategy).Inc()
			e.log.Info("bot accusation deflected",
				"session", sess.ID,
				"accusation", string(defl.Accusation),
				"strategy", defl.Strategy)
			return defl.Reply
		}
	}

	if !res.ScamDetected {
		return neutralReplies[(sess.MessageCount-1)%len(neutralReplies)]
	}

	plan := e.planner.Plan(ctx, sess, message)
	if plan.State != sess.DialogueState {
		metrics.StateTransitions.WithLabelValues(string(plan.State)).Inc()
	}
	sess.TransitionTo(plan.State)
	sess.StateTurnCount++
	if plan.Target != "" {
		sess.AskedFields[plan.Target]++
	}
	return plan.Reply
}

// applyHarvest merges new artifacts into the session bundle and counts
// the additions per category.
func (e *Engine) applyHarvest(sess *domain.Session, merged extract.Harvest) {
	before := make(map[domain.Category]int, len(domain.Categories))
	for _, cat := range domain.Categories {
		before[cat] = len(sess.Intel.Fields[cat])
	}
	extract.Apply(sess.Intel, merged)
	for _, cat := range domain.Categories {
		if n := len(sess.Intel.Fields[cat]) - before[cat]; n > 0 {
			metrics.ArtifactsExtracted.WithLabelValues(string(cat)).Add(float64(n))
		}
	}
}

// finalize delivers the report once and archives it. Failures are
// logged, not retried: the ended flag is already persisted and a
// repeat delivery would be worse than a missing one.
func (e *Engine) finalize(ctx context.Context, sess *domain.Session) {
	rep := report.Build(sess, e.now())

	delivery := "delivered"
	if err := e.sink.Deliver(ctx, rep); err != nil {
		delivery = "failed"
		e.log.Error("report delivery failed", "session", sess.ID, "error", err)
	}
	metrics.SessionsFinalized.WithLabelValues(delivery).Inc()

	if e.archive != nil {
		if err := e.archive.Save(ctx, rep); err != nil {
			e.log.Error("report archive failed", "session", sess.ID, "error", err)
		}
	}

	e.log.Info("session finalized",
		"session", sess.ID,
		"messages", sess.MessageCount,
		"scam_type", sess.ScamType,
		"artifacts", sess.Intel.Count(),
		"delivery", delivery)
}

// Report builds the current report for a session, falling back to the
// archive once the redis copy has expired.
func (e *Engine) Report(ctx context.Context, sessionID string) (*report.Report, error) {
	sess, err := e.store.Get(ctx, sessionID)
	if err == nil {
		r := report.Build(sess, sess.LastUpdated)
		return &r, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("report %s: %w", sessionID, err)
	}

	if e.archive != nil {
		return e.archive.Get(ctx, sessionID)
	}
	return nil, nil
}

func verdict(res scorer.Result) string {
	switch {
	case res.ScamDetected:
		return "scam"
	case res.Suspicious:
		return "suspicious"
	default:
		return "clean"
	}
}
