package domain

import "time"

// Sender identifies which side of the conversation produced a turn.
type Sender string

const (
	SenderScammer Sender = "scammer"
	SenderAgent   Sender = "agent"
)

// Turn is one exchanged message within a session.
type Turn struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// FlagRecord captures the detection signals for one processed message.
// Appended to Session.FlagsLog once per turn.
type FlagRecord struct {
	Turn         int       `json:"turn"`
	Score        float64   `json:"score"`
	ScamDetected bool      `json:"scamDetected"`
	HardTriggers []string  `json:"hardTriggers,omitempty"`
	Flags        []string  `json:"flags,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Session is the unit of conversation state, persisted between turns.
type Session struct {
	ID             string           `json:"id"`
	History        []Turn           `json:"history"`
	MessageCount   int              `json:"messageCount"`
	DialogueState  State            `json:"dialogueState"`
	StateTurnCount int              `json:"stateTurnCount"`
	AskedFields    map[Category]int `json:"askedFields"`
	Intel          *IntelBundle     `json:"intel"`
	FlagsLog       []FlagRecord     `json:"flagsLog"`
	ScamType       string           `json:"scamType"`
	Ended          bool             `json:"ended"`
	StartTime      time.Time        `json:"startTime"`
	LastUpdated    time.Time        `json:"lastUpdated"`
}

// NewSession creates a fresh session in the initial dialogue state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:            id,
		DialogueState: StateInit,
		AskedFields:   make(map[Category]int),
		Intel:         NewIntelBundle(),
		ScamType:      "unknown",
		StartTime:     now,
		LastUpdated:   now,
	}
}

// Migrate backfills fields that older persisted sessions may lack.
// Called once on load, before any turn processing touches the session.
func (s *Session) Migrate() {
	if s.Intel == nil {
		s.Intel = NewIntelBundle()
	} else {
		s.Intel.Backfill()
	}
	if s.AskedFields == nil {
		s.AskedFields = make(map[Category]int)
	}
	if s.DialogueState == "" {
		s.DialogueState = StateInit
	}
	if s.ScamType == "" {
		s.ScamType = "unknown"
	}
}

// Append records one turn at the end of the history.
func (s *Session) Append(sender Sender, text string, at time.Time) {
	s.History = append(s.History, Turn{Sender: sender, Text: text, Timestamp: at})
}

// RecentHistory returns the last n turns, oldest first.
func (s *Session) RecentHistory(n int) []Turn {
	if n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// TransitionTo moves the session to a new dialogue state, resetting the
// per-state turn counter only when the state actually changes.
func (s *Session) TransitionTo(next State) {
	if next != s.DialogueState {
		s.DialogueState = next
		s.StateTurnCount = 0
	}
}
