// Package report assembles the final intelligence report for a session
// and delivers it: once to the external callback endpoint, and once to
// a local sqlite archive for later retrieval.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

// Report is the final result payload for a finished session.
type Report struct {
	SessionID              string              `json:"sessionId"`
	ScamDetected           bool                `json:"scamDetected"`
	ScamType               string              `json:"scamType"`
	TotalMessagesExchanged int                 `json:"totalMessagesExchanged"`
	ExtractedIntelligence  *domain.IntelBundle `json:"extractedIntelligence"`
	RedFlags               []string            `json:"redFlags,omitempty"`
	AgentNotes             string              `json:"agentNotes"`
	StartedAt              time.Time           `json:"startedAt"`
	EndedAt                time.Time           `json:"endedAt"`
}

// Build renders a session into its report.
func Build(sess *domain.Session, endedAt time.Time) Report {
	return Report{
		SessionID:              sess.ID,
		ScamDetected:           scamDetected(sess),
		ScamType:               sess.ScamType,
		TotalMessagesExchanged: sess.MessageCount,
		ExtractedIntelligence:  sess.Intel,
		RedFlags:               collectFlags(sess),
		AgentNotes:             Notes(sess),
		StartedAt:              sess.StartTime,
		EndedAt:                endedAt,
	}
}

func scamDetected(sess *domain.Session) bool {
	for _, rec := range sess.FlagsLog {
		if rec.ScamDetected {
			return true
		}
	}
	return false
}

// collectFlags unions the per-turn flags, preserving first-seen order.
func collectFlags(sess *domain.Session) []string {
	seen := make(map[string]bool)
	var flags []string
	for _, rec := range sess.FlagsLog {
		for _, f := range rec.Flags {
			if !seen[f] {
				seen[f] = true
				flags = append(flags, f)
			}
		}
	}
	return flags
}

// Notes summarizes the scammer's tactics and the harvest in prose.
func Notes(sess *domain.Session) string {
	var notes []string

	var b strings.Builder
	for _, turn := range sess.History {
		if turn.Sender == domain.SenderScammer {
			b.WriteString(strings.ToLower(turn.Text))
			b.WriteByte(' ')
		}
	}
	text := b.String()

	if containsAny(text, "urgent", "immediately", "blocked", "suspended", "expire") {
		notes = append(notes, "Scammer employed urgency tactics to pressure the victim")
	}
	if containsAny(text, "verify", "kyc") {
		notes = append(notes, "Used verification/KYC pretext to appear legitimate")
	}

	intel := sess.Intel
	if n := len(intel.Fields[domain.CategoryLinks]); n > 0 {
		notes = append(notes, fmt.Sprintf("Shared %d phishing link(s)", n))
	}
	if n := len(intel.Fields[domain.CategoryPaymentHandles]); n > 0 {
		notes = append(notes, fmt.Sprintf("Requested payment to %d UPI handle(s)", n))
	}
	if n := len(intel.Fields[domain.CategoryPhones]); n > 0 {
		notes = append(notes, fmt.Sprintf("Provided %d phone number(s) for callback", n))
	}
	if n := len(intel.Fields[domain.CategoryBankAccounts]); n > 0 {
		notes = append(notes, fmt.Sprintf("Mentioned %d bank account number(s)", n))
	}

	if sess.MessageCount < 10 {
		notes = append(notes, "Scammer attempted quick conversion")
	} else {
		notes = append(notes, "Extended conversation to build trust")
	}

	if len(notes) == 0 {
		notes = append(notes, "Suspicious messaging patterns detected with potential scam indicators")
	}
	return strings.Join(notes, ". ") + "."
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
