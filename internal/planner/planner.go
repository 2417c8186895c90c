// Package planner is the deterministic dialogue state machine. It
// decides which state the conversation moves to, which artifact
// category to probe for next, and produces the persona's reply, with
// model generation when available and canned templates otherwise.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

// Generator produces persona reply text. The planner falls back to its
// template pools on any error.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Plan is the planner's decision for one turn.
type Plan struct {
	State        domain.State    `json:"state"`
	Target       domain.Category `json:"target"`
	Reply        string          `json:"reply"`
	Generated    bool            `json:"generated"`
	DelaySeconds int             `json:"typingDelaySeconds"`
}

// Options configure a Planner.
type Options struct {
	HardCeiling          int     // total messages before forced CLOSE
	ConfirmMinCategories int     // filled priority categories that end CONFIRM early
	ReplyTemperature     float64 // sampling temperature for generated replies
	Rand                 *rand.Rand
	Log                  *slog.Logger
}

// Planner is safe for concurrent use.
type Planner struct {
	gen        Generator
	ceiling    int
	confirmMin int
	replyTemp  float64
	log        *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(gen Generator, opts Options) *Planner {
	if opts.HardCeiling <= 0 {
		opts.HardCeiling = 50
	}
	if opts.ConfirmMinCategories <= 0 {
		opts.ConfirmMinCategories = 2
	}
	if opts.ReplyTemperature <= 0 {
		opts.ReplyTemperature = 0.8
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Planner{
		gen:        gen,
		ceiling:    opts.HardCeiling,
		confirmMin: opts.ConfirmMinCategories,
		replyTemp:  opts.ReplyTemperature,
		log:        opts.Log,
		rng:        opts.Rand,
	}
}

var (
	paymentCueRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(upi|account|bank|transfer|send|pay|payment|money|rs|rupees?|₹)\b`),
		regexp.MustCompile(`[a-zA-Z0-9.\-_]+@[a-zA-Z]+`),
		regexp.MustCompile(`\b\d{9,18}\b`),
	}
	linkCueRes = []*regexp.Regexp{
		regexp.MustCompile(`https?://`),
		regexp.MustCompile(`(?i)\b(click|link|website|url|visit|open)\b`),
	}
)

func paymentCue(text string) bool { return anyMatch(text, paymentCueRes) }
func linkCue(text string) bool    { return anyMatch(text, linkCueRes) }

func anyMatch(text string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Next computes the state for the upcoming reply. The hard message
// ceiling is the only path into CLOSE and always wins; below it the
// per-state turn budgets and message cues drive the transitions.
func (p *Planner) Next(sess *domain.Session, scammerText string) domain.State {
	if sess.MessageCount >= p.ceiling {
		return domain.StateClose
	}

	cur := sess.DialogueState
	exceeded := sess.StateTurnCount >= Config(cur).Budget
	hasPayment := paymentCue(scammerText)
	hasLink := linkCue(scammerText)

	switch cur {
	case domain.StateInit:
		if exceeded {
			return domain.StateProbeReason
		}
		return domain.StateInit

	case domain.StateProbeReason:
		// Payment cues outrank link cues.
		if hasPayment {
			return domain.StateProbePayment
		}
		if hasLink {
			return domain.StateProbeLink
		}
		if exceeded {
			return domain.StateStall
		}
		return domain.StateProbeReason

	case domain.StateProbePayment:
		if exceeded && (sess.Intel.Has(domain.CategoryPaymentHandles) || sess.Intel.Has(domain.CategoryBankAccounts)) {
			return domain.StateConfirmDetails
		}
		if hasLink {
			return domain.StateProbeLink
		}
		if exceeded {
			return domain.StateEscalateExtraction
		}
		return domain.StateProbePayment

	case domain.StateProbeLink:
		if exceeded && sess.Intel.Has(domain.CategoryLinks) {
			return domain.StateConfirmDetails
		}
		if hasPayment && !sess.Intel.Has(domain.CategoryPaymentHandles) {
			return domain.StateProbePayment
		}
		if exceeded {
			return domain.StateStall
		}
		return domain.StateProbeLink

	case domain.StateStall:
		if exceeded {
			return domain.StateConfirmDetails
		}
		return domain.StateStall

	case domain.StateConfirmDetails:
		if exceeded || p.confirmSatisfied(sess) {
			return domain.StateEscalateExtraction
		}
		return domain.StateConfirmDetails

	case domain.StateEscalateExtraction:
		// Escalation cycles back toward whatever the bundle already
		// has traction on. It never closes on its own.
		if exceeded {
			switch {
			case sess.Intel.Has(domain.CategoryPaymentHandles) || sess.Intel.Has(domain.CategoryBankAccounts):
				return domain.StateProbePayment
			case sess.Intel.Has(domain.CategoryLinks):
				return domain.StateProbeLink
			default:
				return domain.StateStall
			}
		}
		return domain.StateEscalateExtraction

	case domain.StateClose:
		return domain.StateClose
	}
	return cur
}

// confirmSatisfied reports whether enough of the confirmation state's
// priority categories are filled to move on early.
func (p *Planner) confirmSatisfied(sess *domain.Session) bool {
	filled := 0
	for _, cat := range Config(domain.StateConfirmDetails).Priorities {
		if sess.Intel.Has(cat) {
			filled++
		}
	}
	return filled >= p.confirmMin
}

// TargetCategory picks which artifact the reply should probe for: the
// state's priority category asked about the fewest times so far, with
// priority order breaking ties.
func TargetCategory(state domain.State, asked map[domain.Category]int) domain.Category {
	priorities := Config(state).Priorities
	if len(priorities) == 0 {
		return ""
	}
	best := priorities[0]
	for _, cat := range priorities[1:] {
		if asked[cat] < asked[best] {
			best = cat
		}
	}
	return best
}

// Plan runs the full per-turn decision: next state, probe target, and
// reply text.
func (p *Planner) Plan(ctx context.Context, sess *domain.Session, scammerText string) Plan {
	next := p.Next(sess, scammerText)
	target := TargetCategory(next, sess.AskedFields)

	plan := Plan{State: next, Target: target}
	if p.gen != nil {
		reply, err := p.gen.Generate(ctx, p.buildPrompt(sess, scammerText, next, target), p.replyTemp)
		if err == nil && reply != "" {
			plan.Reply = reply
			plan.Generated = true
		} else if err != nil {
			p.log.Debug("reply generation unavailable, using template",
				"state", string(next), "error", err)
		}
	}
	if plan.Reply == "" {
		plan.Reply = p.templateReply(sess, scammerText, next, target)
	}
	plan.Reply, plan.DelaySeconds = p.humanize(next, plan.Reply)
	return plan
}

// templateReply picks a canned question aimed at the target category,
// rotating through matches so consecutive turns in a state vary.
func (p *Planner) templateReply(sess *domain.Session, scammerText string, state domain.State, target domain.Category) string {
	cfg := Config(state)

	var matching []string
	keywords := templateKeywords[target]
	for _, tmpl := range cfg.Templates {
		lower := strings.ToLower(tmpl)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matching = append(matching, tmpl)
				break
			}
		}
	}

	var tmpl string
	switch {
	case len(matching) > 0:
		tmpl = matching[sess.StateTurnCount%len(matching)]
	case sess.StateTurnCount < len(cfg.Templates):
		tmpl = cfg.Templates[sess.StateTurnCount]
	default:
		p.mu.Lock()
		tmpl = cfg.Templates[p.rng.Intn(len(cfg.Templates))]
		p.mu.Unlock()
	}
	return interpolate(tmpl, scammerText)
}

// interpolate fills the {entity} placeholder from the organization the
// scammer claims to represent.
func interpolate(tmpl, scammerText string) string {
	if !strings.Contains(tmpl, "{entity}") {
		return tmpl
	}
	entity := "the bank"
	lower := strings.ToLower(scammerText)
	switch {
	case strings.Contains(lower, "sbi") || strings.Contains(lower, "state bank"):
		entity = "State Bank"
	case strings.Contains(lower, "hdfc"):
		entity = "HDFC Bank"
	case strings.Contains(lower, "icici"):
		entity = "ICICI Bank"
	case strings.Contains(lower, "rbi") || strings.Contains(lower, "reserve bank"):
		entity = "Reserve Bank"
	case strings.Contains(lower, "government") || strings.Contains(lower, "ministry"):
		entity = "the government"
	case strings.Contains(lower, "police") || strings.Contains(lower, "cyber"):
		entity = "the police"
	}
	return strings.ReplaceAll(tmpl, "{entity}", entity)
}

var categoryAsks = map[domain.Category]string{
	domain.CategoryNames:          "Their full name, officer name, or supervisor name",
	domain.CategoryPhones:         "A phone number (callback number, helpline, department landline)",
	domain.CategoryPaymentHandles: "A UPI ID",
	domain.CategoryBankAccounts:   "A bank account number and IFSC code",
	domain.CategoryBranchCodes:    "The IFSC code or branch details for the account",
	domain.CategoryEmails:         "An email address (official email, confirmation email)",
	domain.CategoryLinks:          "A URL or website link (ask them to share the exact link)",
	domain.CategoryCaseIDs:        "A case ID, reference number, FIR number, or complaint number",
	domain.CategoryPolicyNumbers:  "A policy number or insurance number",
	domain.CategoryOrderNumbers:   "An order number, tracking number, or AWB number",
}

// buildPrompt assembles the generation prompt: persona rules, what is
// already collected, and the single data point to go after next.
func (p *Planner) buildPrompt(sess *domain.Session, scammerText string, state domain.State, target domain.Category) string {
	cfg := Config(state)

	var history []string
	for _, turn := range sess.RecentHistory(6) {
		role := "You"
		if turn.Sender == domain.SenderScammer {
			role = "Scammer"
		}
		history = append(history, fmt.Sprintf("%s: %s", role, turn.Text))
	}
	historyContext := "(first message)"
	if len(history) > 0 {
		historyContext = strings.Join(history, "\n")
	}

	var collected []string
	for _, cat := range domain.Categories {
		if sess.Intel.Has(cat) {
			collected = append(collected, fmt.Sprintf("  - %s: %s",
				cat, strings.Join(sess.Intel.Fields[cat], ", ")))
		}
	}
	collectedBlock := "  (nothing yet)"
	if len(collected) > 0 {
		collectedBlock = strings.Join(collected, "\n")
	}

	scamContext := ""
	if sess.ScamType != "" && sess.ScamType != "unknown" {
		scamContext = fmt.Sprintf("CONTEXT: This appears to be a %s scam. Only ask for details relevant to it.\n\n",
			strings.ReplaceAll(sess.ScamType, "_", " "))
	}

	examples := cfg.Templates
	if len(examples) > 3 {
		examples = examples[:3]
	}

	var b strings.Builder
	b.WriteString("You are role-playing as an ordinary, slightly confused, non-tech-savvy person ")
	b.WriteString("who has received a suspicious call or message. Never reveal that you are anything else. ")
	b.WriteString("Never mention scam, fraud, or police.\n\n")
	b.WriteString(scamContext)
	b.WriteString("YOUR OBJECTIVE: ask a question that makes the caller PROVIDE this data point:\n")
	b.WriteString("  - " + categoryAsks[target] + "\n\n")
	b.WriteString("ALREADY COLLECTED (do NOT ask for these again):\n")
	b.WriteString(collectedBlock + "\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("- Reply in 1-2 short sentences only.\n")
	b.WriteString("- Sound natural, confused, and slightly worried.\n")
	b.WriteString("- Respond directly to what the caller just said.\n")
	b.WriteString("- Always end with a specific question asking for the data point above.\n")
	b.WriteString("- Only reference details explicitly present in the conversation below.\n")
	b.WriteString(fmt.Sprintf("- Your current goal: %s\n\n", cfg.Goal))
	b.WriteString("STYLE EXAMPLES (do not copy verbatim, just match the tone):\n")
	for _, ex := range examples {
		b.WriteString("- " + ex + "\n")
	}
	b.WriteString("\nConversation so far:\n")
	b.WriteString(historyContext + "\n\n")
	b.WriteString(fmt.Sprintf("Caller's latest message:\n%q\n\n", scammerText))
	b.WriteString("Write your reply (1-2 sentences, stay in character):")
	return b.String()
}
