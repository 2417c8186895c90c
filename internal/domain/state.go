package domain

// State is a dialogue policy state. Transitions happen at most once per
// processed message and are driven by per-state turn budgets and message cues.
type State string

const (
	StateInit               State = "INIT"
	StateProbeReason        State = "PROBE_REASON"
	StateProbePayment       State = "PROBE_PAYMENT"
	StateProbeLink          State = "PROBE_LINK"
	StateStall              State = "STALL"
	StateConfirmDetails     State = "CONFIRM_DETAILS"
	StateEscalateExtraction State = "ESCALATE_EXTRACTION"
	StateClose              State = "CLOSE"
)

// States lists every dialogue state in progression order.
var States = []State{
	StateInit,
	StateProbeReason,
	StateProbePayment,
	StateProbeLink,
	StateStall,
	StateConfirmDetails,
	StateEscalateExtraction,
	StateClose,
}
