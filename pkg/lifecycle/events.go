package lifecycle

// Event topics published by the controller.
const (
	EventTransition = "lifecycle:transition"
	EventOutcome    = "lifecycle:outcome"
)

// EventTransitionMessage announces one completed state transition.
type EventTransitionMessage struct {
	FlowID   string `json:"flowID"`
	TypeName string `json:"typeName"`
	From     Status `json:"from"`
	To       Status `json:"to"`
}

// EventOutcomeMessage announces a terminal result.
type EventOutcomeMessage struct {
	Result *Result `json:"result"`
}
