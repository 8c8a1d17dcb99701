package lifecycle

// Status is the lifecycle position of one transaction flow.
type Status int

const (
	StatusDraft Status = iota
	StatusValidated
	StatusSigned
	StatusSubmitted
	// StatusVerified means the ledger reported a final validated outcome,
	// which may still be a business level failure.
	StatusVerified
	// StatusFailed means no validated outcome was determined: the node
	// rejected the submission, transport failed, or the polling budget ran
	// out. With a recorded hash the true outcome can be re-queried later.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusValidated:
		return "validated"
	case StatusSigned:
		return "signed"
	case StatusSubmitted:
		return "submitted"
	case StatusVerified:
		return "verified"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reasons for StatusFailed.
const (
	// ReasonVerificationTimeout means the polling budget ran out with no
	// validated outcome. This is not a ledger rejection; the transaction's
	// true outcome is unknown.
	ReasonVerificationTimeout = "verification-timeout"
	// ReasonRejected means the node refused to queue the submission.
	ReasonRejected = "rejected-by-node"
	// ReasonTransport means the submission call failed before acceptance
	// was confirmed. The transaction may or may not have reached the node.
	ReasonTransport = "transport-failure"
	// ReasonDiscarded means the caller abandoned the flow before any
	// external side effect.
	ReasonDiscarded = "discarded"
)

// Result is the terminal outcome of a flow. Callers branch on Status and
// Applied, never on "submitted": submission acceptance is not success.
type Result struct {
	FlowID       string `json:"flowID"`
	Status       Status `json:"status"`
	Reason       string `json:"reason,omitempty"`
	EngineResult string `json:"engineResult,omitempty"`
	// Applied is only meaningful for StatusVerified: whether the validated
	// transaction achieved its business effect.
	Applied bool   `json:"applied"`
	Hash    string `json:"hash,omitempty"`
}
