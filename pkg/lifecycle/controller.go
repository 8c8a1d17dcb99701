// Package lifecycle drives a transaction from draft through validation,
// signing, submission and outcome verification against a remote ledger
// node. One flow owns one transaction instance; transitions of the same
// flow never run concurrently.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
	"github.com/ledgerwallet/wallet-engine/pkg/event"
	"github.com/ledgerwallet/wallet-engine/pkg/journal"
	"github.com/ledgerwallet/wallet-engine/pkg/keys"
	"github.com/ledgerwallet/wallet-engine/pkg/ledger"
	"github.com/ledgerwallet/wallet-engine/pkg/log"
	"github.com/ledgerwallet/wallet-engine/pkg/tx"
)

// LedgerService is the node surface the controller depends on.
type LedgerService interface {
	Submit(ctx context.Context, blob codec.Hex) (*ledger.SubmitResult, error)
	QueryOutcome(ctx context.Context, hash codec.Hex) (*ledger.Outcome, error)
	AccountInfo(ctx context.Context, address codec.Address) (*ledger.AccountInfo, error)
	TransferRate(ctx context.Context, issuer codec.Address) (amount.TransferRate, error)
}

// ControllerConfig bounds the verification budget and fills defaults for
// drafts that leave fee and expiry unset.
type ControllerConfig struct {
	VerifyAttempts int           `json:"verifyAttempts" yaml:"verifyAttempts"`
	VerifyInterval time.Duration `json:"verifyInterval" yaml:"verifyInterval"`
	BaseFee        uint64        `json:"baseFee,string" yaml:"baseFee"`
}

func (c *ControllerConfig) SetDefault() {
	if c.VerifyAttempts == 0 {
		c.VerifyAttempts = 10
	}
	if c.VerifyInterval == 0 {
		c.VerifyInterval = 2 * time.Second
	}
	if c.BaseFee == 0 {
		c.BaseFee = 12
	}
}

// Controller creates and drives flows. Immutable after Init; flows carry
// all mutable state.
type Controller struct {
	config  *ControllerConfig
	logger  log.Logger
	service LedgerService
	journal *journal.Journal
	events  *event.EventEmitter
}

func NewController(cfg *ControllerConfig) *Controller {
	config := cfg
	if config == nil {
		config = &ControllerConfig{}
	}
	config.SetDefault()
	return &Controller{
		config: config,
		events: event.New(),
	}
}

// Init wires the collaborators. The journal may be nil when persistence is
// not wanted.
func (c *Controller) Init(logger log.Logger, service LedgerService, jrnl *journal.Journal) {
	c.logger = logger
	c.service = service
	c.journal = jrnl
}

// Subscribe returns a channel of lifecycle events for the topic.
func (c *Controller) Subscribe(topic string) <-chan interface{} {
	return c.events.Subscribe(topic)
}

// End closes the event subscriptions.
func (c *Controller) End() {
	c.events.Close()
}

// NewFlow borrows a transaction and pairs it with a signer. The controller
// never owns the transaction; the flow drives it through its states.
func (c *Controller) NewFlow(transaction tx.Transaction, signer keys.Signer) *Flow {
	return &Flow{
		id:          journal.NewFlowID(),
		controller:  c,
		transaction: transaction,
		signer:      signer,
		status:      StatusDraft,
	}
}

// Flow is one in-flight transaction. The mutex is the per-instance guard:
// no two transitions of the same flow run concurrently, while independent
// flows proceed without ordering guarantees between them.
type Flow struct {
	mutex       sync.Mutex
	id          string
	controller  *Controller
	transaction tx.Transaction
	signer      keys.Signer
	status      Status
	blob        codec.Hex
	hash        codec.Hex
	result      *Result
}

func (f *Flow) ID() string                  { return f.id }
func (f *Flow) Transaction() tx.Transaction { return f.transaction }

func (f *Flow) Status() Status {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.status
}

// Hash returns the transaction hash, known once the flow is signed.
func (f *Flow) Hash() codec.Hex {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.hash
}

// Result returns the terminal result, nil while the flow is in flight.
func (f *Flow) Result() *Result {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.result
}

// Validate transitions Draft to Validated. Business rule violations return
// *tx.ValidationError and leave the flow in Draft; no side effect occurs.
func (f *Flow) Validate(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.status != StatusDraft {
		return fmt.Errorf("cannot validate a flow in status %s", f.status)
	}
	if err := f.attachTransferRate(ctx); err != nil {
		return err
	}
	if err := f.transaction.Validate(); err != nil {
		return err
	}
	f.transition(StatusValidated)
	return nil
}

// attachTransferRate looks up the issuer's transfer rate for an issued
// payment so validation can decide on the partial payment flag.
func (f *Flow) attachTransferRate(ctx context.Context) error {
	payment, ok := f.transaction.(*tx.Payment)
	if !ok {
		return nil
	}
	amt, ok := payment.Amount()
	if !ok || amt.Native() || payment.TransferRate() != 0 {
		return nil
	}
	rate, err := f.controller.service.TransferRate(ctx, amt.Issuer())
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return &tx.ValidationError{Field: "Amount", Reason: fmt.Sprintf("issuer %s does not exist on the ledger", amt.Issuer())}
		}
		return err
	}
	payment.SetTransferRate(rate)
	return nil
}

// Sign transitions Validated to Signed. Fee and sequence are filled from
// the ledger when the draft left them unset, then the signing capability
// produces the signature and the transaction hash is recorded.
func (f *Flow) Sign(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.status != StatusValidated {
		return fmt.Errorf("cannot sign a flow in status %s", f.status)
	}
	common := f.transaction.Common()
	if _, ok := common.Fee(); !ok {
		if err := common.SetFee(f.controller.config.BaseFee); err != nil {
			return err
		}
	}
	if _, ok := common.Sequence(); !ok {
		account, _ := common.Account().Get()
		info, err := f.controller.service.AccountInfo(ctx, account)
		if err != nil {
			return fmt.Errorf("cannot determine account sequence: %w", err)
		}
		if err := common.SetSequence(info.Sequence); err != nil {
			return err
		}
	}
	if err := common.SigningPubKey().Set(f.signer.PublicKey().String()); err != nil {
		return err
	}
	payload, err := f.transaction.SigningPayload()
	if err != nil {
		return &keys.SigningError{Err: err}
	}
	signature, err := f.signer.Sign(payload)
	if err != nil {
		signingErr := &keys.SigningError{}
		if errors.As(err, &signingErr) {
			return err
		}
		return &keys.SigningError{Err: err}
	}
	if err := common.TxnSignature().Set(signature.String()); err != nil {
		return err
	}
	blob, err := f.transaction.JSON()
	if err != nil {
		return err
	}
	f.blob = blob
	f.hash = keys.TxHash(blob)
	f.transition(StatusSigned)
	return nil
}

// Submit transitions Signed to Submitted. The journal entry is written
// before the wire call so the hash survives a transport failure. A
// transport failure or a node rejection is terminal: the flow never
// re-signs and never retries on its own, since a retry of an already
// broadcast transaction is only safe when the node explicitly reported the
// attempt as not accepted.
func (f *Flow) Submit(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.status != StatusSigned {
		return fmt.Errorf("cannot submit a flow in status %s", f.status)
	}
	f.record("submit-pending")
	result, err := f.controller.service.Submit(ctx, f.blob)
	if err != nil {
		transportErr := &ledger.TransportError{}
		if errors.As(err, &transportErr) {
			f.controller.logger.Warningf("Submission of flow %s failed in transport, outcome unknown: %v", f.id, err)
			f.terminate(&Result{
				FlowID: f.id,
				Status: StatusFailed,
				Reason: ReasonTransport,
				Hash:   f.hash.String(),
			})
			return err
		}
		return err
	}
	if len(result.Hash) > 0 {
		f.hash = result.Hash
	}
	if !result.Accepted {
		f.controller.logger.Warningf("Node rejected flow %s with %s", f.id, result.EngineResult)
		f.terminate(&Result{
			FlowID:       f.id,
			Status:       StatusFailed,
			Reason:       ReasonRejected,
			EngineResult: result.EngineResult,
			Hash:         f.hash.String(),
		})
		return nil
	}
	f.transition(StatusSubmitted)
	f.record("submitted")
	return nil
}

// Verify polls the ledger for the validated outcome of the submitted hash
// within the bounded budget. Exhausting the budget is terminal
// Failed(verification-timeout), which is explicitly not a ledger rejection:
// the true outcome stays unknown and can be re-queried later with the
// recorded hash.
func (f *Flow) Verify(ctx context.Context) (*Result, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.status != StatusSubmitted {
		return nil, fmt.Errorf("cannot verify a flow in status %s", f.status)
	}
	cfg := f.controller.config
	for attempt := 0; attempt < cfg.VerifyAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(cfg.VerifyInterval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}
		outcome, err := f.controller.service.QueryOutcome(ctx, f.hash)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				f.controller.logger.Debugf("Flow %s not yet on the ledger, attempt %d", f.id, attempt+1)
				continue
			}
			f.controller.logger.Warningf("Outcome query for flow %s failed with %v", f.id, err)
			continue
		}
		if !outcome.Validated {
			continue
		}
		result := &Result{
			FlowID:       f.id,
			Status:       StatusVerified,
			EngineResult: outcome.Result,
			Applied:      outcome.Applied,
			Hash:         f.hash.String(),
		}
		f.terminate(result)
		return result, nil
	}
	result := &Result{
		FlowID: f.id,
		Status: StatusFailed,
		Reason: ReasonVerificationTimeout,
		Hash:   f.hash.String(),
	}
	f.terminate(result)
	return result, nil
}

// Run drives the flow from Draft to a terminal state. Errors before
// submission are returned with the flow still re-usable after correcting
// the input; from submission on, failures surface as the terminal result.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	if err := f.Validate(ctx); err != nil {
		return nil, err
	}
	if err := f.Sign(ctx); err != nil {
		return nil, err
	}
	if err := f.Submit(ctx); err != nil {
		return f.Result(), err
	}
	if result := f.Result(); result != nil {
		return result, nil
	}
	return f.Verify(ctx)
}

// Discard abandons a flow which has not yet signed anything. From Signed
// on, a broadcast cannot be retracted; callers must await the verify
// outcome instead.
func (f *Flow) Discard() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	switch f.status {
	case StatusDraft, StatusValidated:
		f.terminate(&Result{FlowID: f.id, Status: StatusFailed, Reason: ReasonDiscarded})
		return nil
	default:
		return fmt.Errorf("cannot discard a flow in status %s, await its outcome", f.status)
	}
}

// transition must be called with the flow mutex held.
func (f *Flow) transition(to Status) {
	from := f.status
	f.status = to
	f.controller.logger.Debugf("Flow %s transitioned %s -> %s", f.id, from, to)
	f.controller.events.Publish(EventTransition, &EventTransitionMessage{
		FlowID:   f.id,
		TypeName: f.transaction.TypeName(),
		From:     from,
		To:       to,
	})
}

// terminate must be called with the flow mutex held.
func (f *Flow) terminate(result *Result) {
	f.transition(result.Status)
	f.result = result
	f.record(f.statusLabel(result))
	f.controller.events.Publish(EventOutcome, &EventOutcomeMessage{Result: result})
}

func (f *Flow) statusLabel(result *Result) string {
	if result.Reason != "" {
		return result.Reason
	}
	if result.Status == StatusVerified && !result.Applied {
		return "verified-not-applied"
	}
	return result.Status.String()
}

// record persists the flow's journal entry; persistence failures are logged
// and never interrupt a transition.
func (f *Flow) record(status string) {
	if f.controller.journal == nil {
		return
	}
	account, _ := f.transaction.Common().Account().Get()
	entry := &journal.Entry{
		FlowID:   f.id,
		Hash:     f.hash,
		TypeName: f.transaction.TypeName(),
		Account:  account,
		Blob:     f.blob,
		Status:   status,
	}
	if existing, err := f.controller.journal.Get(f.id); err == nil {
		entry.CreatedAt = existing.CreatedAt
	}
	if err := f.controller.journal.Put(entry); err != nil {
		f.controller.logger.Errorf("Fail to journal flow %s with %v", f.id, err)
	}
}
