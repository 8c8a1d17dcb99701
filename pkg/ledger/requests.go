package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
)

// SubmitResult is the node's provisional answer to a submission. Accepted
// means the node queued the transaction for consensus; it is not a final
// outcome.
type SubmitResult struct {
	Accepted            bool      `json:"accepted"`
	EngineResult        string    `json:"engineResult"`
	EngineResultMessage string    `json:"engineResultMessage"`
	Hash                codec.Hex `json:"hash"`
}

// Outcome is the validated result of a transaction. Applied reports the
// business level result: a transaction can be validated into the ledger and
// still have failed to apply.
type Outcome struct {
	Validated bool   `json:"validated"`
	Applied   bool   `json:"applied"`
	Result    string `json:"result"`
}

// AccountInfo is the subset of account state the wallet core needs.
type AccountInfo struct {
	Address      codec.Address       `json:"address"`
	Sequence     uint64              `json:"sequence"`
	Balance      codec.UInt64Str     `json:"balance"`
	TransferRate amount.TransferRate `json:"transferRate"`
}

type submitResponse struct {
	Accepted            *bool  `json:"accepted"`
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

// Submit sends a signed serialized transaction blob to the node. A returned
// *TransportError means acceptance was never confirmed and the transaction
// may or may not have reached the node.
func (c *Client) Submit(ctx context.Context, blob codec.Hex) (*SubmitResult, error) {
	raw, err := c.call(ctx, "submit", wsRequest{"tx_blob": blob.String()})
	if err != nil {
		return nil, err
	}
	parsed := submitResponse{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &TransportError{Op: "submit", Err: fmt.Errorf("malformed submit response: %w", err)}
	}
	result := &SubmitResult{
		EngineResult:        parsed.EngineResult,
		EngineResultMessage: parsed.EngineResultMessage,
	}
	if parsed.TxJSON.Hash != "" {
		hash, err := codec.ParseHex(parsed.TxJSON.Hash)
		if err != nil {
			return nil, &TransportError{Op: "submit", Err: fmt.Errorf("malformed hash in submit response: %w", err)}
		}
		result.Hash = hash
	}
	if parsed.Accepted != nil {
		result.Accepted = *parsed.Accepted
	} else {
		// Older nodes omit the accepted field; a provisional success or a
		// queued result both mean the attempt entered consensus.
		result.Accepted = strings.HasPrefix(parsed.EngineResult, "tes") || parsed.EngineResult == "terQUEUED"
	}
	return result, nil
}

type txResponse struct {
	Validated bool `json:"validated"`
	Meta      struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
}

// QueryOutcome asks for the validated outcome of a transaction hash.
// ErrNotFound is returned while the ledger has no record of it.
func (c *Client) QueryOutcome(ctx context.Context, hash codec.Hex) (*Outcome, error) {
	raw, err := c.call(ctx, "tx", wsRequest{"transaction": hash.String()})
	if err != nil {
		nodeErr := &nodeError{}
		if errors.As(err, &nodeErr) && nodeErr.Code == "txnNotFound" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	parsed := txResponse{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &TransportError{Op: "tx", Err: fmt.Errorf("malformed tx response: %w", err)}
	}
	return &Outcome{
		Validated: parsed.Validated,
		Applied:   parsed.Meta.TransactionResult == "tesSUCCESS",
		Result:    parsed.Meta.TransactionResult,
	}, nil
}

// Balance comes back as a string of drops; TransferRate is numeric on
// current nodes but string-encoded on some older ones, so both parse
// through the tolerant codec types.
type accountInfoResponse struct {
	AccountData struct {
		Account      string          `json:"Account"`
		Sequence     uint64          `json:"Sequence"`
		Balance      codec.UInt64Str `json:"Balance"`
		TransferRate codec.UInt32Str `json:"TransferRate"`
	} `json:"account_data"`
}

// AccountInfo fetches the current on-ledger state of an account.
func (c *Client) AccountInfo(ctx context.Context, address codec.Address) (*AccountInfo, error) {
	raw, err := c.call(ctx, "account_info", wsRequest{"account": address.String()})
	if err != nil {
		nodeErr := &nodeError{}
		if errors.As(err, &nodeErr) && nodeErr.Code == "actNotFound" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	parsed := accountInfoResponse{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &TransportError{Op: "account_info", Err: fmt.Errorf("malformed account_info response: %w", err)}
	}
	return &AccountInfo{
		Address:      codec.Address(parsed.AccountData.Account),
		Sequence:     parsed.AccountData.Sequence,
		Balance:      parsed.AccountData.Balance,
		TransferRate: amount.TransferRate(parsed.AccountData.TransferRate),
	}, nil
}
