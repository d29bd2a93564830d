package txparse

import (
	"encoding/json"

	"github.com/nearlens/nearlens/internal/nearapi"
)

// Transaction is the normalized, denormalization-friendly view of one
// transaction. GasBurnt is the total across the transaction outcome and
// every receipt outcome. IsSuccess is nil while the final status is still
// unknown (e.g. a pending relay). When RelayerID is set, SignerID,
// ReceiverID, and Actions reflect the inner delegated action and RelayerID
// holds the account that signed the outer relay transaction.
type Transaction struct {
	Hash           string     `json:"hash"`
	SignerID       string     `json:"signer_id"`
	ReceiverID     string     `json:"receiver_id"`
	BlockHeight    int64      `json:"block_height"`
	TimestampNanos int64      `json:"block_timestamp"`
	GasBurnt       int64      `json:"gas_burnt"`
	IsSuccess      *bool      `json:"is_success"`
	Actions        []Action   `json:"actions"`
	RelayerID      string     `json:"relayer_id,omitempty"`
	Transfers      []Transfer `json:"transfers,omitempty"`
}

// Normalize converts a raw transaction detail into its normalized form:
// decoded actions, rolled-up gas, derived success status, extracted
// transfers, and a single level of Delegate unwrapping.
func Normalize(tx *nearapi.TransactionDetail) Transaction {
	normalized := Transaction{
		Hash:           tx.Transaction.Hash,
		SignerID:       tx.Transaction.SignerID,
		ReceiverID:     tx.Transaction.ReceiverID,
		BlockHeight:    tx.ExecutionOutcome.BlockHeight,
		TimestampNanos: tx.ExecutionOutcome.BlockTimestamp,
		GasBurnt:       totalGas(tx),
		IsSuccess:      statusSuccess(tx.ExecutionOutcome.Outcome.Status),
		Actions:        decodeActions(tx.Transaction.Actions),
		Transfers:      ExtractTransfers(tx),
	}

	unwrapDelegate(tx, &normalized)
	return normalized
}

// totalGas sums the gas burnt by the transaction outcome and every receipt
// outcome, giving the total cost of the transaction rather than any single
// wire value.
func totalGas(tx *nearapi.TransactionDetail) int64 {
	total := tx.ExecutionOutcome.Outcome.GasBurnt
	for _, r := range tx.Receipts {
		total += r.ExecutionOutcome.Outcome.GasBurnt
	}
	return total
}

// statusSuccess maps the single-key status object to a tri-state outcome:
// true for SuccessValue/SuccessReceiptId, false for Failure, nil when the
// status is absent or unknown.
func statusSuccess(status map[string]json.RawMessage) *bool {
	boolPtr := func(b bool) *bool { return &b }

	if _, ok := status["SuccessValue"]; ok {
		return boolPtr(true)
	}
	if _, ok := status["SuccessReceiptId"]; ok {
		return boolPtr(true)
	}
	if _, ok := status["Failure"]; ok {
		return boolPtr(false)
	}
	return nil
}

// unwrapDelegate rewrites the normalized record when the transaction's sole
// action is a Delegate wrapper: the outer signer becomes the relayer and
// the delegated sender, receiver, and actions take its place. Only one
// level is unwrapped.
func unwrapDelegate(tx *nearapi.TransactionDetail, normalized *Transaction) {
	if len(tx.Transaction.Actions) != 1 {
		return
	}

	envelope, ok := delegateEnvelope(tx.Transaction.Actions[0])
	if !ok {
		return
	}

	sender, ok := asString(envelope["sender_id"])
	if !ok {
		return
	}

	normalized.RelayerID = tx.Transaction.SignerID
	normalized.SignerID = sender
	if receiver, ok := asString(envelope["receiver_id"]); ok {
		normalized.ReceiverID = receiver
	}

	var inner []nearapi.RawAction
	if err := json.Unmarshal(envelope["actions"], &inner); err == nil {
		normalized.Actions = decodeActions(inner)
	}
}
