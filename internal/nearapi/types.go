// Package nearapi defines the wire contract of the upstream indexing API.
// These types mirror the JSON payloads returned by the /v0 endpoints and
// carry no behavior: loosely-typed fragments (actions, statuses, nested
// receipts) are kept as raw JSON so the decoding layer can normalize them
// without the transport layer taking a position on their shape.
package nearapi

import (
	"encoding/json"

	"github.com/nearlens/nearlens/internal/pkg/types"
)

// SystemAccountID is the implicit account the protocol uses as predecessor
// for system-generated receipts, such as residual-balance refunds.
const SystemAccountID = "system"

// BlockHeader is one entry of a /v0/blocks response.
type BlockHeader struct {
	BlockHeight     int64         `json:"block_height"`
	BlockHash       string        `json:"block_hash"`
	PrevBlockHash   string        `json:"prev_block_hash"`
	PrevBlockHeight int64         `json:"prev_block_height"`
	BlockTimestamp  string        `json:"block_timestamp"`
	BlockOrdinal    int64         `json:"block_ordinal"`
	GasPrice        types.Balance `json:"gas_price"`
	GasBurnt        types.Balance `json:"gas_burnt"`
	TotalSupply     types.Balance `json:"total_supply"`
	AuthorID        string        `json:"author_id"`
	NumTransactions int           `json:"num_transactions"`
	NumReceipts     int           `json:"num_receipts"`
	ChunksIncluded  int           `json:"chunks_included"`
	EpochID         string        `json:"epoch_id"`
	NextEpochID     string        `json:"next_epoch_id"`
	ProtocolVersion int           `json:"protocol_version"`
	TokensBurnt     types.Balance `json:"tokens_burnt"`
}

// BlocksResponse is the /v0/blocks payload.
type BlocksResponse struct {
	Blocks []BlockHeader `json:"blocks"`
}

// BlockTx is a denormalized transaction row inside a /v0/block response.
type BlockTx struct {
	TransactionHash  string        `json:"transaction_hash"`
	SignerID         string        `json:"signer_id"`
	ReceiverID       string        `json:"receiver_id"`
	RealSignerID     string        `json:"real_signer_id"`
	RealReceiverID   string        `json:"real_receiver_id"`
	TxBlockHeight    int64         `json:"tx_block_height"`
	TxBlockTimestamp string        `json:"tx_block_timestamp"`
	TxIndex          int           `json:"tx_index"`
	GasBurnt         int64         `json:"gas_burnt"`
	IsSuccess        bool          `json:"is_success"`
	IsCompleted      bool          `json:"is_completed"`
	IsRelayed        bool          `json:"is_relayed"`
	TokensBurnt      types.Balance `json:"tokens_burnt"`
	ShardID          int           `json:"shard_id"`
	Nonce            uint64        `json:"nonce"`
	SignerPublicKey  string        `json:"signer_public_key"`
	TxBlockHash      string        `json:"tx_block_hash"`
}

// BlockDetailResponse is the /v0/block payload.
type BlockDetailResponse struct {
	Block    BlockHeader `json:"block"`
	BlockTxs []BlockTx   `json:"block_txs"`
}

// RawAction is one action of a transaction or receipt, left undecoded.
// The upstream serializes actions inconsistently: a bare string tag for
// zero-field actions, a single-key tagged object otherwise, and a flat
// object with a "type" field inside delegated envelopes.
type RawAction = json.RawMessage

// TransactionBody is the signed transaction inside a TransactionDetail.
type TransactionBody struct {
	SignerID   string      `json:"signer_id"`
	ReceiverID string      `json:"receiver_id"`
	Hash       string      `json:"hash"`
	Nonce      uint64      `json:"nonce"`
	PublicKey  string      `json:"public_key"`
	Actions    []RawAction `json:"actions"`
}

// ExecutionOutcome is the result of executing a transaction or receipt.
// Status is a single-key object whose key names the variant (SuccessValue,
// SuccessReceiptId, Failure, Unknown).
type ExecutionOutcome struct {
	ExecutorID  string                     `json:"executor_id"`
	GasBurnt    int64                      `json:"gas_burnt"`
	Logs        []string                   `json:"logs"`
	ReceiptIDs  []string                   `json:"receipt_ids"`
	Status      map[string]json.RawMessage `json:"status"`
	TokensBurnt types.Balance              `json:"tokens_burnt"`
}

// OutcomeWithBlock ties an ExecutionOutcome to the block it landed in.
type OutcomeWithBlock struct {
	BlockHash      string           `json:"block_hash"`
	BlockHeight    int64            `json:"block_height"`
	BlockTimestamp int64            `json:"block_timestamp"`
	ID             string           `json:"id"`
	Outcome        ExecutionOutcome `json:"outcome"`
}

// ReceiptBody is the receipt half of a ReceiptWithOutcome. The nested
// Receipt payload is either {"Action": {...}} or {"Data": {...}}; it stays
// raw until the decoding layer needs the action list.
type ReceiptBody struct {
	BlockHash      string          `json:"block_hash"`
	BlockHeight    int64           `json:"block_height"`
	BlockTimestamp int64           `json:"block_timestamp"`
	PredecessorID  string          `json:"predecessor_id"`
	ReceiverID     string          `json:"receiver_id"`
	ReceiptID      string          `json:"receipt_id"`
	Receipt        json.RawMessage `json:"receipt"`
}

// ReceiptWithOutcome pairs a receipt with its execution outcome.
type ReceiptWithOutcome struct {
	Receipt          ReceiptBody      `json:"receipt"`
	ExecutionOutcome OutcomeWithBlock `json:"execution_outcome"`
}

// TransactionDetail is the deeply nested transaction record returned by
// /v0/transactions: the signed transaction, its own execution outcome, and
// every receipt it fanned out into.
type TransactionDetail struct {
	Transaction      TransactionBody      `json:"transaction"`
	ExecutionOutcome OutcomeWithBlock     `json:"execution_outcome"`
	Receipts         []ReceiptWithOutcome `json:"receipts"`
	DataReceipts     []json.RawMessage    `json:"data_receipts"`
}

// TransactionsResponse is the /v0/transactions payload.
type TransactionsResponse struct {
	Transactions []TransactionDetail `json:"transactions"`
}

// AccountTx is one row of an account's activity listing, annotated with the
// roles the account played in the transaction.
type AccountTx struct {
	AccountID         string `json:"account_id"`
	TransactionHash   string `json:"transaction_hash"`
	TxBlockHeight     int64  `json:"tx_block_height"`
	TxBlockTimestamp  string `json:"tx_block_timestamp"`
	TxIndex           int    `json:"tx_index"`
	IsSuccess         bool   `json:"is_success"`
	IsSigner          bool   `json:"is_signer"`
	IsReceiver        bool   `json:"is_receiver"`
	IsRealSigner      bool   `json:"is_real_signer"`
	IsRealReceiver    bool   `json:"is_real_receiver"`
	IsPredecessor     bool   `json:"is_predecessor"`
	IsFunctionCall    bool   `json:"is_function_call"`
	IsAnySigner       bool   `json:"is_any_signer"`
	IsDelegatedSigner bool   `json:"is_delegated_signer"`
	IsEventLog        bool   `json:"is_event_log"`
	IsActionArg       bool   `json:"is_action_arg"`
}

// AccountResponse is the /v0/account payload; ResumeToken is the opaque
// cursor for the next page and is absent on the last page.
type AccountResponse struct {
	AccountTxs  []AccountTx `json:"account_txs"`
	ResumeToken string      `json:"resume_token,omitempty"`
	TxsCount    int         `json:"txs_count"`
}
