package txparse

import (
	"encoding/json"
	"strings"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/pkg/types"
)

// TokenType classifies a transfer by token standard.
type TokenType string

const (
	TokenTypeNear   TokenType = "near"   // native coin
	TokenTypeNEP141 TokenType = "nep141" // single fungible token
	TokenTypeNEP245 TokenType = "nep245" // multi token
)

// eventJSONPrefix marks structured event logs per the NEP-297 convention.
const eventJSONPrefix = "EVENT_JSON:"

// Transfer is one normalized value movement observed in a transaction.
// An empty From means the amount was minted; an empty To means it was
// burned. Amount is a nonzero base-unit integer string: zero-amount events
// are dropped during extraction. TokenID may itself embed a "nep141:" or
// "nep245:" wrapped-token prefix, which is kept verbatim here and
// interpreted only by the presentation layer.
type Transfer struct {
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	Amount     types.Balance `json:"amount"`
	TokenType  TokenType     `json:"token_type"`
	ContractID string        `json:"contract_id,omitempty"`
	TokenID    string        `json:"token_id,omitempty"`
}

// effectiveTx is the signer/receiver/action view a transaction's transfers
// are attributed to: the transaction's own fields, or the delegated ones
// when the sole top-level action is a Delegate wrapper.
type effectiveTx struct {
	signerID   string
	receiverID string
	actions    []Action
}

// effectiveView resolves the effective signer, receiver, and action list
// for a transaction, substituting the delegated values for relayed
// transactions.
func effectiveView(tx *nearapi.TransactionDetail) effectiveTx {
	eff := effectiveTx{
		signerID:   tx.Transaction.SignerID,
		receiverID: tx.Transaction.ReceiverID,
		actions:    decodeActions(tx.Transaction.Actions),
	}

	if len(tx.Transaction.Actions) != 1 {
		return eff
	}

	envelope, ok := delegateEnvelope(tx.Transaction.Actions[0])
	if !ok {
		return eff
	}

	sender, ok := asString(envelope["sender_id"])
	if !ok {
		return eff
	}

	eff.signerID = sender
	if receiver, ok := asString(envelope["receiver_id"]); ok {
		eff.receiverID = receiver
	}

	var inner []nearapi.RawAction
	if err := json.Unmarshal(envelope["actions"], &inner); err == nil {
		eff.actions = decodeActions(inner)
	}
	return eff
}

// ExtractTransfers scans a transaction's actions and all of its receipts'
// event logs for value movements, in discovery order: action-derived events
// first, then log-derived events receipt by receipt. Malformed fragments
// are skipped in isolation; extraction never fails.
func ExtractTransfers(tx *nearapi.TransactionDetail) []Transfer {
	eff := effectiveView(tx)

	var out []Transfer
	for _, act := range eff.actions {
		switch act.Type {
		case ActionTransfer:
			if !act.Deposit.IsZero() {
				out = append(out, Transfer{
					From:      eff.signerID,
					To:        eff.receiverID,
					Amount:    act.Deposit,
					TokenType: TokenTypeNear,
				})
			}
		case ActionDeleteAccount:
			if act.BeneficiaryID != "" {
				out = append(out, sweepTransfers(tx, eff.receiverID, act.BeneficiaryID)...)
			}
		}
	}

	for _, r := range tx.Receipts {
		for _, line := range r.ExecutionOutcome.Outcome.Logs {
			out = append(out, logTransfers(line, r.Receipt.ReceiverID)...)
		}
	}
	return out
}

// sweepTransfers captures the residual-balance sweep of a DeleteAccount
// action: the protocol issues a system-originated receipt transferring the
// deleted account's remaining balance to the beneficiary.
func sweepTransfers(tx *nearapi.TransactionDetail, deletedAccount, beneficiary string) []Transfer {
	var out []Transfer
	for _, r := range tx.Receipts {
		if r.Receipt.PredecessorID != nearapi.SystemAccountID || r.Receipt.ReceiverID != beneficiary {
			continue
		}

		for _, act := range receiptActions(r.Receipt) {
			if act.Type != ActionTransfer || act.Deposit.IsZero() {
				continue
			}

			out = append(out, Transfer{
				From:      deletedAccount,
				To:        beneficiary,
				Amount:    act.Deposit,
				TokenType: TokenTypeNear,
			})
		}
	}
	return out
}

// receiptActions decodes the action list nested inside an action receipt's
// {"Action": {"actions": [...]}} payload. Data receipts yield nil.
func receiptActions(rb nearapi.ReceiptBody) []Action {
	var wrapper struct {
		Action struct {
			Actions []nearapi.RawAction `json:"actions"`
		} `json:"Action"`
	}
	if err := json.Unmarshal(rb.Receipt, &wrapper); err != nil {
		return nil
	}
	return decodeActions(wrapper.Action.Actions)
}

// eventEnvelope is the outer shape of an EVENT_JSON log line.
type eventEnvelope struct {
	Standard string          `json:"standard"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

// logTransfers parses one outcome log line into transfer events.
// contractID is the receiver of the receipt that emitted the log, i.e. the
// token contract. Lines without the EVENT_JSON prefix, unparseable JSON,
// and unrecognized standards or events all yield nothing.
func logTransfers(line, contractID string) []Transfer {
	payload, found := strings.CutPrefix(line, eventJSONPrefix)
	if !found {
		return nil
	}

	var ev eventEnvelope
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil
	}

	switch ev.Standard {
	case "nep141":
		return ftTransfers(ev, contractID)
	case "nep245":
		return mtTransfers(ev, contractID)
	}
	return nil
}

// ftTransfers extracts NEP-141 fungible-token events. ft_transfer moves
// between owners, ft_mint has no source, ft_burn has no destination.
func ftTransfers(ev eventEnvelope, contractID string) []Transfer {
	var entries []json.RawMessage
	if err := json.Unmarshal(ev.Data, &entries); err != nil {
		return nil
	}

	var out []Transfer
	for _, raw := range entries {
		var entry struct {
			OldOwnerID string        `json:"old_owner_id"`
			NewOwnerID string        `json:"new_owner_id"`
			OwnerID    string        `json:"owner_id"`
			Amount     types.Balance `json:"amount"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Amount.IsZero() {
			continue
		}

		var from, to string
		switch ev.Event {
		case "ft_transfer":
			from, to = entry.OldOwnerID, entry.NewOwnerID
		case "ft_mint":
			to = entry.OwnerID
		case "ft_burn":
			from = entry.OwnerID
		default:
			continue
		}

		out = append(out, Transfer{
			From:       from,
			To:         to,
			Amount:     entry.Amount,
			TokenType:  TokenTypeNEP141,
			ContractID: contractID,
		})
	}
	return out
}

// mtTransfers extracts NEP-245 multi-token events, which carry parallel
// token_ids/amounts arrays: one transfer per index pair with a nonzero
// amount.
func mtTransfers(ev eventEnvelope, contractID string) []Transfer {
	var entries []json.RawMessage
	if err := json.Unmarshal(ev.Data, &entries); err != nil {
		return nil
	}

	var out []Transfer
	for _, raw := range entries {
		var entry struct {
			OldOwnerID string          `json:"old_owner_id"`
			NewOwnerID string          `json:"new_owner_id"`
			OwnerID    string          `json:"owner_id"`
			TokenIDs   []string        `json:"token_ids"`
			Amounts    []types.Balance `json:"amounts"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}

		var from, to string
		switch ev.Event {
		case "mt_transfer":
			from, to = entry.OldOwnerID, entry.NewOwnerID
		case "mt_mint":
			to = entry.OwnerID
		case "mt_burn":
			from = entry.OwnerID
		default:
			continue
		}

		pairs := min(len(entry.TokenIDs), len(entry.Amounts))
		for i := range pairs {
			if entry.Amounts[i].IsZero() {
				continue
			}

			out = append(out, Transfer{
				From:       from,
				To:         to,
				Amount:     entry.Amounts[i],
				TokenType:  TokenTypeNEP245,
				ContractID: contractID,
				TokenID:    entry.TokenIDs[i],
			})
		}
	}
	return out
}
