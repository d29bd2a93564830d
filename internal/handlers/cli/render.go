package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/pkg/format"
	"github.com/nearlens/nearlens/internal/pkg/types"
	"github.com/nearlens/nearlens/internal/tokenmeta"
	"github.com/nearlens/nearlens/internal/txparse"
)

func printTransaction(ctx context.Context, w io.Writer, tx txparse.Transaction, meta *tokenmeta.Service) {
	fmt.Fprintf(w, "%s\n", tx.Hash)
	if tx.RelayerID != "" {
		fmt.Fprintf(w, "  %s -> %s (relayed by %s)\n", tx.SignerID, tx.ReceiverID, tx.RelayerID)
	} else {
		fmt.Fprintf(w, "  %s -> %s\n", tx.SignerID, tx.ReceiverID)
	}

	when := time.Unix(0, tx.TimestampNanos).UTC().Format(time.RFC3339)
	fmt.Fprintf(w, "  %s at block %d, %s\n", statusLabel(tx.IsSuccess), tx.BlockHeight, when)
	fmt.Fprintf(w, "  gas burnt: %s\n", format.Gas(tx.GasBurnt))

	for _, act := range tx.Actions {
		fmt.Fprintf(w, "  action: %s\n", actionLabel(act))
	}
	for _, transfer := range tx.Transfers {
		fmt.Fprintf(w, "  transfer: %s\n", transferLabel(ctx, transfer, meta))
	}
}

func printActivityPage(w io.Writer, page int, rows []nearapi.AccountTx) {
	fmt.Fprintf(w, "--- page %d ---\n", page+1)
	for _, row := range rows {
		outcome := "failed"
		if row.IsSuccess {
			outcome = "ok"
		}
		fmt.Fprintf(w, "%s  block %d  %s\n", row.TransactionHash, row.TxBlockHeight, outcome)
	}
}

func printBlocks(w io.Writer, blocks []nearapi.BlockHeader, limit int) {
	for i, block := range blocks {
		if i >= limit {
			return
		}
		fmt.Fprintf(w, "%d  %s  by %s  %d txs\n",
			block.BlockHeight, block.BlockHash, block.AuthorID, block.NumTransactions)
	}
}

func statusLabel(success *bool) string {
	switch {
	case success == nil:
		return "pending"
	case *success:
		return "succeeded"
	default:
		return "failed"
	}
}

func actionLabel(act txparse.Action) string {
	switch act.Type {
	case txparse.ActionFunctionCall:
		label := fmt.Sprintf("%s: call %s", act.Type, act.MethodName)
		if !act.Deposit.IsZero() {
			label += ", deposit " + format.Near(act.Deposit)
		}
		return label
	case txparse.ActionTransfer:
		return fmt.Sprintf("%s: %s", act.Type, format.Near(act.Deposit))
	case txparse.ActionDeleteAccount:
		return fmt.Sprintf("%s: beneficiary %s", act.Type, act.BeneficiaryID)
	default:
		return act.Type
	}
}

// transferLabel renders one transfer, resolving token metadata for display
// and gracefully falling back to raw base units when it cannot be had.
func transferLabel(ctx context.Context, transfer txparse.Transfer, meta *tokenmeta.Service) string {
	from, to := transfer.From, transfer.To
	if from == "" {
		from = "(minted)"
	}
	if to == "" {
		to = "(burned)"
	}

	return fmt.Sprintf("%s -> %s: %s", from, to, transferAmount(ctx, transfer, meta))
}

func transferAmount(ctx context.Context, transfer txparse.Transfer, meta *tokenmeta.Service) string {
	switch transfer.TokenType {
	case txparse.TokenTypeNear:
		return format.Near(transfer.Amount)

	case txparse.TokenTypeNEP141:
		return tokenAmount(ctx, transfer.Amount, transfer.ContractID, meta)

	case txparse.TokenTypeNEP245:
		ref := format.ParseTokenRef(transfer.TokenID)
		if ref.Standard == "nep141" {
			return tokenAmount(ctx, transfer.Amount, ref.ID, meta)
		}
		return fmt.Sprintf("%s of %s on %s", transfer.Amount, ref, transfer.ContractID)

	default:
		return string(transfer.Amount)
	}
}

func tokenAmount(ctx context.Context, amount types.Balance, contractID string, meta *tokenmeta.Service) string {
	md, err := meta.Get(ctx, contractID)
	if err != nil {
		return fmt.Sprintf("%s (raw, %s)", amount, contractID)
	}
	return fmt.Sprintf("%s %s", format.TokenAmount(amount, md.Decimals), md.Symbol)
}
