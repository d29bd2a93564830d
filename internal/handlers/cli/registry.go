package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nearlens/nearlens/internal/nearapi"
	"github.com/nearlens/nearlens/internal/paging"

	"github.com/urfave/cli/v3"
)

// transactionCommand returns a CLI command that resolves one or more
// transaction hashes into their normalized form.
//
// Usage example:
//
//	nearlens tx --hash 8x5Qk... --hash 3mPf2...
func transactionCommand(svc Services) *cli.Command {
	return &cli.Command{
		Name:        "tx",
		Description: "Look up transactions by hash and print signer, receiver, status, gas, actions, and transfers.",
		Usage:       "Resolves the given hashes through the indexing API. Duplicate hashes are fetched once.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "hash",
				Usage:    "Transaction hash to resolve (repeatable)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			hashes := c.StringSlice("hash")

			txs, err := svc.Transactions.Fetch(ctx, hashes)
			if err != nil {
				return err
			}

			for _, hash := range hashes {
				tx, ok := txs[hash]
				if !ok {
					fmt.Fprintf(os.Stdout, "%s: not found\n", hash)
					continue
				}
				printTransaction(ctx, os.Stdout, tx, svc.TokenMeta)
			}
			return nil
		},
	}
}

// accountCommand returns a CLI command that walks an account's transaction
// activity page by page, prefetching ahead of the reader.
//
// Usage example:
//
//	nearlens account --account-id alice.near --pages 3
func accountCommand(svc Services) *cli.Command {
	return &cli.Command{
		Name:        "account",
		Description: "List an account's transaction activity, newest first.",
		Usage:       "Walks the paginated activity listing. Details for upcoming pages are prefetched in the background.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account-id",
				Usage:    "Account whose activity to list (e.g. alice.near)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "How many pages to print",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				accountID = c.String("account-id")
				pages     = c.Int("pages")
			)

			cache := paging.NewPagedCache(
				svc.API.AccountActivityFetcher(accountID),
				paging.WithPageSize(svc.PageSize),
				paging.WithBatchPages(svc.BatchPages),
			)
			if err := cache.Reset(ctx); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s: %d transactions\n", accountID, cache.TotalCount())
			for {
				printActivityPage(os.Stdout, cache.CurrentPage(), cache.Items())
				warmDetailCache(ctx, svc, cache.AheadItems())

				if cache.CurrentPage() >= pages-1 {
					return nil
				}
				if err := cache.GoNext(ctx); err != nil {
					if errors.Is(err, paging.ErrNoNextPage) {
						return nil
					}
					return err
				}
			}
		},
	}
}

// blocksCommand returns a CLI command that streams recent block headers
// through the infinite feed.
//
// Usage example:
//
//	nearlens blocks --limit 50
func blocksCommand(svc Services) *cli.Command {
	return &cli.Command{
		Name:        "blocks",
		Description: "List the most recent blocks, newest first.",
		Usage:       "Accumulates block headers until the requested count is reached.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "How many blocks to print",
				Value: 25,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			limit := c.Int("limit")

			feed := paging.NewInfiniteFeed(
				svc.API.BlocksFetcher(),
				paging.WithBatchSize(svc.PageSize*svc.BatchPages),
			)
			if err := feed.Reset(ctx); err != nil {
				return err
			}

			for len(feed.Items()) < limit && feed.HasMore() {
				if err := feed.LoadMore(ctx); err != nil {
					if errors.Is(err, paging.ErrNoMoreItems) {
						break
					}
					return err
				}
			}

			printBlocks(os.Stdout, feed.Items(), limit)
			return nil
		},
	}
}

// warmDetailCache prefetches transaction details for upcoming activity
// rows so the next page renders without waiting on lookups.
func warmDetailCache(ctx context.Context, svc Services, ahead []nearapi.AccountTx) {
	if len(ahead) == 0 {
		return
	}

	hashes := make([]string, 0, len(ahead))
	for _, row := range ahead {
		hashes = append(hashes, row.TransactionHash)
	}
	svc.Transactions.Prefetch(ctx, hashes)
}
