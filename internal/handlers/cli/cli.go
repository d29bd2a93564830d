// Package cli wires the explorer's services into a command-line interface
// with commands for inspecting transactions, account activity, and recent
// blocks.
package cli

import (
	"context"
	"os"

	"github.com/nearlens/nearlens/internal/infra/fastnear"
	"github.com/nearlens/nearlens/internal/tokenmeta"
	"github.com/nearlens/nearlens/internal/txlookup"

	"github.com/urfave/cli/v3"
)

// Services bundles everything the commands depend on.
type Services struct {
	API          *fastnear.Client
	Transactions *txlookup.Service
	TokenMeta    *tokenmeta.Service

	PageSize   int
	BatchPages int
}

// Run initializes and executes the nearlens CLI application.
//
// It registers all available commands, including:
//
//   - `tx`: Looks up transactions by hash and prints their normalized form.
//   - `account`: Walks an account's paginated transaction activity.
//   - `blocks`: Streams recent block headers.
func Run(ctx context.Context, svc Services) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "nearlens",
		Description:           "Command-line explorer for NEAR transactions, accounts, and blocks.",
		Usage:                 "nearlens [command] [flags]",
		Commands: []*cli.Command{
			transactionCommand(svc),
			accountCommand(svc),
			blocksCommand(svc),
		},
	}

	return app.Run(ctx, os.Args)
}
