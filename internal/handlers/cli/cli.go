package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletscope/internal/chainregistry"
	"github.com/gabapcia/walletscope/internal/ledger"
)

// Catalog lists the supported chains and resolves their adapters.
type Catalog interface {
	Chains() []chainregistry.ChainInfo
	Lookup(chainID string) (ledger.Adapter, error)
}

// RelayFactory builds the relay HTTP handler on demand, so commands that do
// not serve the relay never open its cache. The returned func releases
// whatever the handler holds.
type RelayFactory func(ctx context.Context) (http.Handler, func() error, error)

// Run initializes and executes the walletscope CLI application.
//
// It registers all available commands:
//
//   - `chains`: Lists the supported chains.
//   - `fetch`: Loads the history of one address and prints or exports it.
//   - `relay`: Serves the CORS relay.
func Run(ctx context.Context, catalog Catalog, relay RelayFactory) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletscope",
		Description:           "Read-only multi-chain wallet transaction viewer.",
		Usage:                 "walletscope [command] [flags]",
		Commands: []*cli.Command{
			listChainsCommand(catalog),
			fetchCommand(catalog),
			relayCommand(relay),
		},
	}

	return app.Run(ctx, os.Args)
}
