package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

// listChainsCommand returns a CLI command that prints every registered chain.
//
// Usage example:
//
//	walletscope chains
func listChainsCommand(catalog Catalog) *cli.Command {
	return &cli.Command{
		Name:        "chains",
		Description: "List every chain walletscope can read, with its family and native asset.",
		Usage:       "Lists the supported chains.",
		Action: func(_ context.Context, c *cli.Command) error {
			w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSYMBOL\tFAMILY")
			for _, chain := range catalog.Chains() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", chain.ID, chain.Name, chain.Symbol, chain.Family)
			}

			return w.Flush()
		},
	}
}
