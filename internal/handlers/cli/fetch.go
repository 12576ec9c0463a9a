package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/taxcsv"
	"github.com/gabapcia/walletscope/internal/txsession"
	"github.com/gabapcia/walletscope/internal/txview"
)

// DateLayout is the format of the --from and --to flags.
const DateLayout = "2006-01-02"

var (
	sortKeys   = []string{string(txview.SortDate), string(txview.SortAmount), string(txview.SortFee), string(txview.SortType), string(txview.SortAsset)}
	directions = []string{txview.DirectionAll, string(ledger.DirectionIn), string(ledger.DirectionOut), string(ledger.DirectionSelf), string(ledger.DirectionUnknown)}
)

// fetchCommand returns a CLI command that loads the history of one address,
// filters and sorts it, and prints it as a table or JSON. With --csv it also
// writes the filtered records as a tax CSV.
//
// Usage example:
//
//	walletscope fetch --chain ethereum --address 0xABC... --pages 3 --csv out.csv
func fetchCommand(catalog Catalog) *cli.Command {
	return &cli.Command{
		Name:        "fetch",
		Description: "Fetch the transaction history of an address on one chain.",
		Usage:       "Loads, filters and prints the history of an address. Must provide both chain and address.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "chain", Usage: "Chain id, as listed by the chains command", Required: true},
			&cli.StringFlag{Name: "address", Usage: "Wallet address to read", Required: true},
			&cli.IntFlag{Name: "pages", Usage: "Maximum pages to load, 0 loads every page", Value: 1},
			&cli.StringFlag{Name: "from", Usage: "Earliest day to keep (YYYY-MM-DD, UTC)"},
			&cli.StringFlag{Name: "to", Usage: "Latest day to keep (YYYY-MM-DD, UTC)"},
			&cli.StringFlag{Name: "direction", Usage: "One of " + strings.Join(directions, ", "), Value: txview.DirectionAll},
			&cli.StringFlag{Name: "type", Usage: "Keep only records of this type"},
			&cli.StringFlag{Name: "asset", Usage: "Keep only records of this asset"},
			&cli.StringFlag{Name: "search", Usage: "Substring matched against hash, counterparty, notes and asset"},
			&cli.StringFlag{Name: "sort", Usage: "One of " + strings.Join(sortKeys, ", "), Value: string(txview.SortDate)},
			&cli.StringFlag{Name: "order", Usage: "asc or desc", Value: string(txview.OrderDesc)},
			&cli.StringFlag{Name: "csv", Usage: "Also write the records to this CSV file"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			filters, err := parseFilters(c)
			if err != nil {
				return err
			}

			var (
				chainID = c.String("chain")
				address = c.String("address")
			)

			ctx = logger.Derive(ctx, "chain", chainID, "address", address)

			session := txsession.New(catalog)
			if err := session.FetchAll(ctx, chainID, address, c.Int("pages")); err != nil {
				return err
			}

			view := session.Snapshot()

			records := txview.Sort(txview.Apply(view.Records, filters), txview.SortKey(c.String("sort")), txview.Order(c.String("order")))
			logger.Info(ctx, "history loaded", "loaded", len(view.Records), "shown", len(records), "has_more", view.HasMore)

			if path := c.String("csv"); path != "" {
				if err := writeCSV(path, records); err != nil {
					return err
				}
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.Root().Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			return printRecords(c.Root().Writer, records, view.HasMore)
		},
	}
}

func parseFilters(c *cli.Command) (txview.Filters, error) {
	filters := txview.Filters{
		Direction: c.String("direction"),
		Type:      c.String("type"),
		Asset:     c.String("asset"),
		Search:    c.String("search"),
	}

	if !slices.Contains(directions, filters.Direction) {
		return txview.Filters{}, fmt.Errorf("invalid --direction %q: want one of %s", filters.Direction, strings.Join(directions, ", "))
	}

	if key := c.String("sort"); !slices.Contains(sortKeys, key) {
		return txview.Filters{}, fmt.Errorf("invalid --sort %q: want one of %s", key, strings.Join(sortKeys, ", "))
	}

	if order := c.String("order"); order != string(txview.OrderAsc) && order != string(txview.OrderDesc) {
		return txview.Filters{}, fmt.Errorf("invalid --order %q: want asc or desc", order)
	}

	if raw := c.String("from"); raw != "" {
		from, err := time.Parse(DateLayout, raw)
		if err != nil {
			return txview.Filters{}, fmt.Errorf("invalid --from %q: %w", raw, err)
		}
		filters.From = &from
	}

	if raw := c.String("to"); raw != "" {
		to, err := time.Parse(DateLayout, raw)
		if err != nil {
			return txview.Filters{}, fmt.Errorf("invalid --to %q: %w", raw, err)
		}
		// inclusive of the whole day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filters.To = &to
	}

	return filters, nil
}

func writeCSV(path string, records []ledger.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := taxcsv.Write(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

func printRecords(out io.Writer, records []ledger.Transaction, hasMore bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tDIR\tAMOUNT\tASSET\tFEE\tSTATUS\tHASH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.UTC().Format(time.DateTime), r.Type, r.Direction, r.Amount, r.Asset, r.Fee, r.Status, r.Hash)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if hasMore {
		_, err := fmt.Fprintln(out, "more records available, raise --pages to load them")
		return err
	}

	return nil
}
