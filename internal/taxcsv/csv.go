// Package taxcsv serializes ledger records into the CSV dialect tax software
// ingests.
package taxcsv

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/units"
)

// DateLayout renders timestamps as MM/DD/YYYY HH:MM:SS in UTC.
const DateLayout = "01/02/2006 15:04:05"

// IDLength is how many leading characters of the hash form the ID column.
const IDLength = 16

// Header is the fixed column list.
var Header = []string{"Date", "Asset", "Amount", "Fee", "P&L", "Payment Token", "ID", "Notes", "Tag", "Transaction Hash"}

// Row returns the cells of one record.
func Row(r ledger.Transaction) []string {
	pnl := r.PnL
	if pnl == "" {
		pnl = units.Zero
	}

	paymentToken := r.PaymentToken
	if paymentToken == "" {
		paymentToken = r.Asset
	}

	notes := r.Notes
	if notes == "" {
		notes = r.Type + " - " + string(r.Direction)
	}

	id := r.Hash
	if len(id) > IDLength {
		id = id[:IDLength]
	}

	return []string{
		r.Timestamp.UTC().Format(DateLayout),
		r.Asset,
		r.Amount,
		r.Fee,
		pnl,
		paymentToken,
		id,
		notes,
		string(r.Tag),
		r.Hash,
	}
}

// Write writes the header and one line per record, each terminated by "\n".
func Write(w io.Writer, records []ledger.Transaction) error {
	bw := bufio.NewWriter(w)

	if err := writeLine(bw, Header); err != nil {
		return err
	}

	for _, r := range records {
		if err := writeLine(bw, Row(r)); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Marshal returns the CSV document for records.
func Marshal(records []ledger.Transaction) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, records)

	return buf.Bytes()
}

func writeLine(w *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}

		if _, err := w.WriteString(Escape(cell)); err != nil {
			return err
		}
	}

	return w.WriteByte('\n')
}

// Escape quotes a cell containing a comma, a double quote, a CR or an LF,
// doubling inner quotes. Other cells are returned as is.
func Escape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\r\n") {
		return cell
	}

	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
