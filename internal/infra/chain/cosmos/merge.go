package cosmos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/types"
)

// cursor holds the offset of each tx-search stream. It is serialized as
// "senderOffset,recipientOffset".
type cursor struct {
	sender    int
	recipient int
}

func (c cursor) String() string {
	return strconv.Itoa(c.sender) + "," + strconv.Itoa(c.recipient)
}

func parseCursor(s string) (cursor, error) {
	if s == "" {
		return cursor{}, nil
	}

	sender, recipient, ok := strings.Cut(s, ",")
	if !ok {
		return cursor{}, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, s)
	}

	var (
		c   cursor
		err error
	)
	if c.sender, err = strconv.Atoi(sender); err != nil || c.sender < 0 {
		return cursor{}, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, s)
	}
	if c.recipient, err = strconv.Atoi(recipient); err != nil || c.recipient < 0 {
		return cursor{}, fmt.Errorf("%w: %q", ledger.ErrInvalidCursor, s)
	}

	return c, nil
}

// entry is one tx-search result. Invalid entries carry no record.
type entry struct {
	record ledger.Transaction
	valid  bool
}

// merge interleaves two newest-first streams into at most limit records,
// deduplicated by hash. It returns the cursor past every entry that was
// emitted, was a duplicate of an emitted record, or was invalid, so records
// cut off by the limit are served by the next page.
func merge(sent, received []entry, cur cursor, limit int) ([]ledger.Transaction, cursor) {
	out := make([]ledger.Transaction, 0, limit)
	emitted := types.NewSet[string]()

	skippable := func(e entry) bool {
		return !e.valid || emitted.Has(e.record.Hash)
	}

	i, j := 0, 0
	for {
		for i < len(sent) && skippable(sent[i]) {
			i++
		}
		for j < len(received) && skippable(received[j]) {
			j++
		}

		if len(out) == limit {
			break
		}

		var next entry
		switch {
		case i < len(sent) && j < len(received):
			if received[j].record.Timestamp.After(sent[i].record.Timestamp) {
				next = received[j]
				j++
			} else {
				next = sent[i]
				i++
			}
		case i < len(sent):
			next = sent[i]
			i++
		case j < len(received):
			next = received[j]
			j++
		default:
			return ledger.SortByTimestampDesc(out), cursor{cur.sender + i, cur.recipient + j}
		}

		emitted.Add(next.record.Hash)
		out = append(out, next.record)
	}

	return ledger.SortByTimestampDesc(out), cursor{cur.sender + i, cur.recipient + j}
}
