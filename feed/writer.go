/*
writer.go - CSV encoding of account snapshots

PURPOSE:
  Writes the `client,available,held,total,locked` report, one row per
  engine.ClientAccount, matching spec.md §6's output row shape exactly.
*/
package feed

import (
	"encoding/csv"
	"io"

	"github.com/warp/ledgerd/engine"
)

// Writer encodes ClientAccount snapshots as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter builds a Writer over w. The header row is written immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return nil, err
	}
	return &Writer{csv: csvWriter}, nil
}

// WriteAccount writes one account snapshot as a CSV row.
func (w *Writer) WriteAccount(account engine.ClientAccount) error {
	row, err := NewOutputRow(account)
	if err != nil {
		return err
	}
	return w.csv.Write(row.Strings())
}

// Flush flushes any buffered output and returns the first error
// encountered, if any.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
