/*
reader.go - Streaming CSV decoding into engine.Event

PURPOSE:
  Wraps encoding/csv the way the original's csv::ReaderBuilder did:
  whitespace-trimmed, flexible field counts (dispute/resolve/chargeback
  rows omit the amount column), case-insensitive header.

USAGE:
  r, err := feed.NewReader(file)
  for {
      event, err := r.Next()
      if err == io.EOF {
          break
      }
      if err != nil {
          // malformed row: log and continue, does not halt the stream
          continue
      }
      _ = eng.Apply(ctx, event.Inner())
  }
*/
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/warp/ledgerd/engine"
)

// Reader decodes CSV rows into engine.Event values.
type Reader struct {
	csv    *csv.Reader
	header map[string]int
}

// NewReader builds a Reader over r. It immediately consumes the header
// row, matching column names case-insensitively and trimming whitespace.
func NewReader(r io.Reader) (*Reader, error) {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1 // flexible: dispute/resolve/chargeback omit amount

	headerRecord, err := csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return &Reader{csv: csvReader, header: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(headerRecord))
	for i, name := range headerRecord {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return &Reader{csv: csvReader, header: header}, nil
}

// Next returns the next decoded Event, or io.EOF once the stream is
// exhausted. A non-EOF error indicates a malformed row (bad column count,
// unparsable field, unknown type): the caller should log it and keep
// reading, it does not indicate a problem with the stream itself.
func (r *Reader) Next() (Event, error) {
	record, err := r.csv.Read()
	if err != nil {
		return Event{}, err
	}

	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	row, err := parseInputRow(r.header, record)
	if err != nil {
		return Event{}, &MalformedRowError{Record: record, Cause: err}
	}

	ev, err := row.toEvent()
	if err != nil {
		return Event{}, &MalformedRowError{Record: record, Cause: err}
	}

	return Event{inner: ev, ClientID: row.Client, TransactionID: row.Tx}, nil
}

// Event wraps an engine.Event with the raw client/tx identifiers used in
// diagnostic messages, matching the original CLI's
// "Partner Data Error for TxId: {tx}, ClientId: {client}: {err}" format.
type Event struct {
	inner         engine.Event
	ClientID      uint16
	TransactionID uint32
}

// Inner returns the engine.Event to apply.
func (e Event) Inner() engine.Event { return e.inner }

// MalformedRowError reports a CSV row that could not be decoded into an
// Event at all (as opposed to an Event the engine later rejects).
type MalformedRowError struct {
	Record []string
	Cause  error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %v: %s", e.Record, e.Cause)
}

func (e *MalformedRowError) Unwrap() error { return e.Cause }
