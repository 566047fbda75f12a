/*
row.go - CSV row shapes for the partner-visible input/output boundary

PURPOSE:
  This package is the external collaborator spec.md §6 describes: it is
  NOT part of the engine core, and the core never imports it. It decodes
  the partner's CSV row format into engine.Event values, and encodes
  engine.ClientAccount snapshots back into the output row format.

INPUT ROW SHAPE (case-insensitive header, whitespace-tolerant):
  type, client, tx, amount
  - type: deposit | withdrawal | dispute | resolve | chargeback
  - client: uint16
  - tx: uint32
  - amount: decimal, present for deposit/withdrawal, absent otherwise

OUTPUT ROW SHAPE:
  client,available,held,total,locked
  Monetary values print via the underlying decimal's natural
  representation (trailing zeros permitted, integers print as integers).

SEE ALSO:
  - reader.go: streaming CSV -> Event decoding.
  - writer.go: ClientAccount -> CSV row encoding.
*/
package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/ledgerd/engine"
)

// entryType is the lowercase `type` column value.
type entryType string

const (
	entryDeposit    entryType = "deposit"
	entryWithdrawal entryType = "withdrawal"
	entryDispute    entryType = "dispute"
	entryResolve    entryType = "resolve"
	entryChargeback entryType = "chargeback"
)

// inputRow mirrors one CSV record before it is turned into an engine.Event.
type inputRow struct {
	Type   entryType
	Client uint16
	Tx     uint32
	Amount *decimal.Decimal // nil for dispute/resolve/chargeback
}

// parseInputRow builds an inputRow from a header-indexed record. header
// maps lowercase, trimmed column name -> index into record.
func parseInputRow(header map[string]int, record []string) (inputRow, error) {
	get := func(name string) (string, bool) {
		idx, ok := header[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	rawType, ok := get("type")
	if !ok {
		return inputRow{}, fmt.Errorf("missing required column %q", "type")
	}
	ty := entryType(strings.ToLower(rawType))
	switch ty {
	case entryDeposit, entryWithdrawal, entryDispute, entryResolve, entryChargeback:
	default:
		return inputRow{}, fmt.Errorf("unknown transaction type %q", rawType)
	}

	rawClient, ok := get("client")
	if !ok {
		return inputRow{}, fmt.Errorf("missing required column %q", "client")
	}
	client, err := strconv.ParseUint(rawClient, 10, 16)
	if err != nil {
		return inputRow{}, fmt.Errorf("invalid client id %q: %w", rawClient, err)
	}

	rawTx, ok := get("tx")
	if !ok {
		return inputRow{}, fmt.Errorf("missing required column %q", "tx")
	}
	tx, err := strconv.ParseUint(rawTx, 10, 32)
	if err != nil {
		return inputRow{}, fmt.Errorf("invalid transaction id %q: %w", rawTx, err)
	}

	row := inputRow{Type: ty, Client: uint16(client), Tx: uint32(tx)}

	if rawAmount, ok := get("amount"); ok && rawAmount != "" {
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return inputRow{}, fmt.Errorf("invalid amount %q: %w", rawAmount, err)
		}
		row.Amount = &amount
	}

	return row, nil
}

// toEvent converts a validated inputRow into the engine.Event it describes.
func (r inputRow) toEvent() (engine.Event, error) {
	clientID := engine.ClientID(r.Client)
	txID := engine.TransactionID(r.Tx)

	switch r.Type {
	case entryDeposit:
		if r.Amount == nil {
			return engine.Event{}, fmt.Errorf("amount is required for deposit")
		}
		return engine.Event{
			Kind: engine.Deposit, ClientID: clientID, TransactionID: txID,
			Amount: engine.AmountFromDecimal(*r.Amount),
		}, nil
	case entryWithdrawal:
		if r.Amount == nil {
			return engine.Event{}, fmt.Errorf("amount is required for withdrawal")
		}
		return engine.Event{
			Kind: engine.Withdraw, ClientID: clientID, TransactionID: txID,
			Amount: engine.AmountFromDecimal(*r.Amount),
		}, nil
	case entryDispute:
		return engine.Event{Kind: engine.Dispute, ClientID: clientID, TransactionID: txID}, nil
	case entryResolve:
		return engine.Event{Kind: engine.Resolve, ClientID: clientID, TransactionID: txID}, nil
	case entryChargeback:
		return engine.Event{Kind: engine.Chargeback, ClientID: clientID, TransactionID: txID}, nil
	default:
		return engine.Event{}, fmt.Errorf("unknown transaction type %q", r.Type)
	}
}

// OutputRow is one line of the `client,available,held,total,locked` report.
type OutputRow struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewOutputRow builds an OutputRow from an engine account snapshot.
func NewOutputRow(account engine.ClientAccount) (OutputRow, error) {
	held, ok := account.Held()
	if !ok {
		return OutputRow{}, fmt.Errorf("client %s: held amount would be negative", account.ClientID)
	}
	return OutputRow{
		Client:    uint16(account.ClientID),
		Available: account.Available.AsDecimal(),
		Held:      held.AsDecimal(),
		Total:     account.Total.AsDecimal(),
		Locked:    account.IsLocked,
	}, nil
}

// Strings renders the row's fields as CSV cell values, in column order.
func (r OutputRow) Strings() []string {
	return []string{
		strconv.FormatUint(uint64(r.Client), 10),
		r.Available.String(),
		r.Held.String(),
		r.Total.String(),
		strconv.FormatBool(r.Locked),
	}
}
