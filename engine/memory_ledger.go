/*
memory_ledger.go - In-process Ledger implementation

PURPOSE:
  The default, zero-dependency Ledger: a map keyed on (ClientID,
  TransactionID) plus an auxiliary TransactionID -> ClientID index that
  enforces global transaction-ID uniqueness (I4) on Add.

COMPLETION MODEL:
  Every operation completes synchronously; the context.Context parameter
  exists only to satisfy the Ledger interface (see ledger.go).
*/
package engine

import "context"

type ledgerKey struct {
	clientID      ClientID
	transactionID TransactionID
}

// MemoryLedger is an in-memory Ledger. Safe for sequential use by a single
// Engine; it performs no internal locking (consistent with the engine's
// single-owner concurrency model — see DESIGN.md).
type MemoryLedger struct {
	transactions map[ledgerKey]Transaction
	owners       map[TransactionID]ClientID
}

// NewMemoryLedger returns an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		transactions: make(map[ledgerKey]Transaction),
		owners:       make(map[TransactionID]ClientID),
	}
}

func (l *MemoryLedger) belongsToDifferentClient(tx Transaction, clientID ClientID) bool {
	owner, ok := l.owners[tx.Info().ID]
	return ok && owner != clientID
}

// Add implements Ledger.
func (l *MemoryLedger) Add(_ context.Context, clientID ClientID, tx Transaction) error {
	key := ledgerKey{clientID, tx.Info().ID}
	existing, exists := l.transactions[key]

	switch {
	case !exists && l.belongsToDifferentClient(tx, clientID):
		return &ConflictError{Reason: ConflictDifferentClient}
	case exists && existing.Equal(tx):
		return ErrAlreadyExists
	case exists:
		return &ConflictError{Reason: ConflictDifferentDetails}
	default:
		l.owners[tx.Info().ID] = clientID
		l.transactions[key] = tx
		return nil
	}
}

// Update implements Ledger.
func (l *MemoryLedger) Update(_ context.Context, clientID ClientID, tx Transaction) error {
	key := ledgerKey{clientID, tx.Info().ID}
	existing, exists := l.transactions[key]

	switch {
	case exists && existing.Info().ClientID != clientID:
		return &ConflictError{Reason: ConflictDifferentClient}
	case exists && existing.Equal(tx):
		return nil
	default:
		l.transactions[key] = tx
		return nil
	}
}

// Find implements Ledger.
func (l *MemoryLedger) Find(_ context.Context, clientID ClientID, transactionID TransactionID) (Transaction, bool, error) {
	tx, ok := l.transactions[ledgerKey{clientID, transactionID}]
	return tx, ok, nil
}
