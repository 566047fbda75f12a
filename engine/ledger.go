/*
ledger.go - Transaction storage contract

PURPOSE:
  Separates storage policy from business logic. The Engine never touches
  a concrete store directly; it drives any Ledger implementation through
  three operations: Add, Update, Find. This lets storage I/O (SQLite,
  over the wire, whatever) be swapped in later without reshaping the
  engine — see ledgersql for the durable implementation.

UNIQUENESS CONTRACT (I4, I5):
  A TransactionID is global, not per-client. The ledger is responsible for
  rejecting an Add that would associate the same TransactionID with two
  different clients. Implementations keep an auxiliary
  TransactionID -> ClientID index for this purpose (see memory_ledger.go).

CONTEXT-CAPABLE, NOT CONTEXT-REQUIRED:
  Every method takes a context.Context so a future I/O-backed
  implementation has a natural place to hang cancellation/deadlines. The
  in-memory implementation never blocks and ignores it.

SEE ALSO:
  - memory_ledger.go: in-process implementation used by tests and the CLI
    default.
  - ../ledgersql: SQLite-backed implementation.
*/
package engine

import "context"

// Ledger is the storage contract the Engine drives. Implementations MUST
// enforce global TransactionID uniqueness across clients (I4) and MUST
// NOT allow two distinct Transactions under the same (ClientID,
// TransactionID) key (I5).
type Ledger interface {
	// Add inserts a brand-new transaction. It returns ErrAlreadyExists if
	// an identical transaction already exists under this client, or a
	// *ConflictError if the TransactionID belongs to a different client
	// or an existing record under this client differs.
	Add(ctx context.Context, clientID ClientID, tx Transaction) error

	// Update replaces the transaction stored under (clientID, tx.Info().ID).
	// It is a no-op (success) if the stored record is already identical,
	// and inserts the record if none is stored yet — the Engine always
	// finds-then-updates, so this tolerance is never exercised in
	// practice but keeps the contract simple for other callers.
	Update(ctx context.Context, clientID ClientID, tx Transaction) error

	// Find returns a copy of the stored transaction, or ok=false if none
	// is stored under (clientID, transactionID).
	Find(ctx context.Context, clientID ClientID, transactionID TransactionID) (tx Transaction, ok bool, err error)
}

// ErrAlreadyExists is returned by Add when a byte-for-byte-identical
// transaction is already stored under the same client. Mapped to
// EngineError's DuplicateEvent by the Engine.
var ErrAlreadyExists = &ledgerSentinelError{"already exists"}

// ConflictError is returned by Add/Update when the TransactionID belongs
// to a different client, or an existing record under this client differs
// in its fields. Mapped to EngineError's InvalidEvent by the Engine.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Reason }

// ledgerSentinelError is a tiny comparable error type so ErrAlreadyExists
// can be compared with errors.Is without pulling in errors.New's identity
// quirks (not needed here, but keeps the package's error style
// consistent with a single kind of sentinel).
type ledgerSentinelError struct{ msg string }

func (e *ledgerSentinelError) Error() string { return e.msg }

var (
	// ConflictDifferentClient is the reason string used when a
	// TransactionID is re-submitted under a different client than the
	// one it was first inserted with.
	ConflictDifferentClient = "Transaction belong to a different client"

	// ConflictDifferentDetails is the reason string used when a
	// TransactionID is re-submitted under the same client but with
	// different fields (amount, direction, status).
	ConflictDifferentDetails = "Transaction already exist but with different details"
)
