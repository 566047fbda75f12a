/*
Package ledgersql provides a SQLite-backed implementation of engine.Ledger.

PURPOSE:
  The in-memory engine.MemoryLedger loses every transaction on process
  exit. Store wraps the same (ClientID, TransactionID) -> Transaction
  contract over a SQLite table so a long-running `ledgerd serve` process
  can survive restarts, selectable via `--ledger=sqlite --db=<path>`
  (default remains in-memory).

CONTRACT PARITY (P11):
  Store implements engine.Ledger with the exact same conflict semantics
  as MemoryLedger: Add rejects a TransactionID re-submitted under a
  different client with ConflictDifferentClient, rejects a re-submission
  under the same client with differing fields with
  ConflictDifferentDetails, and treats a byte-for-byte-identical retry as
  ErrAlreadyExists. ledgersql_test.go runs the shared conformance suite in
  engine/ledgertest against Store; engine/memory_ledger_test.go runs the
  same suite against MemoryLedger.

SCHEMA:
  transactions: one immutable-shape row per TransactionID, current
  direction/status/amount mutated in place by Update (mirroring the
  in-memory map's overwrite-in-place behavior — this is a mutable
  snapshot store, not an append-only audit log).

CONCURRENCY:
  Uses sync.Mutex the same way the teacher's store/sqlite.Store uses
  sync.RWMutex: SQLite serializes writers itself, but the
  read-modify-write conflict check in Add needs to be atomic from the
  caller's point of view too.

WAL MODE:
  Opened with WAL, matching the teacher's store/sqlite.Store, for
  better read concurrency against the admin HTTP surface.

SEE ALSO:
  - engine/ledger.go: the interface this satisfies.
  - engine/memory_ledger.go: the in-process counterpart this mirrors.
*/
package ledgersql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/ledgerd/engine"
)

// Store is a SQLite-backed engine.Ledger.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or attaches to a SQLite-backed Store at dbPath. Use
// ":memory:" for a transient, process-local database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ledgersql: open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledgersql: migrate: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transactions (
		client_id      INTEGER NOT NULL,
		transaction_id INTEGER NOT NULL,
		direction      INTEGER NOT NULL,
		status         INTEGER NOT NULL,
		amount         TEXT NOT NULL,
		PRIMARY KEY (client_id, transaction_id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_transaction_id
		ON transactions(transaction_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// owner returns the client_id already holding transactionID, if any,
// across all clients — mirrors MemoryLedger's owners index (I4).
func (s *Store) owner(transactionID engine.TransactionID) (engine.ClientID, bool, error) {
	row := s.db.QueryRow(
		`SELECT client_id FROM transactions WHERE transaction_id = ? LIMIT 1`,
		uint32(transactionID),
	)
	var clientID uint16
	switch err := row.Scan(&clientID); err {
	case nil:
		return engine.ClientID(clientID), true, nil
	case sql.ErrNoRows:
		return 0, false, nil
	default:
		return 0, false, err
	}
}

func (s *Store) find(clientID engine.ClientID, transactionID engine.TransactionID) (engine.Transaction, bool, error) {
	row := s.db.QueryRow(
		`SELECT direction, status, amount FROM transactions WHERE client_id = ? AND transaction_id = ?`,
		uint16(clientID), uint32(transactionID),
	)
	var direction, status int
	var amountText string
	switch err := row.Scan(&direction, &status, &amountText); err {
	case nil:
		tx, err := rowToTransaction(clientID, transactionID, direction, status, amountText)
		if err != nil {
			return engine.Transaction{}, false, err
		}
		return tx, true, nil
	case sql.ErrNoRows:
		return engine.Transaction{}, false, nil
	default:
		return engine.Transaction{}, false, err
	}
}

// Add implements engine.Ledger.
func (s *Store) Add(ctx context.Context, clientID engine.ClientID, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists, err := s.find(clientID, tx.Info().ID)
	if err != nil {
		return err
	}

	if !exists {
		owner, ownedByOther, err := s.owner(tx.Info().ID)
		if err != nil {
			return err
		}
		if ownedByOther && owner != clientID {
			return &engine.ConflictError{Reason: engine.ConflictDifferentClient}
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO transactions (client_id, transaction_id, direction, status, amount) VALUES (?, ?, ?, ?, ?)`,
			uint16(clientID), uint32(tx.Info().ID), int(tx.Direction()), int(tx.Status()), tx.Info().Amount.AsDecimal().String(),
		)
		return err
	}

	if existing.Equal(tx) {
		return engine.ErrAlreadyExists
	}
	return &engine.ConflictError{Reason: engine.ConflictDifferentDetails}
}

// Update implements engine.Ledger.
func (s *Store) Update(ctx context.Context, clientID engine.ClientID, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists, err := s.find(clientID, tx.Info().ID)
	if err != nil {
		return err
	}

	switch {
	case exists && existing.Info().ClientID != clientID:
		return &engine.ConflictError{Reason: engine.ConflictDifferentClient}
	case exists && existing.Equal(tx):
		return nil
	case exists:
		_, err := s.db.ExecContext(ctx,
			`UPDATE transactions SET direction = ?, status = ?, amount = ? WHERE client_id = ? AND transaction_id = ?`,
			int(tx.Direction()), int(tx.Status()), tx.Info().Amount.AsDecimal().String(), uint16(clientID), uint32(tx.Info().ID),
		)
		return err
	default:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO transactions (client_id, transaction_id, direction, status, amount) VALUES (?, ?, ?, ?, ?)`,
			uint16(clientID), uint32(tx.Info().ID), int(tx.Direction()), int(tx.Status()), tx.Info().Amount.AsDecimal().String(),
		)
		return err
	}
}

// Find implements engine.Ledger.
func (s *Store) Find(_ context.Context, clientID engine.ClientID, transactionID engine.TransactionID) (engine.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(clientID, transactionID)
}

func rowToTransaction(clientID engine.ClientID, transactionID engine.TransactionID, direction, status int, amountText string) (engine.Transaction, error) {
	amount, err := engine.AmountFromString(amountText)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("ledgersql: corrupt amount %q: %w", amountText, err)
	}

	dir := engine.Direction(direction)
	if dir != engine.Inbound && dir != engine.Outbound {
		return engine.Transaction{}, fmt.Errorf("ledgersql: unknown direction %d", direction)
	}

	info := engine.TransactionInfo{ID: transactionID, ClientID: clientID, Amount: amount}
	return engine.RestoreTransaction(dir, engine.Status(status), info), nil
}
