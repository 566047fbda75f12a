/*
core.go - Event application engine

PURPOSE:
  Orchestrates ledger mutation and balance mutation for each incoming
  Event, classifies failures per errors.go, and exposes account
  snapshots. This is where the real engineering lives: the rest of the
  package is plumbing this file depends on.

IDEMPOTENCY AND ATOMICITY — KNOWN LIMITATIONS (carried from the original
design, see spec.md §9 and DESIGN.md):
  Each apply* method touches both stores: Deposit/Withdraw (1) add the
  ledger row, then (2) update the client account; Dispute/Resolve/
  Chargeback (1) update the client account, then (2) write the new status
  back with ledger Update. These are not atomic. In a strongly
  consistent system both would happen in a single transaction; in an
  eventually consistent one we'd need a recovery mechanism. Two concrete
  asymmetries are accepted and test-observable:
    - Withdraw: a failed balance check (insufficient funds) still leaves
      the transaction row inserted in the ledger. Retrying with identical
      fields thereafter fails with DuplicateEvent, not InsufficientFunds
      again.
    - getOrCreateUnlocked: creating the account entry is a side effect
      even when the event goes on to fail for some other reason.

SEE ALSO:
  - ledger.go: the storage contract this type drives.
  - errors.go: the mapping from Ledger/Transaction errors to EngineError.
*/
package engine

import "context"

// Engine applies a sequential stream of Events against a Ledger,
// maintaining one ClientAccount per client. Not safe for concurrent
// Apply calls — see DESIGN.md's concurrency model.
type Engine struct {
	accounts map[ClientID]*ClientAccount
	ledger   Ledger
}

// New constructs an Engine backed by the given Ledger.
func New(ledger Ledger) *Engine {
	return &Engine{
		accounts: make(map[ClientID]*ClientAccount),
		ledger:   ledger,
	}
}

// Accounts returns a snapshot of every known account, in unspecified
// order. Callers that need determinism should use AccountsOrdered.
func (e *Engine) Accounts() []ClientAccount {
	out := make([]ClientAccount, 0, len(e.accounts))
	for _, a := range e.accounts {
		out = append(out, *a)
	}
	return out
}

// Account returns a snapshot of the single account for clientID, or
// ok=false if the client has never been seen.
func (e *Engine) Account(clientID ClientID) (account ClientAccount, ok bool) {
	a, ok := e.accounts[clientID]
	if !ok {
		return ClientAccount{}, false
	}
	return *a, true
}

// AccountsOrdered returns a snapshot of every known account sorted by
// ascending ClientID.
func (e *Engine) AccountsOrdered() []ClientAccount {
	out := e.Accounts()
	sortAccountsByClientID(out)
	return out
}

// Apply validates the event, then dispatches to the matching internal
// handler. Any partner-data error is returned for the offending event
// only and does not corrupt subsequent processing; a system error
// (IsSystemError(err) == true) means the caller must stop the stream.
func (e *Engine) Apply(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	switch event.Kind {
	case Deposit:
		return e.applyDeposit(ctx, event.ClientID, event.TransactionID, event.Amount)
	case Withdraw:
		return e.applyWithdraw(ctx, event.ClientID, event.TransactionID, event.Amount)
	case Dispute:
		return e.applyDispute(ctx, event.ClientID, event.TransactionID)
	case Resolve:
		return e.applyResolve(ctx, event.ClientID, event.TransactionID)
	case Chargeback:
		return e.applyChargeback(ctx, event.ClientID, event.TransactionID)
	default:
		return &EngineError{Kind: ErrKindInvalidEvent, Message: "unknown event kind"}
	}
}

// getOrCreateUnlocked fetches the account for clientID, creating a
// zero-value entry if none exists yet, then fails if that account is
// locked. Creation happens even when the caller goes on to fail for some
// other reason — see the file-level doc comment.
func (e *Engine) getOrCreateUnlocked(clientID ClientID) (*ClientAccount, error) {
	account, ok := e.accounts[clientID]
	if !ok {
		account = &ClientAccount{ClientID: clientID}
		e.accounts[clientID] = account
	}
	if account.IsLocked {
		return nil, &EngineError{Kind: ErrKindAccountLocked, ClientID: clientID}
	}
	return account, nil
}

func (e *Engine) applyDeposit(ctx context.Context, clientID ClientID, txID TransactionID, amount Amount) error {
	tx := NewSettledInbound(txID, clientID, amount)

	// Ledger insertion precedes balance mutation: a duplicate is rejected
	// without perturbing the account (spec.md §4.5, §7).
	if err := e.ledger.Add(ctx, clientID, tx); err != nil {
		return fromLedgerError(err)
	}

	account, err := e.getOrCreateUnlocked(clientID)
	if err != nil {
		return err
	}
	account.Available = account.Available.Add(amount)
	account.Total = account.Total.Add(amount)
	return nil
}

func (e *Engine) applyWithdraw(ctx context.Context, clientID ClientID, txID TransactionID, amount Amount) error {
	tx := NewSettledOutbound(txID, clientID, amount)

	// Known leak: if the balance check below fails, this row stays in the
	// ledger. A production design would move it to a Failed status; here
	// we document and test the leak instead of pretending it away.
	if err := e.ledger.Add(ctx, clientID, tx); err != nil {
		return fromLedgerError(err)
	}

	account, err := e.getOrCreateUnlocked(clientID)
	if err != nil {
		return err
	}

	newAvailable, ok := account.Available.TrySubtract(amount)
	if !ok {
		return &EngineError{Kind: ErrKindInsufficientFunds}
	}
	newTotal, ok := account.Total.TrySubtract(amount)
	if !ok {
		// total >= available always holds (I1), so this cannot trip once
		// the check above has succeeded; if it does, an invariant is broken.
		return &EngineError{Kind: ErrKindSystemError, Message: "Bug: total amount should never be negative."}
	}
	account.Available = newAvailable
	account.Total = newTotal
	return nil
}

func (e *Engine) applyDispute(ctx context.Context, clientID ClientID, txID TransactionID) error {
	tx, ok, err := e.ledger.Find(ctx, clientID, txID)
	if err != nil {
		return fromLedgerError(err)
	}
	if !ok {
		return &EngineError{Kind: ErrKindInvalidEvent, Message: "transaction not found"}
	}
	if tx.Direction() != Inbound {
		return &EngineError{Kind: ErrKindInvalidAssociatedTransaction, Message: "Dispute must be on a deposit"}
	}
	if err := tx.TransitionInbound(Disputed); err != nil {
		return fromTransitionError(err.(*TransitionError))
	}

	account, err := e.getOrCreateUnlocked(clientID)
	if err != nil {
		return err
	}
	newAvailable, ok := account.Available.TrySubtract(tx.Info().Amount)
	if !ok {
		return &EngineError{Kind: ErrKindInsufficientFunds}
	}
	account.Available = newAvailable

	if err := e.ledger.Update(ctx, clientID, tx); err != nil {
		return fromLedgerError(err)
	}
	return nil
}

func (e *Engine) applyResolve(ctx context.Context, clientID ClientID, txID TransactionID) error {
	tx, ok, err := e.ledger.Find(ctx, clientID, txID)
	if err != nil {
		return fromLedgerError(err)
	}
	if !ok {
		return &EngineError{Kind: ErrKindInvalidEvent, Message: "transaction not found"}
	}
	if tx.Direction() != Inbound {
		return &EngineError{Kind: ErrKindInvalidAssociatedTransaction, Message: "Dispute resolution must be on a deposit"}
	}
	if err := tx.TransitionInbound(Resolved); err != nil {
		return fromTransitionError(err.(*TransitionError))
	}

	account, err := e.getOrCreateUnlocked(clientID)
	if err != nil {
		return err
	}
	account.Available = account.Available.Add(tx.Info().Amount)

	if err := e.ledger.Update(ctx, clientID, tx); err != nil {
		return fromLedgerError(err)
	}
	return nil
}

func (e *Engine) applyChargeback(ctx context.Context, clientID ClientID, txID TransactionID) error {
	tx, ok, err := e.ledger.Find(ctx, clientID, txID)
	if err != nil {
		return fromLedgerError(err)
	}
	if !ok {
		return &EngineError{Kind: ErrKindInvalidEvent, Message: "transaction not found"}
	}
	if tx.Direction() != Inbound {
		return &EngineError{Kind: ErrKindInvalidAssociatedTransaction, Message: "Chargeback must be on a deposit"}
	}
	if err := tx.TransitionInbound(ChargedBack); err != nil {
		return fromTransitionError(err.(*TransitionError))
	}

	account, err := e.getOrCreateUnlocked(clientID)
	if err != nil {
		return err
	}

	// Available was already reduced at dispute time; only total moves now.
	newTotal, ok := account.Total.TrySubtract(tx.Info().Amount)
	if !ok {
		return &EngineError{Kind: ErrKindSystemError, Message: "Bug: total amount should never be negative."}
	}
	account.Total = newTotal
	account.IsLocked = true

	if err := e.ledger.Update(ctx, clientID, tx); err != nil {
		return fromLedgerError(err)
	}
	return nil
}
