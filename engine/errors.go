/*
errors.go - Engine-level error taxonomy

PURPOSE:
  Centralizes every error the Engine can return and distinguishes the two
  tiers described in the design doc:
    - Partner-data errors: expected during normal operation against
      untrusted input; per-event, non-fatal, the stream continues.
    - System errors: an invariant was violated; the caller must stop the
      stream, in-memory state is no longer guaranteed coherent.

USAGE:
  Callers compare with errors.Is against the sentinel for the kind they
  care about, or call IsSystemError to decide whether to halt:

    if errors.Is(err, engine.ErrInsufficientFunds) {
        // skip this row, keep processing
    }
    if engine.IsSystemError(err) {
        return err // fatal, stop the stream
    }

MESSAGE STABILITY:
  The rendered strings are part of the contract (tests and the CLI's
  diagnostic output depend on them) — see spec.md §4.5 and §4.7 for the
  literal text.
*/
package engine

import (
	"errors"
	"fmt"
)

// ErrKind classifies an EngineError. Exported so callers can switch on it
// directly instead of string-matching.
type ErrKind int

const (
	ErrKindInvalidAssociatedTransaction ErrKind = iota
	ErrKindInsufficientFunds
	ErrKindInvalidTransactionStatus
	ErrKindDuplicateEvent
	ErrKindAccountLocked
	ErrKindInvalidEvent
	ErrKindSystemError
)

// Sentinel errors for errors.Is comparisons. EngineError.Unwrap returns
// the sentinel matching its Kind.
var (
	ErrInvalidAssociatedTransaction = errors.New("invalid associated transaction")
	ErrInsufficientFunds            = errors.New("insufficient funds")
	ErrInvalidTransactionStatus     = errors.New("invalid transaction status")
	ErrDuplicateEvent               = errors.New("duplicate event")
	ErrAccountLocked                = errors.New("account locked")
	ErrInvalidEvent                 = errors.New("invalid event")
	ErrSystemError                  = errors.New("system error")
)

// EngineError is the single error type returned by Engine.Apply.
type EngineError struct {
	Kind     ErrKind
	Message  string // static or formatted detail, kind-dependent
	ClientID ClientID
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case ErrKindInvalidAssociatedTransaction:
		return fmt.Sprintf("Invalid associated transaction: %s", e.Message)
	case ErrKindInsufficientFunds:
		return "Insufficient funds"
	case ErrKindInvalidTransactionStatus:
		return fmt.Sprintf("Transaction is in invalid status: %s", e.Message)
	case ErrKindDuplicateEvent:
		return "Duplicate event"
	case ErrKindAccountLocked:
		return fmt.Sprintf("Client %s account is locked, no further activity is allowed", e.ClientID)
	case ErrKindInvalidEvent:
		return fmt.Sprintf("Invalid event: %s", e.Message)
	case ErrKindSystemError:
		return fmt.Sprintf("System error: %s", e.Message)
	default:
		return "unknown engine error"
	}
}

// Unwrap lets errors.Is(err, engine.ErrInsufficientFunds) etc. work.
func (e *EngineError) Unwrap() error {
	switch e.Kind {
	case ErrKindInvalidAssociatedTransaction:
		return ErrInvalidAssociatedTransaction
	case ErrKindInsufficientFunds:
		return ErrInsufficientFunds
	case ErrKindInvalidTransactionStatus:
		return ErrInvalidTransactionStatus
	case ErrKindDuplicateEvent:
		return ErrDuplicateEvent
	case ErrKindAccountLocked:
		return ErrAccountLocked
	case ErrKindInvalidEvent:
		return ErrInvalidEvent
	case ErrKindSystemError:
		return ErrSystemError
	default:
		return nil
	}
}

// IsSystemError reports whether err is a fatal EngineError: the host must
// stop the stream rather than continue to the next event.
func IsSystemError(err error) bool {
	return errors.Is(err, ErrSystemError)
}

// fromLedgerError maps a Ledger-layer failure onto the Engine's taxonomy:
// AlreadyExists -> DuplicateEvent, Conflict(reason) -> InvalidEvent(reason).
func fromLedgerError(err error) *EngineError {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return &EngineError{Kind: ErrKindInvalidEvent, Message: conflict.Reason}
	}
	return &EngineError{Kind: ErrKindDuplicateEvent}
}

// fromTransitionError maps a Transaction state-machine failure onto the
// Engine's taxonomy.
func fromTransitionError(err *TransitionError) *EngineError {
	if err.InvalidDirection {
		// Never surfaced in practice: the Engine always checks Direction
		// itself before calling TransitionInbound, using the more
		// specific InvalidAssociatedTransaction message instead.
		return &EngineError{Kind: ErrKindInvalidEvent, Message: "Invalid transaction"}
	}
	return &EngineError{
		Kind: ErrKindInvalidTransactionStatus,
		Message: fmt.Sprintf(
			"Operation doesn't apply to this transaction. Transition from %s to %s",
			err.From, err.To,
		),
	}
}
