/*
types.go - Core value types for the settlement engine

PURPOSE:
  Defines the primitive, domain-agnostic building blocks every other file
  in this package is built on: a fixed-precision monetary Amount and the
  opaque client/transaction identifiers.

KEY CONCEPTS:
  - Amount: a non-negative decimal with at most 4 fractional digits after
    any mutation. All balance math funnels through TrySubtract, so the
    non-negativity invariant (I1 in the design doc) is local to this type.
  - ClientID / TransactionID: thin wrappers around uint16/uint32 so the
    compiler rejects accidentally swapping the two.

DESIGN PRINCIPLES:
  1. Precision: uses shopspring/decimal to avoid floating-point drift.
  2. Type Safety: wrapper types prevent mixing IDs with raw integers.
  3. Immutability at the boundary: Amount values are small and passed by
     value; no method mutates in place, and TrySubtract returns a new
     value only on success.

SEE ALSO:
  - transaction.go: Transaction and its status state machine.
  - errors.go: EngineError taxonomy.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - fixed-precision, non-negative monetary value
// =============================================================================

// Amount is a monetary value held to 4 fractional digits. Zero value is
// zero. Every public mutator either cannot fail (Add) or fails without
// side effects if it would drive the value negative (TrySubtract).
type Amount struct {
	value decimal.Decimal
}

// ZeroAmount returns the additive identity.
func ZeroAmount() Amount {
	return Amount{value: decimal.Zero}
}

// AmountFromMinor builds an Amount from minor units (e.g. cents): the
// result equals value/100.
func AmountFromMinor(value uint32) Amount {
	return Amount{value: decimal.New(int64(value), -2)}
}

// AmountFromDecimal rounds d to 4 fractional digits, half-away-from-zero,
// matching the original engine's round_dp(4) behavior (see DESIGN.md).
// The result may be negative; callers at the input boundary (Event
// validation) reject negative amounts before they reach the engine.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{value: d.Round(4)}
}

// AmountFromString parses s as a decimal and rounds it the same way
// AmountFromDecimal does. Used by storage adapters (see ledgersql)
// rehydrating a persisted amount.
func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return AmountFromDecimal(d), nil
}

// AsDecimal returns the exact underlying decimal.
func (a Amount) AsDecimal() decimal.Decimal {
	return a.value
}

// String renders the amount with exactly four fractional digits. Used by
// error messages; the output row writer formats via AsDecimal instead, as
// specified, so integer amounts print without padding in CSV output.
func (a Amount) String() string {
	return a.value.StringFixed(4)
}

// Add returns a + b. Never fails: both operands are assumed non-negative
// by construction.
func (a Amount) Add(b Amount) Amount {
	return Amount{value: a.value.Add(b.value)}
}

// TrySubtract attempts a - b. On success it returns the updated Amount and
// true; on failure (result would be negative) it returns the receiver
// unchanged and false, so the caller can decide what to do without having
// mutated any state.
func (a Amount) TrySubtract(b Amount) (Amount, bool) {
	result := a.value.Sub(b.value)
	if result.IsNegative() {
		return a, false
	}
	return Amount{value: result}, true
}

// IsNegative reports whether the amount is below zero. Only meaningful for
// values built via AmountFromDecimal at the input boundary, before
// validation has rejected them.
func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

// Equal reports exact equality of the scaled representation.
func (a Amount) Equal(b Amount) bool {
	return a.value.Equal(b.value)
}

// =============================================================================
// IDENTIFIERS - opaque, comparable, hashable wrappers
// =============================================================================

// ClientID identifies a partner client. Comparable and usable as a map key.
type ClientID uint16

func (c ClientID) String() string {
	return fmt.Sprintf("%d", uint16(c))
}

// TransactionID identifies a transaction. Globally unique across all
// clients — see the Ledger invariant in ledger.go.
type TransactionID uint32

func (t TransactionID) String() string {
	return fmt.Sprintf("%d", uint32(t))
}

// TransactionInfo is the immutable payload carried by every Transaction.
type TransactionInfo struct {
	ID       TransactionID
	ClientID ClientID
	Amount   Amount
}
