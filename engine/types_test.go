package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledgerd/engine"
)

func TestAmount_TrySubtract_Succeeds(t *testing.T) {
	a := engine.AmountFromMinor(150) // 1.50
	b := engine.AmountFromMinor(50)  // 0.50

	result, ok := a.TrySubtract(b)
	require.True(t, ok)
	assert.True(t, result.Equal(engine.AmountFromMinor(100)))
}

func TestAmount_TrySubtract_PreventsNegative(t *testing.T) {
	a := engine.AmountFromMinor(1) // 0.01

	result, ok := a.TrySubtract(engine.AmountFromMinor(2))
	assert.False(t, ok)
	// Unchanged on failure.
	assert.True(t, result.Equal(engine.AmountFromMinor(1)))
}

func TestAmount_String_AlwaysFourDecimals(t *testing.T) {
	a := engine.AmountFromDecimal(decimal.New(123456, -4))
	assert.Equal(t, "12.3456", a.String())
}

func TestAmount_FromDecimal_RoundsHalfAwayFromZero(t *testing.T) {
	a := engine.AmountFromDecimal(decimal.RequireFromString("1.12349"))
	assert.Equal(t, "1.1235", a.String())

	// A tie at the fifth digit rounds away from zero (half-even would give 1.0000).
	tie := engine.AmountFromDecimal(decimal.RequireFromString("1.00005"))
	assert.Equal(t, "1.0001", tie.String())
}

func TestAmount_Add_Unconditional(t *testing.T) {
	a := engine.AmountFromMinor(100)
	b := engine.AmountFromMinor(50)
	assert.True(t, a.Add(b).Equal(engine.AmountFromMinor(150)))
}

func TestAmount_ZeroValue(t *testing.T) {
	assert.True(t, engine.ZeroAmount().Equal(engine.ZeroAmount()))
	assert.True(t, engine.Amount{}.Equal(engine.ZeroAmount()))
}
