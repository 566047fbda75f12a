/*
Package ledgertest is a shared conformance suite (P11): any engine.Ledger
implementation must pass it, not just engine.MemoryLedger. It is exported
(rather than a _test.go file) so a second implementation living in
another package — ledgersql — can run the exact same assertions against
its own store.
*/
package ledgertest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledgerd/engine"
)

// Run exercises newLedger() against the Add/Update/Find contract that
// every engine.Ledger implementation must satisfy. newLedger must return
// a fresh, empty ledger each call.
func Run(t *testing.T, newLedger func() engine.Ledger) {
	t.Helper()

	t.Run("AddThenFind", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
		require.NoError(t, ledger.Add(ctx, 1, tx))

		found, ok, err := ledger.Find(ctx, 1, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, found.Equal(tx))
	})

	t.Run("FindMissingReturnsNotOk", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		_, ok, err := ledger.Find(ctx, 1, 99)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("TransactionIDGloballyUnique", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
		require.NoError(t, ledger.Add(ctx, 1, tx))

		err := ledger.Add(ctx, 2, tx)
		require.Error(t, err)
		var conflict *engine.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, engine.ConflictDifferentClient, conflict.Reason)
	})

	t.Run("IdenticalRetryIsAlreadyExists", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
		require.NoError(t, ledger.Add(ctx, 1, tx))

		err := ledger.Add(ctx, 1, tx)
		assert.ErrorIs(t, err, engine.ErrAlreadyExists)
	})

	t.Run("DifferingDetailsIsConflict", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		require.NoError(t, ledger.Add(ctx, 1, engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))))

		err := ledger.Add(ctx, 1, engine.NewSettledInbound(1, 1, engine.AmountFromMinor(200)))
		require.Error(t, err)
		var conflict *engine.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, engine.ConflictDifferentDetails, conflict.Reason)
	})

	t.Run("UpdateReplacesRecord", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
		require.NoError(t, ledger.Add(ctx, 1, tx))

		require.NoError(t, tx.TransitionInbound(engine.Disputed))
		require.NoError(t, ledger.Update(ctx, 1, tx))

		found, ok, err := ledger.Find(ctx, 1, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, engine.Disputed, found.Status())
	})

	t.Run("UpdateThenFindPreservesAmount", func(t *testing.T) {
		ctx := context.Background()
		ledger := newLedger()

		tx := engine.NewSettledInbound(7, 3, engine.AmountFromDecimal(engine.AmountFromMinor(12345).AsDecimal()))
		require.NoError(t, ledger.Add(ctx, 3, tx))

		require.NoError(t, tx.TransitionInbound(engine.Disputed))
		require.NoError(t, tx.TransitionInbound(engine.ChargedBack))
		require.NoError(t, ledger.Update(ctx, 3, tx))

		found, ok, err := ledger.Find(ctx, 3, 7)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, engine.ChargedBack, found.Status())
		assert.True(t, found.Info().Amount.Equal(tx.Info().Amount))
	})
}
