package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledgerd/engine"
	"github.com/warp/ledgerd/engine/ledgertest"
)

// TestMemoryLedger_Conformance runs the shared Ledger contract suite
// (P11) that ledgersql.Store must also pass.
func TestMemoryLedger_Conformance(t *testing.T) {
	ledgertest.Run(t, func() engine.Ledger { return engine.NewMemoryLedger() })
}

func TestMemoryLedger_AddThenFind(t *testing.T) {
	ctx := context.Background()
	ledger := engine.NewMemoryLedger()

	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	require.NoError(t, ledger.Add(ctx, 1, tx))

	found, ok, err := ledger.Find(ctx, 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, found.Equal(tx))
}

func TestMemoryLedger_Find_MissingReturnsNotOk(t *testing.T) {
	ctx := context.Background()
	ledger := engine.NewMemoryLedger()

	_, ok, err := ledger.Find(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TransactionID is globally unique: the same ID cannot be inserted under a
// second client (I4).
func TestMemoryLedger_TransactionIDGloballyUnique(t *testing.T) {
	ctx := context.Background()
	ledger := engine.NewMemoryLedger()

	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	require.NoError(t, ledger.Add(ctx, 1, tx))

	err := ledger.Add(ctx, 2, tx)
	require.Error(t, err)
	var conflict *engine.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, engine.ConflictDifferentClient, conflict.Reason)
}

func TestMemoryLedger_Add_IdenticalRetryIsAlreadyExists(t *testing.T) {
	ctx := context.Background()
	ledger := engine.NewMemoryLedger()

	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	require.NoError(t, ledger.Add(ctx, 1, tx))

	err := ledger.Add(ctx, 1, tx)
	assert.ErrorIs(t, err, engine.ErrAlreadyExists)
}

func TestMemoryLedger_Add_DifferingDetailsIsConflict(t *testing.T) {
	ctx := context.Background()
	ledger := engine.NewMemoryLedger()

	require.NoError(t, ledger.Add(ctx, 1, engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))))

	err := ledger.Add(ctx, 1, engine.NewSettledInbound(1, 1, engine.AmountFromMinor(200)))
	require.Error(t, err)
	var conflict *engine.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, engine.ConflictDifferentDetails, conflict.Reason)
}

func TestMemoryLedger_Update_ReplacesRecord(t *testing.T) {
	ctx := context.Background()
	ledger := engine.NewMemoryLedger()

	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	require.NoError(t, ledger.Add(ctx, 1, tx))

	require.NoError(t, tx.TransitionInbound(engine.Disputed))
	require.NoError(t, ledger.Update(ctx, 1, tx))

	found, ok, err := ledger.Find(ctx, 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, engine.Disputed, found.Status())
}
