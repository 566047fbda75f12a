package ledgersql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warp/ledgerd/engine"
	"github.com/warp/ledgerd/engine/ledgertest"
	"github.com/warp/ledgerd/ledgersql"
)

// TestStore_Conformance runs the shared Ledger contract suite (P11)
// against the SQLite-backed Store, proving it is a drop-in replacement
// for engine.MemoryLedger.
func TestStore_Conformance(t *testing.T) {
	ledgertest.Run(t, func() engine.Ledger {
		store, err := ledgersql.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestStore_PersistsAcrossFind(t *testing.T) {
	ctx := context.Background()
	store, err := ledgersql.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	tx := engine.NewSettledOutbound(42, 5, engine.AmountFromMinor(999))
	require.NoError(t, store.Add(ctx, 5, tx))

	found, ok, err := store.Find(ctx, 5, 42)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, found.Equal(tx))
	require.Equal(t, engine.Outbound, found.Direction())
}
