package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledgerd/engine"
)

func TestTransaction_InboundLifecycle(t *testing.T) {
	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	assert.Equal(t, engine.Inbound, tx.Direction())
	assert.Equal(t, engine.Settled, tx.Status())

	require.NoError(t, tx.TransitionInbound(engine.Disputed))
	assert.Equal(t, engine.Disputed, tx.Status())

	require.NoError(t, tx.TransitionInbound(engine.Resolved))
	assert.Equal(t, engine.Resolved, tx.Status())
}

func TestTransaction_DisputeThenChargeback(t *testing.T) {
	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	require.NoError(t, tx.TransitionInbound(engine.Disputed))
	require.NoError(t, tx.TransitionInbound(engine.ChargedBack))
	assert.Equal(t, engine.ChargedBack, tx.Status())
}

func TestTransaction_ResolvedIsTerminal(t *testing.T) {
	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	require.NoError(t, tx.TransitionInbound(engine.Disputed))
	require.NoError(t, tx.TransitionInbound(engine.Resolved))

	err := tx.TransitionInbound(engine.Disputed)
	require.Error(t, err)
	assert.Equal(t, "invalid transition from Resolved to Disputed", err.Error())
}

func TestTransaction_ChargeBackWithoutDisputeRejected(t *testing.T) {
	tx := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	err := tx.TransitionInbound(engine.ChargedBack)
	require.Error(t, err)
	assert.Equal(t, "invalid transition from Settled to ChargedBack", err.Error())
}

func TestTransaction_OutboundNeverTransitions(t *testing.T) {
	tx := engine.NewSettledOutbound(1, 1, engine.AmountFromMinor(100))
	err := tx.TransitionInbound(engine.Disputed)
	require.Error(t, err)
	assert.Equal(t, "must be an inbound to transition", err.Error())
	assert.Equal(t, engine.Settled, tx.Status())
}

func TestTransaction_Equal(t *testing.T) {
	a := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	b := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(100))
	c := engine.NewSettledInbound(1, 1, engine.AmountFromMinor(101))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Settled", engine.Settled.String())
	assert.Equal(t, "Disputed", engine.Disputed.String())
	assert.Equal(t, "Resolved", engine.Resolved.String())
	assert.Equal(t, "ChargedBack", engine.ChargedBack.String())
}
