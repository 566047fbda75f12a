package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/ledgerd/api"
	"github.com/warp/ledgerd/engine"
)

func newTestRouter(t *testing.T, eng *engine.Engine) http.Handler {
	t.Helper()
	var mu sync.RWMutex
	h := api.NewHandler(eng, &mu)
	return api.NewRouter(h, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, engine.New(engine.NewMemoryLedger()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListAccounts_EmptyEngine(t *testing.T) {
	router := newTestRouter(t, engine.New(engine.NewMemoryLedger()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []api.AccountDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	assert.Empty(t, accounts)
}

func TestGetAccount_AfterDeposit(t *testing.T) {
	eng := engine.New(engine.NewMemoryLedger())
	require.NoError(t, eng.Apply(context.Background(), engine.Event{
		Kind: engine.Deposit, ClientID: 1, TransactionID: 1, Amount: engine.AmountFromMinor(150000),
	}))
	router := newTestRouter(t, eng)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/1", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var dto api.AccountDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, uint16(1), dto.ClientID)
	assert.Equal(t, "1500.0000", dto.Available)
	assert.False(t, dto.Locked)
}

func TestGetAccount_UnknownClientIs404(t *testing.T) {
	router := newTestRouter(t, engine.New(engine.NewMemoryLedger()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/99", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAccount_NonNumericClientIs400(t *testing.T) {
	router := newTestRouter(t, engine.New(engine.NewMemoryLedger()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/not-a-number", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
