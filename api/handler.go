/*
handler.go - HTTP handlers for the read-only admin surface

PURPOSE:
  Exposes the live Engine's account snapshots over HTTP so an operator
  (or `ledgerd serve`'s caller) can inspect balances while the process is
  still reading events from stdin. This surface is READ-ONLY: every
  mutation flows through the CSV/stdin event feed (see cmd/ledgerd), not
  through HTTP, so there is exactly one writer of engine state and the
  concurrency story stays simple (see DESIGN.md).

ENDPOINTS:
  GET /healthz                  liveness probe, always 200
  GET /api/accounts             snapshot of every known account
  GET /api/accounts/{clientId}  snapshot of one account, 404 if unknown

CONCURRENCY:
  Handler guards Engine access with a RWMutex: the ingestion loop takes
  the write lock for each Apply, handlers take the read lock only while
  taking the account snapshot and release it before encoding the
  response. This mirrors the teacher's Handler struct
  (api/handlers.go originally), generalized from a single *sql.DB handle
  to an in-process *engine.Engine plus its own lock (the Engine itself
  has no internal locking — see engine/core.go).
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/warp/ledgerd/engine"
)

// Handler holds the dependencies every admin HTTP handler needs.
type Handler struct {
	mu     *sync.RWMutex
	engine *engine.Engine
}

// NewHandler builds a Handler over engine, guarded by mu. The caller
// (cmd/ledgerd) shares mu with whatever goroutine is feeding events into
// engine.Apply.
func NewHandler(eng *engine.Engine, mu *sync.RWMutex) *Handler {
	return &Handler{mu: mu, engine: eng}
}

// ListAccounts handles GET /api/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	accounts := h.engine.AccountsOrdered()
	h.mu.RUnlock()

	dtos := make([]AccountDTO, 0, len(accounts))
	for _, account := range accounts {
		dto, err := NewAccountDTO(account)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount handles GET /api/accounts/{clientId}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "clientId")
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	clientID := engine.ClientID(id)

	h.mu.RLock()
	account, ok := h.engine.Account(clientID)
	h.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, errUnknownClient(clientID))
		return
	}

	dto, err := NewAccountDTO(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type unknownClientError struct{ clientID engine.ClientID }

func (e unknownClientError) Error() string { return "unknown client " + e.clientID.String() }

func errUnknownClient(clientID engine.ClientID) error { return unknownClientError{clientID} }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorDTO{Error: err.Error()})
}
