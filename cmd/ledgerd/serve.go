/*
serve.go - `ledgerd serve`: long-running engine behind the admin HTTP surface

PURPOSE:
  Keeps a single Engine alive for the lifetime of the process. Events
  arrive continuously on stdin in the same CSV shape `run` consumes; the
  read-only admin HTTP surface (see api/) lets an operator inspect
  balances concurrently. This is the shape SPEC_FULL.md's ledger
  interface was built "async-capable" for: the storage backend is swapped
  to ledgersql.Store with --ledger=sqlite without reshaping this command.

FLAGS:
  --addr           HTTP listen address (default ":8080")
  --ledger         "memory" (default) or "sqlite"
  --db             SQLite database path, used only when --ledger=sqlite

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting new HTTP connections, wait up to 10s
  for in-flight requests, then exit. Mirrors the teacher's
  cmd/server/main.go shutdown sequence.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/ledgerd/api"
	"github.com/warp/ledgerd/engine"
	"github.com/warp/ledgerd/feed"
	"github.com/warp/ledgerd/ledgersql"
)

var (
	serveAddr   string
	serveLedger string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep an Engine alive, reading events from stdin, behind an admin HTTP surface",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveLedger, "ledger", "memory", "ledger backend: memory or sqlite")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "ledgerd.db", "SQLite database path (--ledger=sqlite only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ledger, closeLedger, err := openLedger(serveLedger, serveDBPath)
	if err != nil {
		return err
	}
	defer closeLedger()

	var mu sync.RWMutex
	eng := engine.New(ledger)

	handler := api.NewHandler(eng, &mu)
	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         serveAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go ingestStdin(logger, &mu, eng)

	go func() {
		logger.Info("admin surface listening", zap.String("addr", serveAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func openLedger(kind, dbPath string) (engine.Ledger, func(), error) {
	switch kind {
	case "memory":
		return engine.NewMemoryLedger(), func() {}, nil
	case "sqlite":
		store, err := ledgersql.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown --ledger %q (want memory or sqlite)", kind)
	}
}

// ingestStdin streams CSV rows from stdin into eng for the lifetime of the
// process, guarding every Apply with mu so the HTTP handlers never
// observe a half-applied event.
func ingestStdin(logger *zap.Logger, mu *sync.RWMutex, eng *engine.Engine) {
	reader, err := feed.NewReader(bufio.NewReader(os.Stdin))
	if err != nil {
		logger.Error("reading stdin header", zap.Error(err))
		return
	}

	ctx := context.Background()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			logger.Warn("malformed row", zap.Error(err))
			continue
		}

		mu.Lock()
		applyErr := eng.Apply(ctx, event.Inner())
		mu.Unlock()

		if applyErr == nil {
			continue
		}
		if engine.IsSystemError(applyErr) {
			logger.Error("system error, stopping ingestion", zap.Error(applyErr))
			return
		}
		logger.Warn("partner data error",
			zap.Uint32("tx_id", uint32(event.TransactionID)),
			zap.Uint16("client_id", event.ClientID),
			zap.Error(applyErr),
		)
	}
}
