/*
run.go - `ledgerd run <file>`: one-shot CSV replay

PURPOSE:
  Matches the original CLI's behavior exactly: read every row of the
  input CSV, apply each as an Event against a fresh in-memory Engine, and
  print the resulting `client,available,held,total,locked` report to
  stdout. A malformed row or a partner-data error (insufficient funds,
  invalid transaction, duplicate, locked account, invalid event) is
  logged to stderr and does NOT stop the stream; a SystemError does, and
  causes the process to exit non-zero.

EXIT CODES:
  0  every row processed (partner-data errors may have been logged)
  1  could not open/read the input file, a row caused a SystemError, or
     writing the report failed

SEE ALSO:
  - feed/reader.go, feed/writer.go: the CSV <-> Event boundary.
  - engine/core.go: Engine.Apply.
  - engine/errors.go: IsSystemError.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/ledgerd/engine"
	"github.com/warp/ledgerd/feed"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Replay a CSV transaction file and print final account balances",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer file.Close()

	reader, err := feed.NewReader(file)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	eng := engine.New(engine.NewMemoryLedger())
	ctx := context.Background()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading entry: %s\n", err)
			continue
		}

		if err := eng.Apply(ctx, event.Inner()); err != nil {
			if engine.IsSystemError(err) {
				return fmt.Errorf("system error: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Partner Data Error for TxId: %d, ClientId: %d: %s\n",
				event.TransactionID, event.ClientID, err)
		}
	}

	writer, err := feed.NewWriter(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, account := range eng.AccountsOrdered() {
		if err := writer.WriteAccount(account); err != nil {
			return fmt.Errorf("write account %s: %w", account.ClientID, err)
		}
	}
	return writer.Flush()
}
