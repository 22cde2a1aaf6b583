// Command pagescan pages through an Oracle table in fixed-size batches and
// writes the rows as JSON lines.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openOracle).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
