package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huimingz/commitflow/internal/log"
)

// interruptContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop func releases the signal handler.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Debug("Received %s, cancelling", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
