package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns a context that is cancelled on SIGINT or SIGTERM.
func New() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-signalCh:
		case <-ctx.Done():
		}
		signal.Stop(signalCh)
		cancel()
	}()

	return ctx, cancel
}
