package filter

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// HandleSignals requests a stop on the first SIGINT or SIGTERM. The handle
// close runs on this goroutine, not inside a signal context.
func HandleSignals(state *RunState, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info("stop signal received", "signal", sig.String())
		state.Stop()
	}()
}
