//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// stopSignals end a conversion or a --watch session. SIGHUP covers a
// closed terminal while watching.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// notifyContext returns a context canceled on any of stopSignals.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
