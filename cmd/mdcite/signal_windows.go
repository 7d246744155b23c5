//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// stopSignals end a conversion or a --watch session. Windows only
// delivers os.Interrupt.
var stopSignals = []os.Signal{os.Interrupt}

// notifyContext returns a context canceled on any of stopSignals.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
