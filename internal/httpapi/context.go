package httpapi

import (
	"context"
	"errors"
	"time"
)

// errShuttingDown is the cancellation cause of requests cut short by
// server shutdown.
var errShuttingDown = errors.New("server shutting down")

// serverBaseCtx ends when the server starts shutting down.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level context whose end cancels in-flight
// decodes. nil resets it to context.Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// withShutdown derives a context from req that is also canceled, with cause
// errShuttingDown, once the server base context ends.
func withShutdown(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(req)
	stop := context.AfterFunc(serverBaseCtx, func() { cancel(errShuttingDown) })
	return ctx, func() {
		stop()
		cancel(nil)
	}
}

// decodeContext bounds a decode request by the client, server shutdown and
// the configured decode timeout.
func decodeContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := withShutdown(req)
	sec := decodeTimeout.Load()
	if sec <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, time.Duration(sec)*time.Second)
	return tctx, func() {
		tcancel()
		cancel()
	}
}
