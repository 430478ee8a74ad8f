package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start binds the HTTP listener and returns a channel that is closed once a
// termination signal arrives or the server stops on its own. A bind failure is
// fatal.
func (a *App) Start() <-chan struct{} {
	l, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		slog.Error("failed to bind http listener", "address", a.httpServer.Addr, "error", err)
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	served := a.Serve(l)
	slog.Info("dashboard listening", "address", l.Addr().String())

	terminateChan := make(chan struct{})
	go func() {
		defer close(terminateChan)
		defer stop()

		select {
		case <-sigCtx.Done():
			slog.Info("termination signal received, shutting down")
		case err := <-served:
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server stopped unexpectedly", "error", err)
			}
		}
	}()

	return terminateChan
}

// Serve runs the HTTP server on l. The channel yields the serve error once.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()
	return errChan
}

// Stop stops accepting requests, drains in-flight audit publishes and then
// closes resources in reverse order of creation.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shut down http server", "error", err)
	}

	slog.InfoContext(ctx, "draining background tasks")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "some background tasks failed", "error", err)
	}

	// Canceled only after the drain so pending publishes keep their clients.
	if a.cancel != nil {
		a.cancel()
	}

	a.closeAll(ctx)
}
