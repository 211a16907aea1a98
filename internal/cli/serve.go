package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/settsim/pkg/adapters/http"
	"github.com/aretw0/settsim/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// startServer serves metrics, status and events on addr until stop is called.
func startServer(addr string, metrics *observability.Metrics, logger *slog.Logger) (*httpAdapter.Server, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	// Event streams hold their connection open; cancelling the base context ends them on stop.
	base, cancelStreams := context.WithCancel(context.Background())
	server := httpAdapter.NewServer(metrics, logger)
	srv := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}

	go func() {
		logger.Info("serving metrics", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	stop := func() {
		cancelStreams()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			_ = srv.Close()
		}
	}
	return server, stop, nil
}
