package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/johndistasio/ifconfig/version"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ServerHeader stamps every response with the name and version of the service.
func ServerHeader(next http.Handler) http.Handler {
	value := "ifconfig/" + version.Current().Short()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", value)
		next.ServeHTTP(w, r)
	})
}

// NewHandler wraps the app in the middleware every route shares. Tracing is outermost so that the access log and the
// request id see the server span.
func NewHandler(app http.Handler, tracer opentracing.Tracer, logger *zap.Logger) http.Handler {
	ids := &RequestIDHandler{
		CreateRequestId:   GenerateRequestId,
		ValidateRequestId: ParseRequestId,
	}

	return TraceHandler(tracer, AccessLogHandler(logger, ids.Handle(ServerHeader(app))))
}

// Listen opens every configured address before anything is served, so a bad bind fails startup as a whole.
func Listen(ctx context.Context, addrs []string) ([]net.Listener, error) {
	var lc net.ListenConfig
	var listeners []net.Listener

	for _, addr := range addrs {
		l, err := lc.Listen(ctx, "tcp", addr)

		if err != nil {
			for _, opened := range listeners {
				_ = opened.Close()
			}

			return nil, errors.Wrapf(err, "listen on %s", addr)
		}

		listeners = append(listeners, l)
	}

	return listeners, nil
}

// Serve runs one HTTP server per listener until ctx is canceled or a server fails, then shuts all of them down.
func Serve(ctx context.Context, listeners []net.Listener, handler http.Handler, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, l := range listeners {
		l := l

		srv := &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          zap.NewStdLog(logger),
		}

		g.Go(func() error {
			logger.Info("listening", zap.String("addr", l.Addr().String()))

			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "serve %s", l.Addr())
			}

			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown", zap.String("addr", l.Addr().String()), zap.Error(err))
			}

			return nil
		})
	}

	return g.Wait()
}
