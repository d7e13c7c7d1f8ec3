package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/johndistasio/ifconfig/page"
	"github.com/johndistasio/ifconfig/version"
	"github.com/johndistasio/ifconfig/websocket"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	kingpin.FatalIfError(loadEnvFile(".env"), "environment")

	cfg, err := ParseConfig(os.Args[1:])
	kingpin.FatalIfError(err, "configuration")

	logger, err := NewLogger(cfg.Debug)
	kingpin.FatalIfError(err, "logger")

	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("ifconfig stopped", zap.Error(err))
	}
}

func run(cfg *Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, closer, err := NewTracer(cfg.Tracing, logger)

	if err != nil {
		return err
	}

	defer func() { _ = closer.Close() }()

	opentracing.SetGlobalTracer(tracer)

	renderer, err := page.New(page.Options{Stylesheet: cfg.CSSFile, Build: version.String()})

	if err != nil {
		return err
	}

	app := NewApp(cfg, renderer, logger)

	app.Websocket = &WebsocketHandler{
		Builder: app.Builder,
		Options: &websocket.Options{},
		Logger:  logger,
	}

	if cfg.Metrics {
		app.Metrics = NewMetrics()
	}

	listeners, err := Listen(ctx, cfg.Addrs())

	if err != nil {
		return err
	}

	logger.Info("starting",
		zap.String("version", version.String()),
		zap.Strings("headers", app.Builder.Canonicalizer.Names()),
		zap.Bool("trust_forwarded", cfg.TrustForwarded),
	)

	return Serve(ctx, listeners, NewHandler(app.Routes(), tracer, logger), logger)
}
