package main

import (
	"io"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"github.com/uber/jaeger-lib/metrics"
	"go.uber.org/zap"
)

const serviceName = "ifconfig"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewTracer returns a Jaeger tracer configured from the JAEGER_* environment when tracing is enabled and a no-op
// tracer otherwise. The closer flushes buffered spans.
func NewTracer(enabled bool, logger *zap.Logger) (opentracing.Tracer, io.Closer, error) {
	if !enabled {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}

	cfg, err := jaegercfg.FromEnv()

	if err != nil {
		return nil, nil, errors.Wrap(err, "read jaeger environment")
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	if cfg.Sampler == nil {
		cfg.Sampler = &jaegercfg.SamplerConfig{}
	}

	if cfg.Sampler.Type == "" {
		cfg.Sampler.Type = jaeger.SamplerTypeConst
		cfg.Sampler.Param = 1
	}

	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerzap.NewLogger(logger)),
		jaegercfg.Metrics(metrics.NullFactory),
	)

	if err != nil {
		return nil, nil, errors.Wrap(err, "create jaeger tracer")
	}

	return tracer, closer, nil
}

// TraceHandler starts a server span for every request, named after the method and the route.
func TraceHandler(tracer opentracing.Tracer, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spanCtx, _ := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(r.Header))

		span := tracer.StartSpan(r.Method+" "+r.URL.Path, ext.RPCServerOption(spanCtx))
		ctx := opentracing.ContextWithSpan(r.Context(), span)
		defer span.Finish()

		ext.HTTPUrl.Set(span, r.URL.String())
		ext.HTTPMethod.Set(span, r.Method)
		ext.PeerAddress.Set(span, r.RemoteAddr)

		trw := NewAppResponseWriter(w)

		handler.ServeHTTP(trw, r.WithContext(ctx))

		ext.HTTPStatusCode.Set(span, uint16(trw.Code()))

		if trw.Code() >= http.StatusInternalServerError {
			ext.Error.Set(span, true)
		}
	})
}
