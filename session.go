package main

import (
	"context"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/segmentio/ksuid"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

func GenerateRequestId(ctx context.Context) string {
	span, _ := opentracing.StartSpanFromContext(ctx, "GenerateRequestId")
	defer span.Finish()

	id, err := ksuid.NewRandom()

	if err != nil {
		ext.LogError(span, err)
		return ""
	}

	return id.String()
}

func ParseRequestId(ctx context.Context, id string) bool {
	span, _ := opentracing.StartSpanFromContext(ctx, "ParseRequestId")
	defer span.Finish()

	_, err := ksuid.Parse(id)

	return err == nil
}

// RequestId returns the id RequestIDHandler attached to ctx.
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type CreateRequestIdFunc func(context.Context) string

type ValidateRequestIdFunc func(context.Context, string) bool

// RequestIDHandler is HTTP middleware that tags every request and response with an id. A well formed id sent by an
// upstream proxy is kept so log lines can be correlated across hops.
type RequestIDHandler struct {
	// CreateRequestId is a function that generates a new request ID.
	CreateRequestId CreateRequestIdFunc

	// ValidateRequestId is a function that determines if a given request ID is valid.
	ValidateRequestId ValidateRequestIdFunc
}

func (h *RequestIDHandler) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.Header.Get(RequestIDHeader)

		if id == "" || !h.ValidateRequestId(ctx, id) {
			id = h.CreateRequestId(ctx)
		}

		if span := opentracing.SpanFromContext(ctx); span != nil {
			span.SetTag("request.id", id)
		}

		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, requestIDKey{}, id)))
	})
}
