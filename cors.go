package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/opentracing/opentracing-go"
)

// CORSMiddleware lets browser scripts on other origins read a route.
type CORSMiddleware struct {
	Origin  string
	Headers []string
	Methods []string
}

func (c *CORSMiddleware) Handle(next http.Handler) http.Handler {
	methodsHash := make(map[string]bool)

	methodsHash[http.MethodOptions] = true

	for _, val := range c.Methods {
		methodsHash[strings.ToUpper(val)] = true
	}

	methodsSlice := make([]string, 0, len(methodsHash))

	for method := range methodsHash {
		methodsSlice = append(methodsSlice, method)
	}

	sort.Strings(methodsSlice)

	methodsString := strings.Join(methodsSlice, ", ")

	headersString := strings.Join(c.Headers, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span, ctx := opentracing.StartSpanFromContext(r.Context(), "CORSMiddleware")
		defer span.Finish()

		if headersString != "" {
			w.Header().Set("Access-Control-Allow-Headers", headersString)
			w.Header().Set("Access-Control-Expose-Headers", headersString)
		}

		w.Header().Set("Access-Control-Allow-Methods", methodsString)
		w.Header().Set("Access-Control-Allow-Origin", c.Origin)
		w.Header().Set("Access-Control-Max-Age", "60")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !methodsHash[r.Method] {
			w.Header().Set("Allow", methodsString)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
