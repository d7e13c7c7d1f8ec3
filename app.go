package main

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/johndistasio/ifconfig/page"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
)

const (
	RouteRoot      = "/"
	RouteAll       = "/all"
	RouteAllJSON   = "/all.json"
	RouteWebsocket = "/ws"
	RouteMetrics   = "/metrics"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

// AppResponseWriter wraps the http.ResponseWriter type and records the response code and size so they can be added
// to traces and logs after child handlers have processed the request.
type AppResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
}

func NewAppResponseWriter(w http.ResponseWriter) *AppResponseWriter {
	return &AppResponseWriter{ResponseWriter: w, code: http.StatusOK}
}

// SetCode is an escape hatch for handlers that take over the connection, e.g. websocket upgrades.
func (w *AppResponseWriter) SetCode(code int) {
	w.code = code

	if inner, ok := w.ResponseWriter.(codeSetter); ok {
		inner.SetCode(code)
	}
}

func (w *AppResponseWriter) Code() int {
	return w.code
}

func (w *AppResponseWriter) Bytes() int {
	return w.bytes
}

// Write implements http.ResponseWriter.
func (w *AppResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// WriteHeader implements http.ResponseWriter and stores the HTTP response code.
func (w *AppResponseWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker, which the websocket upgrade needs.
func (w *AppResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *AppResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type codeSetter interface {
	SetCode(int)
}

// App routes requests to the handlers of the service.
type App struct {
	Config   *Config
	Builder  *conninfo.Builder
	Renderer page.Renderer
	Logger   *zap.Logger

	// Websocket serves RouteWebsocket. Optional.
	Websocket http.Handler

	// Metrics counts requests and serves RouteMetrics. Optional.
	Metrics *Metrics

	routes map[string]http.Handler
}

func NewApp(config *Config, renderer page.Renderer, logger *zap.Logger) *App {
	return &App{
		Config: config,
		Builder: &conninfo.Builder{
			Canonicalizer:  conninfo.NewCanonicalizer(config.Headers),
			TrustForwarded: config.TrustForwarded,
			Fallback:       config.Fallback(),
			VersionHeader:  config.VersionHeader,
		},
		Renderer: renderer,
		Logger:   logger,
	}
}

// Routes builds the routing table. It must be called once optional handlers are set and before serving.
func (a *App) Routes() *App {
	cors := &CORSMiddleware{Origin: "*", Methods: []string{http.MethodGet, http.MethodHead}}

	a.routes = map[string]http.Handler{
		RouteRoot:              getOnly(http.HandlerFunc(a.Index)),
		RouteAll:               getOnly(http.HandlerFunc(a.All)),
		RouteAllJSON:           cors.Handle(http.HandlerFunc(a.AllJSON)),
		"/" + a.Config.CSSFile: getOnly(http.HandlerFunc(a.Stylesheet)),
	}

	if a.Websocket != nil {
		a.routes[RouteWebsocket] = getOnly(a.Websocket)
	}

	if a.Metrics != nil {
		a.routes[RouteMetrics] = getOnly(a.Metrics.Handler())
	}

	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := a.routes[r.URL.Path]

	if !ok {
		http.NotFound(w, r)
		return
	}

	handler.ServeHTTP(w, r)
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IsCLIAgent reports whether the User-Agent belongs to a command line client. A missing User-Agent is a browser.
func IsCLIAgent(userAgent, marker string) bool {
	return marker != "" && strings.Contains(userAgent, marker)
}

// Index answers command line clients with their bare address and everyone else with the full document.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	span, _ := opentracing.StartSpanFromContext(r.Context(), "App.Index")
	defer span.Finish()

	list := a.Builder.Build(r)
	cli := IsCLIAgent(r.UserAgent(), a.Config.CLIAgent)

	span.SetTag("client.cli", cli)

	if cli {
		a.observe(RouteRoot, "cli")

		address, _ := list.Get(conninfo.KeyIPAddress)

		w.Header().Set("Content-Type", contentTypeText)
		_, _ = w.Write([]byte(address + "\n"))
		return
	}

	a.observe(RouteRoot, "browser")

	var buf bytes.Buffer

	if err := a.Renderer.Render(&buf, list, r.Header.Get("Accept-Language")); err != nil {
		ext.LogError(span, err)
		a.Logger.Error("render page", zap.String("request_id", RequestId(r.Context())), zap.Error(err))
		http.Error(w, "render failure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	_, _ = w.Write(buf.Bytes())
}

// All serves the plain-line listing.
func (a *App) All(w http.ResponseWriter, r *http.Request) {
	span, _ := opentracing.StartSpanFromContext(r.Context(), "App.All")
	defer span.Finish()

	a.observe(RouteAll, "api")

	w.Header().Set("Content-Type", contentTypeText)
	_, _ = w.Write([]byte(a.Builder.Build(r).Lines()))
}

// AllJSON serves the listing as a JSON object.
func (a *App) AllJSON(w http.ResponseWriter, r *http.Request) {
	span, _ := opentracing.StartSpanFromContext(r.Context(), "App.AllJSON")
	defer span.Finish()

	a.observe(RouteAllJSON, "api")

	body, err := a.Builder.Build(r).JSON()

	if err != nil {
		ext.LogError(span, err)
		a.Logger.Error("encode header list", zap.String("request_id", RequestId(r.Context())), zap.Error(err))
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	_, _ = w.Write(body)
}

// Stylesheet serves the configured CSS file from disk.
func (a *App) Stylesheet(w http.ResponseWriter, r *http.Request) {
	span, _ := opentracing.StartSpanFromContext(r.Context(), "App.Stylesheet")
	defer span.Finish()

	a.observe("/"+a.Config.CSSFile, "asset")

	http.ServeFile(w, r, filepath.Join(a.Config.ServePath, filepath.FromSlash(a.Config.CSSFile)))
}

func (a *App) observe(route, client string) {
	if a.Metrics != nil {
		a.Metrics.Observe(route, client)
	}
}
