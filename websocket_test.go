package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func TestWebsocketHandler(t *testing.T) {
	handler := &WebsocketHandler{
		Builder: &conninfo.Builder{
			Canonicalizer: conninfo.NewCanonicalizer(conninfo.DefaultAllowList),
			Fallback:      "127.0.0.1",
		},
		Logger: zap.NewNop(),
	}

	server := httptest.NewServer(AccessLogHandler(zap.NewNop(), handler))
	defer server.Close()

	header := http.Header{}
	header.Set("User-Agent", "wstest/1.0")
	header.Set("Accept-Language", "en-GB")

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, first, err := conn.ReadMessage()
	require.NoError(t, err)

	parsed := gjson.ParseBytes(first)
	assert.Equal(t, "127.0.0.1", parsed.Get("ip_address").String())
	assert.Equal(t, "wstest/1.0", parsed.Get("user-agent").String())
	assert.Equal(t, "en-GB", parsed.Get("accept-language").String())
	assert.Equal(t, "GET", parsed.Get("method").String())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("again")))

	_, second, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestWebsocketHandler_PlainRequest(t *testing.T) {
	handler := &WebsocketHandler{
		Builder: &conninfo.Builder{Canonicalizer: conninfo.NewCanonicalizer(nil), Fallback: "127.0.0.1"},
		Logger:  zap.NewNop(),
	}

	arw := NewAppResponseWriter(httptest.NewRecorder())
	handler.ServeHTTP(arw, httptest.NewRequest("GET", "/ws", nil))

	assert.Equal(t, http.StatusBadRequest, arw.Code())
}
