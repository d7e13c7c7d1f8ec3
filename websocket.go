package main

import (
	"net/http"

	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/johndistasio/ifconfig/websocket"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
)

// WebsocketHandler pushes the JSON listing of the upgrade request to the client, and pushes it again whenever the
// client sends a text message. The listing is captured once, at upgrade time.
type WebsocketHandler struct {
	Builder *conninfo.Builder
	Options *websocket.Options
	Logger  *zap.Logger
}

func (wh *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	span, ctx := opentracing.StartSpanFromContext(r.Context(), "WebsocketHandler.ServeHTTP")
	defer span.Finish()

	body, err := wh.Builder.Build(r).JSON()

	if err != nil {
		ext.LogError(span, err)
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}

	ws, err := websocket.Upgrade(wh.Options, w, r, nil)

	if err != nil {
		// The upgrader has already answered with an error status.
		ext.LogError(span, err)
		return
	}

	defer ws.Close()

	if cs, ok := w.(codeSetter); ok {
		cs.SetCode(http.StatusSwitchingProtocols)
	}

	logger := wh.Logger.With(zap.String("request_id", RequestId(r.Context())))

	if err := ws.Send(ctx, body); err != nil {
		logger.Debug("websocket send", zap.Error(err))
		return
	}

	for {
		msg, err := ws.Receive(ctx)

		if err != nil {
			logger.Debug("websocket receive", zap.Error(err))
			return
		}

		switch msg.Type {
		case websocket.CloseMessage:
			return
		case websocket.TextMessage:
			if err := ws.Send(ctx, body); err != nil {
				logger.Debug("websocket send", zap.Error(err))
				return
			}
		}
	}
}
