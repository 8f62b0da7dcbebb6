package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"voice-detector/pkg/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is one frame on the detection socket. A "detect" message carries
// the same fields as the HTTP request; the reply is a "result" carrying the
// same envelope as the HTTP response.
type WSMessage struct {
	Type        string                    `json:"type"`
	Language    string                    `json:"language,omitempty"`
	AudioFormat string                    `json:"audioFormat,omitempty"`
	AudioBase64 string                    `json:"audioBase64,omitempty"`
	Response    *models.DetectionResponse `json:"response,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

// WebSocketHandler serves the streaming variant of voice detection. Each
// message exchange is an independent classification; no state outlives it.
func (h *Handlers) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "detect":
			h.handleDetectMessage(r.Context(), conn, &msg)
		case "ping":
			h.sendMessage(conn, WSMessage{Type: "pong"})
		default:
			h.sendMessage(conn, WSMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

func (h *Handlers) handleDetectMessage(ctx context.Context, conn *websocket.Conn, msg *WSMessage) {
	if msg.Language == "" || msg.AudioBase64 == "" {
		h.sendMessage(conn, WSMessage{Type: "error", Error: "language and audioBase64 are required"})
		return
	}
	if !strings.EqualFold(msg.AudioFormat, SupportedFormat) {
		h.sendMessage(conn, WSMessage{Type: "error", Error: invalidFormatDetail})
		return
	}

	payload, err := base64.StdEncoding.DecodeString(msg.AudioBase64)
	if err != nil {
		h.sendMessage(conn, WSMessage{Type: "error", Error: "audioBase64 is not valid base64 data"})
		return
	}

	classifyCtx, cancel := context.WithTimeout(ctx, h.cfg.Pipeline.ProcessingTimeout)
	defer cancel()

	result, err := h.classifier.Classify(classifyCtx, payload)
	switch {
	case err == nil:
		response := envelope("success", msg.Language, result)
		h.sendMessage(conn, WSMessage{Type: "result", Response: &response})
	case isDecodeError(err):
		response := envelope("error", msg.Language, result)
		h.sendMessage(conn, WSMessage{Type: "result", Response: &response})
	default:
		h.logger.Warn("websocket classification failed", zap.Error(err))
		h.sendMessage(conn, WSMessage{Type: "error", Error: err.Error()})
	}
}

func (h *Handlers) sendMessage(conn *websocket.Conn, msg WSMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
	}
}
