package api

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-detector/pkg/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestSocket(t *testing.T, h *Handlers) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(h.WebSocketHandler))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketPing(t *testing.T) {
	conn := dialTestSocket(t, newTestHandlers(stubClassifier{}, ""))

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))

	var reply WSMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "pong", reply.Type)
}

func TestWebSocketDetect(t *testing.T) {
	h := newTestHandlers(stubClassifier{result: models.ClassificationResult{
		Label:       models.LabelHuman,
		Confidence:  0.94,
		Explanation: "all checks passed",
	}}, "")
	conn := dialTestSocket(t, h)

	require.NoError(t, conn.WriteJSON(WSMessage{
		Type:        "detect",
		Language:    "English",
		AudioFormat: "mp3",
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("fake-mp3")),
	}))

	var reply WSMessage
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "result", reply.Type)
	require.NotNil(t, reply.Response)
	assert.Equal(t, "success", reply.Response.Status)
	assert.Equal(t, "English", reply.Response.Language)
	assert.Equal(t, models.LabelHuman, reply.Response.Classification)
	assert.Equal(t, 0.94, reply.Response.ConfidenceScore)
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	conn := dialTestSocket(t, newTestHandlers(stubClassifier{}, ""))

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "detect", Language: "English", AudioFormat: "wav", AudioBase64: "aGk="}))
	var reply WSMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
	assert.Contains(t, reply.Error, "mp3")

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "bogus"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
}
