package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/ayahfinder/internal/api"
	"github.com/knowledge-engine/ayahfinder/internal/config"
)

func dial(t *testing.T, server *api.Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(server.Router)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req api.LiveRequest) api.LiveResponse {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp api.LiveResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocketSession(t *testing.T) {
	conn := dial(t, setupServer(t, nil))

	resp := roundTrip(t, conn, api.LiveRequest{Type: "search", Query: "الحمد لله"})
	assert.Equal(t, "search", resp.Type)
	assert.NotEmpty(t, resp.Session)
	require.NotNil(t, resp.Search)
	require.NotEmpty(t, resp.Search.Results)
	assert.Equal(t, 2, resp.Search.Results[0].Ayah)
	session := resp.Session

	// Settings before the first focus return no view
	resp = roundTrip(t, conn, api.LiveRequest{Type: "mode", Mode: "both"})
	assert.Equal(t, "mode", resp.Type)
	assert.Nil(t, resp.View)

	resp = roundTrip(t, conn, api.LiveRequest{Type: "focus", Surah: 2, Ayah: 5})
	assert.Equal(t, "focus", resp.Type)
	assert.Equal(t, session, resp.Session)
	require.NotNil(t, resp.View)
	assert.Equal(t, 3, resp.View.Window.Start)
	require.NotNil(t, resp.View.Commentary)

	resp = roundTrip(t, conn, api.LiveRequest{Type: "focus", Surah: 2, Ayah: 6})
	require.NotNil(t, resp.View)
	assert.False(t, resp.View.WindowChanged)
	assert.Nil(t, resp.View.Commentary)

	resp = roundTrip(t, conn, api.LiveRequest{Type: "source", Source: "saadi"})
	require.NotNil(t, resp.View)
	assert.Equal(t, "saadi", resp.View.Source)

	resp = roundTrip(t, conn, api.LiveRequest{Type: "focus", Surah: 7, Ayah: 1})
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Error, "verse not found")

	resp = roundTrip(t, conn, api.LiveRequest{Type: "mode", Mode: "klingon"})
	assert.Equal(t, "error", resp.Type)

	resp = roundTrip(t, conn, api.LiveRequest{Type: "reset"})
	assert.Equal(t, "reset", resp.Type)
	assert.Nil(t, resp.View)

	resp = roundTrip(t, conn, api.LiveRequest{Type: "dance"})
	assert.Equal(t, "error", resp.Type)
}

func TestWebSocketSessionsPerConnection(t *testing.T) {
	server := setupServer(t, nil)
	a, b := dial(t, server), dial(t, server)

	ra := roundTrip(t, a, api.LiveRequest{Type: "focus", Surah: 1, Ayah: 1})
	rb := roundTrip(t, b, api.LiveRequest{Type: "reset"})
	assert.NotEqual(t, ra.Session, rb.Session)
}

func TestWebSocketDisabled(t *testing.T) {
	server := setupServer(t, func(cfg *config.Config) {
		cfg.Server.EnableWebSocket = false
	})

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
