package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/ayahfinder/internal/engine"
)

const (
	wsIdleTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
	wsMaxMessage   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveRequest is a client message on the live session socket.
type LiveRequest struct {
	Type   string `json:"type"` // "search", "focus", "source", "mode", "reset"
	Query  string `json:"query,omitempty"`
	Surah  int    `json:"surah,omitempty"`
	Ayah   int    `json:"ayah,omitempty"`
	Source string `json:"source,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// LiveResponse answers one LiveRequest. Type echoes the request type, or is
// "error".
type LiveResponse struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Search  *SearchResponse `json:"search,omitempty"`
	View    *engine.View    `json:"view,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// handleWebSocket serves one session per connection. Requests are handled in
// order and each gets exactly one response.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sess := s.Engine.NewSession()
	log := s.Logger.WithField("session", sess.ID)
	log.Debug("Live session opened")

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	})

	for {
		var req LiveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Live session closed unexpectedly")
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		resp := s.live(sess, req)
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Warn("Live session write failed")
			break
		}
	}

	log.Debug("Live session closed")
}

func (s *Server) live(sess *engine.Session, req LiveRequest) LiveResponse {
	resp := LiveResponse{Type: req.Type, Session: sess.ID}

	var err error
	switch req.Type {
	case "search":
		result := s.searchResponse(req.Query)
		resp.Search = &result
	case "focus":
		resp.View, err = sess.Focus(req.Surah, req.Ayah)
	case "source":
		sess.SelectCommentarySource(req.Source)
		resp.View, err = refresh(sess)
	case "mode":
		if err = sess.SelectDisplayMode(req.Mode); err == nil {
			resp.View, err = refresh(sess)
		}
	case "reset":
		sess.Reset()
	default:
		err = errors.New("unknown message type")
	}

	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"session": sess.ID,
			"type":    req.Type,
		}).WithError(err).Debug("Live request rejected")
		return LiveResponse{Type: "error", Session: sess.ID, Error: err.Error()}
	}
	return resp
}

// refresh returns nil without error when nothing is focused yet.
func refresh(sess *engine.Session) (*engine.View, error) {
	view, err := sess.Refresh()
	if errors.Is(err, engine.ErrNoFocus) {
		return nil, nil
	}
	return view, err
}
