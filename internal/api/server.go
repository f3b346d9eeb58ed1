package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/ayahfinder/internal/commentary"
	"github.com/knowledge-engine/ayahfinder/internal/engine"
	"github.com/knowledge-engine/ayahfinder/internal/search"
)

type Server struct {
	Engine   *engine.Engine
	Logger   *logrus.Entry
	Router   *http.ServeMux
	Sessions *SessionStore

	started time.Time
	http    *http.Server
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) (*Server, error) {
	sessions, err := NewSessionStore(eng, eng.Config.Server.MaxSessions)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:   eng,
		Logger:   logger.WithField("component", "api"),
		Router:   http.NewServeMux(),
		Sessions: sessions,
		started:  time.Now(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Router.HandleFunc("GET /api/v1/search", s.handleSearch)
	s.Router.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	s.Router.HandleFunc("POST /api/v1/sessions/{id}/focus", s.handleFocus)
	s.Router.HandleFunc("DELETE /api/v1/sessions/{id}/focus", s.handleReset)
	s.Router.HandleFunc("PUT /api/v1/sessions/{id}/source", s.handleSelectSource)
	s.Router.HandleFunc("PUT /api/v1/sessions/{id}/mode", s.handleSelectMode)
	s.Router.HandleFunc("GET /api/v1/sources", s.handleSources)
	s.Router.HandleFunc("GET /api/v1/surahs/resolve", s.handleResolveSurah)
	s.Router.HandleFunc("GET /api/v1/status", s.handleStatus)
	if s.Engine.Config.Server.EnableWebSocket {
		s.Router.HandleFunc("GET /api/v1/ws", s.handleWebSocket)
	}
}

// Start serves the API until Shutdown is called.
func (s *Server) Start(addr string) error {
	cfg := s.Engine.Config.Server
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	s.Logger.Infof("Starting API Server on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Results []SearchResultView `json:"results"`
}

type SearchResultView struct {
	Surah     int     `json:"surah"`
	SurahName string  `json:"surah_name"`
	Ayah      int     `json:"ayah"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

type SessionResponse struct {
	ID     string             `json:"id"`
	Source string             `json:"source,omitempty"`
	Mode   engine.DisplayMode `json:"mode"`
}

type StatusResponse struct {
	Surahs      int                  `json:"surahs"`
	Verses      int                  `json:"verses"`
	Commentary  int                  `json:"commentary_sources"`
	Translation bool                 `json:"translation"`
	Sessions    int                  `json:"sessions"`
	Datasets    []engine.DatasetInfo `json:"datasets"`
	LoadedAt    time.Time            `json:"loaded_at"`
	Uptime      string               `json:"uptime"`
}

type SourcesResponse struct {
	Sources []commentary.SourceStatus `json:"sources"`
}

type focusRequest struct {
	Surah int `json:"surah"`
	Ayah  int `json:"ayah"`
}

type sourceRequest struct {
	Source string `json:"source"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// Handlers

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}

	jsonResponse(w, http.StatusOK, s.searchResponse(query))
}

func (s *Server) searchResponse(query string) SearchResponse {
	hits := s.Engine.Search(query)
	catalog := s.Engine.Catalog()

	response := SearchResponse{
		Query:   query,
		Count:   len(hits),
		Results: make([]SearchResultView, len(hits)),
	}
	for i, hit := range hits {
		response.Results[i] = resultView(hit, catalog.Name(hit.Record.Surah))
	}
	return response
}

func resultView(hit search.SearchResult, surahName string) SearchResultView {
	return SearchResultView{
		Surah:     hit.Record.Surah,
		SurahName: surahName,
		Ayah:      hit.Record.Ayah,
		Text:      hit.Record.Text,
		Score:     hit.Score,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	h := s.Sessions.Create()

	var resp SessionResponse
	h.Do(func(sess *engine.Session) {
		resp = SessionResponse{ID: sess.ID, Source: sess.Source(), Mode: sess.Mode()}
	})

	s.Logger.WithField("session", resp.ID).Debug("Session created")
	jsonResponse(w, http.StatusCreated, resp)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

	var req focusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	var (
		view *engine.View
		err  error
	)
	h.Do(func(sess *engine.Session) {
		view, err = sess.Focus(req.Surah, req.Ayah)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}
	h.Do(func(sess *engine.Session) {
		sess.Reset()
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectSource(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}
	if req.Source == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "source is required"})
		return
	}

	view, err := h.Apply(func(sess *engine.Session) error {
		sess.SelectCommentarySource(req.Source)
		return nil
	})
	s.writeSelection(w, h, view, err)
}

func (s *Server) handleSelectMode(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	view, err := h.Apply(func(sess *engine.Session) error {
		return sess.SelectDisplayMode(req.Mode)
	})
	s.writeSelection(w, h, view, err)
}

// writeSelection returns the refreshed view when the session has a focus,
// otherwise the session settings.
func (s *Server) writeSelection(w http.ResponseWriter, h *SessionHandle, view *engine.View, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if view != nil {
		jsonResponse(w, http.StatusOK, view)
		return
	}

	var resp SessionResponse
	h.Do(func(sess *engine.Session) {
		resp = SessionResponse{ID: sess.ID, Source: sess.Source(), Mode: sess.Mode()}
	})
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, SourcesResponse{Sources: s.Engine.Sources()})
}

func (s *Server) handleResolveSurah(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'name' is required"})
		return
	}

	meta, ok := s.Engine.ResolveSurah(name)
	if !ok {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "no matching surah"})
		return
	}
	jsonResponse(w, http.StatusOK, meta)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Engine.Stats

	jsonResponse(w, http.StatusOK, StatusResponse{
		Surahs:      stats.Surahs,
		Verses:      stats.Verses,
		Commentary:  len(s.Engine.Commentary.Available()),
		Translation: s.Engine.Translation() != nil,
		Sessions:    s.Sessions.Len(),
		Datasets:    s.Engine.Datasets(),
		LoadedAt:    stats.LoadedAt,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*SessionHandle, bool) {
	h, ok := s.Sessions.Get(r.PathValue("id"))
	if !ok {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return nil, false
	}
	return h, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrVerseNotFound):
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrInvalidDisplayMode):
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
