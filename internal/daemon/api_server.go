package daemon

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"turnstile/internal/api"
	"turnstile/internal/config"
	"turnstile/internal/logging"
	"turnstile/internal/queue"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/stations/", authMiddleware(token, srv.handleStation))
	mux.HandleFunc("/api/announcement", authMiddleware(token, srv.handleAnnouncement))
	mux.HandleFunc("/api/reset", authMiddleware(token, srv.handleReset))
	mux.HandleFunc("/api/export", authMiddleware(token, srv.handleExport))
	mux.HandleFunc("/api/events", authMiddleware(token, srv.handleEvents))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	engine := s.daemon.Engine()
	summary := engine.Summarize()
	payload := api.StatusResponse{
		Stations:     api.FromStationStatuses(engine.Status()),
		Announcement: summary.Announcement,
		TotalServed:  summary.TotalServed,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleStation dispatches /api/stations/{station}/{action} where action is
// tickets, call, or recall.
func (s *apiServer) handleStation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/stations/")
	station, action, ok := strings.Cut(rest, "/")
	if !ok || station == "" || strings.Contains(action, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	engine := s.daemon.Engine()
	switch action {
	case "tickets":
		ticket, err := engine.Enqueue(r.Context(), station)
		if err != nil {
			s.writeQueueError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.TicketResponse{Number: ticket.Number})
	case "call":
		ticket, err := engine.CallNext(r.Context(), station)
		if err != nil {
			s.writeQueueError(w, err)
			return
		}
		payload := api.CallResponse{}
		if ticket != nil {
			number := ticket.Number
			payload.Current = &number
		}
		s.writeJSON(w, http.StatusOK, payload)
	case "recall":
		ticket, err := engine.Recall(r.Context(), station)
		if err != nil {
			s.writeQueueError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.RecallResponse{LastNumber: ticket.Number})
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleAnnouncement(w http.ResponseWriter, r *http.Request) {
	engine := s.daemon.Engine()
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.AnnouncementResponse{Announcement: engine.Announcement()})
	case http.MethodPut:
		var req api.AnnouncementResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		engine.SetAnnouncement(r.Context(), req.Announcement)
		s.writeJSON(w, http.StatusOK, api.AnnouncementResponse{Announcement: engine.Announcement()})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.Engine().ResetAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows, err := s.daemon.Engine().ExportWaiting()
	if err != nil {
		s.writeQueueError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="waiting.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"Service", "Number"})
	for _, row := range rows {
		_ = writer.Write([]string{row.Service, row.Number})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		s.log().Error("failed to write export", logging.Error(err))
	}
}

// handleEvents serves the broadcast stream as a long-poll endpoint. Clients
// pass since=<cursor> to resume, follow=1 to block for new messages, and
// tail=1 to fetch only the most recent lines.
func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	hub := s.daemon.Hub()

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")

	if tail && since == 0 && !follow {
		messages, next := hub.Tail(limit)
		s.writeJSON(w, http.StatusOK, api.EventsResponse{Events: api.FromMessages(messages), Next: next})
		return
	}

	messages, next, err := hub.Fetch(r.Context(), since, limit, follow)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.EventsResponse{Events: api.FromMessages(messages), Next: next})
}

func (s *apiServer) writeQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, queue.ErrUnknownStation):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, queue.ErrNothingToRecall):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, queue.ErrNoDataToExport):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
