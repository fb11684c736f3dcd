package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"playstream/internal/domain"
)

type DownloadManager interface {
	Start(ctx context.Context, req domain.DownloadRequest) (domain.DownloadState, error)
	Cancel(id string) error
	Get(id string) (domain.DownloadState, error)
	States() []domain.DownloadState
}

type HistoryStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error)
}

type Server struct {
	manager        DownloadManager
	history        HistoryStore
	historyLimit   int
	allowedOrigins []string
	rateLimitRPS   float64
	rateLimitBurst int
	logger         *slog.Logger
	handler        http.Handler
	wsHub          *wsHub
}

type ServerOption func(*Server)

func WithHistory(store HistoryStore) ServerOption {
	return func(s *Server) {
		s.history = store
	}
}

// WithHistoryLimit sets the default page size for /api/history.
func WithHistoryLimit(limit int) ServerOption {
	return func(s *Server) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted (development mode).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps > 0 {
			s.rateLimitRPS = rps
		}
		if burst > 0 {
			s.rateLimitBurst = burst
		}
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(manager DownloadManager, opts ...ServerOption) *Server {
	s := &Server{
		manager:        manager,
		historyLimit:   20,
		rateLimitRPS:   20,
		rateLimitBurst: 40,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/downloads", s.handleDownloads)
	mux.HandleFunc("/api/downloads/", s.handleDownloadByID)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "playstream",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)
	s.handler = recoveryMiddleware(s.logger,
		rateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst,
			metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}

// BroadcastStates sends the active download states to all WebSocket clients.
func (s *Server) BroadcastStates(states []domain.DownloadState) {
	if s.wsHub != nil {
		s.wsHub.BroadcastStates(states)
	}
}

// BroadcastNotification pushes a business event (such as "no media found")
// to all WebSocket clients.
func (s *Server) BroadcastNotification(n domain.Notification) {
	if s.wsHub != nil {
		s.wsHub.Broadcast("notification", n)
	}
}

// Progress forwards playback progress to WebSocket clients. Satisfies the
// monitor's playback feed.
func (s *Server) Progress(infoHash string, percent float64) {
	if s.wsHub != nil {
		s.wsHub.Progress(infoHash, percent)
	}
}

func (s *Server) handleDownloads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.manager.States())
	case http.MethodPost:
		s.handleStartDownload(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStartDownload(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "application/json":
		s.handleStartDownloadJSON(w, r)
	case "multipart/form-data":
		s.handleStartDownloadMultipart(w, r)
	default:
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported content type")
	}
}

type startDownloadJSON struct {
	Magnet            string `json:"magnet"`
	MediaKind         string `json:"mediaKind"`
	UploadLimitKBps   int64  `json:"uploadLimitKBps"`
	DownloadLimitKBps int64  `json:"downloadLimitKBps"`
}

func (s *Server) handleStartDownloadJSON(w http.ResponseWriter, r *http.Request) {
	var body startDownloadJSON
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	req := domain.DownloadRequest{
		Source:            domain.TorrentSource{Magnet: strings.TrimSpace(body.Magnet)},
		MediaKind:         parseMediaKind(body.MediaKind),
		UploadLimitKBps:   body.UploadLimitKBps,
		DownloadLimitKBps: body.DownloadLimitKBps,
	}

	state, err := s.manager.Start(r.Context(), req)
	if err != nil {
		writeStartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleStartDownloadMultipart(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 5 << 20 // .torrent files are small
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("torrent")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing torrent file")
		return
	}
	defer file.Close()

	path, err := saveUploadedFile(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to store torrent file")
		return
	}

	upload, err := parsePositiveInt(r.FormValue("uploadLimitKBps"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid uploadLimitKBps")
		return
	}
	download, err := parsePositiveInt(r.FormValue("downloadLimitKBps"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid downloadLimitKBps")
		return
	}

	req := domain.DownloadRequest{
		Source:    domain.TorrentSource{TorrentPath: path},
		MediaKind: parseMediaKind(r.FormValue("mediaKind")),
	}
	if upload > 0 {
		req.UploadLimitKBps = int64(upload)
	}
	if download > 0 {
		req.DownloadLimitKBps = int64(download)
	}

	state, err := s.manager.Start(r.Context(), req)
	if err != nil {
		writeStartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleDownloadByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/downloads/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		state, err := s.manager.Get(id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found", "download not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, state)
	case http.MethodDelete:
		if err := s.manager.Cancel(id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found", "download not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "history not configured")
		return
	}

	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	if limit <= 0 {
		limit = s.historyLimit
	}

	records, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.wsHub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &wsClient{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.wsHub.register <- client
	go client.writePump()
	go client.readPump()
}
