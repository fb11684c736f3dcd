package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "playstream/internal/api/http"
	"playstream/internal/app"
	"playstream/internal/domain"
	"playstream/internal/domain/ports"
	"playstream/internal/library"
	"playstream/internal/metrics"
	"playstream/internal/notify"
	mongorepo "playstream/internal/repository/mongo"
	"playstream/internal/services/torrent/engine/anacrolix"
	"playstream/internal/telemetry"
	"playstream/internal/usecase"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "playstream", telemetry.Config{
		Endpoint:   cfg.OTELEndpoint,
		SampleRate: cfg.OTELSampleRate,
	})
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "playstream"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("moviesDir", cfg.MoviesDir),
		slog.String("showsDir", cfg.ShowsDir),
		slog.Int64("monitorTickMs", cfg.MonitorTickMS),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoOpts := otelmongo.NewMonitor()
	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(mongoOpts))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	historyRepo := mongorepo.NewHistoryRepository(mongoClient, cfg.MongoDatabase, cfg.MongoCollection)
	if err := historyRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}

	paths, err := library.NewPaths(cfg.MoviesDir, cfg.ShowsDir)
	if err != nil {
		logger.Error("library paths init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	engine := anacrolix.New(anacrolix.Config{
		ListenPort:     cfg.TorrentListenPort,
		DisableSeeding: cfg.DisableSeeding,
	}, logger)

	manager := &usecase.Manager{
		Engine:  engine,
		Paths:   paths,
		History: &instrumentedHistory{next: historyRepo},
		Logger:  logger,
		OnBuffered: func(elapsed time.Duration) {
			metrics.BufferingDuration.Observe(elapsed.Seconds())
		},
	}

	handler := apihttp.NewServer(manager,
		apihttp.WithLogger(logger),
		apihttp.WithHistory(historyRepo),
		apihttp.WithHistoryLimit(cfg.HistoryLimit),
		apihttp.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		apihttp.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	manager.Monitor = &usecase.BufferMonitor{
		Resolver: &library.DiskResolver{},
		Notifier: notify.Fanout{
			&notify.LogSink{Logger: logger},
			&wsNotificationSink{server: handler},
		},
		Playback: handler,
		Thresholds: domain.BufferingThresholds{
			Movie:   cfg.MovieBufferPct,
			Show:    cfg.ShowBufferPct,
			Default: cfg.DefaultBufferPct,
		},
		Logger:       logger,
		TickInterval: time.Duration(cfg.MonitorTickMS) * time.Millisecond,
	}

	// Periodically update Prometheus gauges and push states to WebSocket clients.
	go updateDownloadMetrics(rootCtx, manager, handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	manager.CancelAll()
	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// instrumentedHistory counts terminal outcomes before persisting them.
type instrumentedHistory struct {
	next ports.DownloadHistory
}

func (h *instrumentedHistory) Record(ctx context.Context, rec domain.DownloadRecord) error {
	metrics.DownloadsFinishedTotal.WithLabelValues(string(rec.Outcome)).Inc()
	if rec.Outcome == domain.OutcomeNoMedia {
		metrics.NoMediaTotal.WithLabelValues(string(rec.Origin)).Inc()
	}
	return h.next.Record(ctx, rec)
}

func (h *instrumentedHistory) ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error) {
	return h.next.ListRecent(ctx, limit)
}

// wsNotificationSink forwards business notifications to WebSocket clients.
type wsNotificationSink struct {
	server *apihttp.Server
}

func (s *wsNotificationSink) Publish(_ context.Context, n domain.Notification) {
	s.server.BroadcastNotification(n)
}

func updateDownloadMetrics(ctx context.Context, manager *usecase.Manager, handler *apihttp.Server) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			states := manager.States()
			metrics.ActiveDownloads.Set(float64(len(states)))

			var dlKBps, ulKBps float64
			var seeds, peers, buffered int
			for _, state := range states {
				dlKBps += state.DownloadRateKBps
				ulKBps += state.UploadRateKBps
				seeds += state.Seeds
				peers += state.Peers
				if state.Buffered {
					buffered++
				}
			}
			metrics.DownloadSpeedBytes.Set(dlKBps * 1024)
			metrics.UploadSpeedBytes.Set(ulKBps * 1024)
			metrics.SeedsConnected.Set(float64(seeds))
			metrics.PeersConnected.Set(float64(peers))
			metrics.BufferedDownloads.Set(float64(buffered))

			handler.BroadcastStates(states)
		}
	}
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
