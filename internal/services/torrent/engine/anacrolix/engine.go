package anacrolix

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anacrolix/torrent"
	"golang.org/x/time/rate"

	"playstream/internal/domain/ports"
)

// Engine creates one anacrolix client per download session. Each session is
// exclusively owned by its orchestrator call, so transfer limits can live on
// the client's rate limiters without per-torrent bookkeeping.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

type Config struct {
	// ListenPort 0 lets the client pick a free port, which is what we want
	// when several sessions coexist in one process.
	ListenPort int
	// DisableSeeding stops uploading once a download session is only used
	// for playback.
	DisableSeeding bool
}

func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

func (e *Engine) NewSession(ctx context.Context, scfg ports.SessionConfig) (ports.Session, error) {
	clientConfig := torrent.NewDefaultClientConfig()
	clientConfig.DataDir = scfg.SavePath
	clientConfig.ListenPort = e.cfg.ListenPort
	clientConfig.Seed = !e.cfg.DisableSeeding

	// Limiters start unlimited; the handle adjusts them when the caller
	// applies transfer limits.
	upLimiter := rate.NewLimiter(rate.Inf, 0)
	downLimiter := rate.NewLimiter(rate.Inf, 0)
	clientConfig.UploadRateLimiter = upLimiter
	clientConfig.DownloadRateLimiter = downLimiter

	client, err := torrent.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create torrent client: %w", err)
	}

	e.logger.Debug("torrent session created", slog.String("savePath", scfg.SavePath))

	return &Session{
		client:      client,
		upLimiter:   upLimiter,
		downLimiter: downLimiter,
		logger:      e.logger,
	}, nil
}
