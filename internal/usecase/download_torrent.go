package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

// DownloadTorrent is the entry point of one progressive-playback download.
// It acquires an engine session, registers the source, steers the transfer
// for streaming and delegates to the BufferMonitor. The session is released
// on every exit path.
type DownloadTorrent struct {
	Engine  ports.Engine
	Paths   ports.SavePathProvider
	Monitor *BufferMonitor
	Logger  *slog.Logger

	// OnStarted, if set, fires once a handle exists, before monitoring
	// begins. Used by the manager to key live state by info hash.
	OnStarted func(infoHash string)
}

func (uc *DownloadTorrent) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}

// Execute blocks until the download reaches a terminal outcome (cancelled or
// no media found) or an engine failure propagates. Configuration errors fail
// before any engine interaction.
func (uc *DownloadTorrent) Execute(ctx context.Context, req domain.DownloadRequest, media *domain.MediaFile, obs ports.Observers, cbs ports.Callbacks) (MonitorResult, error) {
	if err := req.Validate(); err != nil {
		return MonitorResult{}, err
	}

	savePath, err := uc.Paths.SavePath(req.MediaKind)
	if err != nil {
		return MonitorResult{}, fmt.Errorf("resolve save path: %w", err)
	}

	// Observers start from a defined zero state before the engine is touched.
	obs.Zero()

	session, err := uc.Engine.NewSession(ctx, ports.SessionConfig{SavePath: savePath})
	if err != nil {
		return MonitorResult{}, fmt.Errorf("create session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			uc.logger().Warn("session close failed", slog.String("error", cerr.Error()))
		}
	}()

	// A magnet URI goes through the engine's parser here; a parse failure is
	// a hard failure of the whole operation, surfaced before any handle
	// exists. The deferred close above still releases the session.
	handle, err := session.AddTorrent(ctx, ports.AddTorrentParams{Source: req.Source})
	if err != nil {
		return MonitorResult{}, fmt.Errorf("add torrent: %w", err)
	}

	handle.SetUploadLimit(req.UploadLimitKBps * 1024)
	handle.SetDownloadLimit(req.DownloadLimitKBps * 1024)
	handle.SetSequentialDownload(true)

	if uc.OnStarted != nil {
		uc.OnStarted(handle.InfoHash())
	}

	uc.logger().Info("download started",
		slog.String("infoHash", handle.InfoHash()),
		slog.String("mediaKind", string(req.MediaKind)),
		slog.String("origin", string(req.Source.Origin())),
		slog.String("savePath", savePath),
	)

	return uc.Monitor.Run(ctx, MonitorInput{
		Session:   session,
		Handle:    handle,
		Request:   req,
		Media:     media,
		SavePath:  savePath,
		Observers: obs,
		Callbacks: cbs,
	})
}
