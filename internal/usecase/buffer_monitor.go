package usecase

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

const defaultTickInterval = time.Second

// fileSelection is built incrementally across ticks until both the file index
// and the on-disk path are resolved; immutable thereafter.
type fileSelection struct {
	index     int
	path      string
	maxSize   int64
	totalSize int64 // torrent total minus every deprioritized file
}

// MonitorInput bundles the per-download collaborators the monitor drives.
type MonitorInput struct {
	Session   ports.Session
	Handle    ports.Handle
	Request   domain.DownloadRequest
	Media     *domain.MediaFile
	SavePath  string
	Observers ports.Observers
	Callbacks ports.Callbacks
}

// MonitorResult is the terminal outcome of one monitoring loop.
type MonitorResult struct {
	Outcome  domain.DownloadOutcome
	InfoHash string
	Name     string
	Progress float64
	FilePath string
}

// BufferMonitor owns the polling state machine of one progressive-playback
// download: file selection, priority assignment, progress/rate/ETA reporting,
// the buffered transition and cancellation teardown. One instance is safe for
// concurrent Run calls; all mutable state lives on the stack of Run.
type BufferMonitor struct {
	Resolver   ports.PathResolver
	Notifier   ports.NotificationSink
	Playback   ports.PlaybackFeed
	Thresholds domain.BufferingThresholds
	Logger     *slog.Logger

	// TickInterval and Now are injectable for tests; zero values mean
	// one-second ticks on the wall clock.
	TickInterval time.Duration
	Now          func() time.Time
}

func (m *BufferMonitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *BufferMonitor) tickInterval() time.Duration {
	if m.TickInterval > 0 {
		return m.TickInterval
	}
	return defaultTickInterval
}

func (m *BufferMonitor) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// Run polls the handle once per tick until the download is cancelled or the
// torrent turns out to contain no playable media. There is no terminal
// success state: once buffered the loop keeps feeding observers so playback
// stays supplied with data. Engine failures are returned to the orchestrator,
// which releases the session.
func (m *BufferMonitor) Run(ctx context.Context, in MonitorInput) (MonitorResult, error) {
	start := m.now()
	threshold := m.Thresholds.For(in.Request.MediaKind)
	infoHash := in.Handle.InfoHash()

	sel := fileSelection{index: -1}
	buffered := false
	progress := 0.0
	name := ""

	ticker := time.NewTicker(m.tickInterval())
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return m.finishCancelled(in, infoHash, name, buffered, progress, sel), nil
		}

		status := in.Handle.Status()
		if status.HasMetadata {
			manifest, ok := in.Handle.Manifest()
			if ok {
				name = manifest.Name
				if len(manifest.Files) == 0 {
					return m.finishNoMedia(ctx, in, infoHash, name, progress), nil
				}
				if sel.index < 0 {
					m.applySelection(in.Handle, manifest, &sel)
					if sel.maxSize <= 0 {
						// Only zero-length files: nothing can ever stream.
						return m.finishNoMedia(ctx, in, infoHash, name, progress), nil
					}
				}
				if sel.index >= 0 && sel.path == "" {
					candidate := filepath.Join(in.SavePath, filepath.FromSlash(manifest.Files[sel.index].Path))
					if usable := m.Resolver.Resolve(candidate); usable != "" {
						sel.path = usable
					}
				}
			}

			if sel.index >= 0 {
				bytesDone := in.Handle.FileBytesCompleted(sel.index)
				progress = ProgressPercent(bytesDone, sel.totalSize)
				elapsed := m.now().Sub(start)

				in.Observers.ReportProgress(progress)
				in.Observers.ReportBandwidth(bandwidthSample(status, elapsed, bytesDone, sel.totalSize))
				in.Observers.ReportSeeds(status.Seeds)
				in.Observers.ReportPeers(status.Peers)

				if buffered && m.Playback != nil {
					m.Playback.Progress(infoHash, progress)
				}

				if !buffered && progress >= threshold {
					// Assign the path first so the buffered callback can
					// already observe it on the media entity.
					if sel.path != "" {
						in.Media.SetFilePath(sel.path)
					}
					in.Callbacks.SignalBuffered()
					if sel.path != "" {
						buffered = true
						m.logger().Info("buffering threshold reached",
							slog.String("infoHash", infoHash),
							slog.Float64("progress", progress),
							slog.String("filePath", sel.path),
						)
						if m.Playback != nil {
							m.Playback.Progress(infoHash, progress)
						}
					} else {
						// Threshold reached but no file ever resolved to a
						// usable path: the torrent has no streamable content.
						return m.finishNoMedia(ctx, in, infoHash, name, progress), nil
					}
				}
			}
		}

		select {
		case <-ctx.Done():
			return m.finishCancelled(in, infoHash, name, buffered, progress, sel), nil
		case <-ticker.C:
		}
	}
}

// applySelection picks the largest file (first strict maximum wins), sets
// every other file to priority zero and computes the total size excluding
// ignored files. Runs exactly once per download.
func (m *BufferMonitor) applySelection(h ports.Handle, manifest domain.Manifest, sel *fileSelection) {
	index := -1
	var maxSize int64 = -1
	for i, f := range manifest.Files {
		if f.Length > maxSize {
			maxSize = f.Length
			index = i
		}
	}

	total := manifest.TotalLength
	for i, f := range manifest.Files {
		if i == index {
			continue
		}
		h.SetFilePriority(i, domain.FilePriorityNone)
		total -= f.Length
	}
	h.SetFilePriority(index, domain.FilePriorityNormal)

	sel.index = index
	sel.maxSize = maxSize
	sel.totalSize = total

	m.logger().Debug("media file selected",
		slog.Int("fileIndex", index),
		slog.Int64("fileSize", maxSize),
		slog.Int64("totalSizeExcludingIgnored", total),
	)
}

// finishNoMedia removes the torrent and publishes the structured failure
// event. An expected business outcome, so the error return is nil.
func (m *BufferMonitor) finishNoMedia(ctx context.Context, in MonitorInput, infoHash, name string, progress float64) MonitorResult {
	if err := in.Session.RemoveTorrent(in.Handle); err != nil {
		m.logger().Warn("remove torrent failed",
			slog.String("infoHash", infoHash),
			slog.String("error", err.Error()),
		)
	}
	if m.Notifier != nil {
		m.Notifier.Publish(ctx, domain.Notification{
			Type:      domain.NotificationNoMediaFound,
			Origin:    in.Request.Source.Origin(),
			InfoHash:  infoHash,
			MediaKind: in.Request.MediaKind,
		})
	}
	return MonitorResult{
		Outcome:  domain.OutcomeNoMedia,
		InfoHash: infoHash,
		Name:     name,
		Progress: progress,
	}
}

// finishCancelled invokes the cancelled callback and tears the transfer down.
// Cleanup is best-effort: a removal failure on an already-terminating path is
// logged and swallowed, never surfaced.
func (m *BufferMonitor) finishCancelled(in MonitorInput, infoHash, name string, buffered bool, progress float64, sel fileSelection) MonitorResult {
	in.Callbacks.SignalCancelled()
	if err := in.Session.RemoveTorrent(in.Handle); err != nil {
		m.logger().Warn("remove torrent on cancel failed",
			slog.String("infoHash", infoHash),
			slog.String("error", err.Error()),
		)
	}
	outcome := domain.OutcomeCancelled
	if buffered {
		outcome = domain.OutcomeBuffered
	}
	return MonitorResult{
		Outcome:  outcome,
		InfoHash: infoHash,
		Name:     name,
		Progress: progress,
		FilePath: sel.path,
	}
}
