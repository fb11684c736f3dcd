package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

// Manager tracks the set of active downloads. Every download is an
// independent DownloadTorrent call with its own engine session and its own
// goroutine; the manager only holds snapshots and cancel functions.
type Manager struct {
	Engine  ports.Engine
	Paths   ports.SavePathProvider
	Monitor *BufferMonitor
	History ports.DownloadHistory
	Logger  *slog.Logger
	Now     func() time.Time

	// OnBuffered, when set, receives the time it took each download to
	// reach its buffering threshold.
	OnBuffered func(elapsed time.Duration)

	mu     sync.RWMutex
	active map[string]*activeDownload
}

type activeDownload struct {
	mu     sync.RWMutex
	state  domain.DownloadState
	cancel context.CancelFunc
	media  *domain.MediaFile
}

func (d *activeDownload) snapshot() domain.DownloadState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *activeDownload) update(fn func(*domain.DownloadState)) {
	d.mu.Lock()
	fn(&d.state)
	d.mu.Unlock()
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// downloadID derives a stable identifier from the torrent source, available
// before the engine has parsed anything.
func downloadID(src domain.TorrentSource) string {
	sum := sha1.Sum([]byte(src.Magnet + "\x00" + src.TorrentPath))
	return hex.EncodeToString(sum[:8])
}

// Start launches one download and returns its initial state snapshot. The
// same source cannot be started twice while it is still active.
func (m *Manager) Start(ctx context.Context, req domain.DownloadRequest) (domain.DownloadState, error) {
	if err := req.Validate(); err != nil {
		return domain.DownloadState{}, err
	}

	id := downloadID(req.Source)
	now := m.now()

	m.mu.Lock()
	if m.active == nil {
		m.active = make(map[string]*activeDownload)
	}
	if _, exists := m.active[id]; exists {
		m.mu.Unlock()
		return domain.DownloadState{}, domain.ErrAlreadyActive
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	dl := &activeDownload{
		state: domain.DownloadState{
			ID:        id,
			MediaKind: req.MediaKind,
			StartedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
		media:  &domain.MediaFile{Kind: req.MediaKind},
	}
	m.active[id] = dl
	m.mu.Unlock()

	go m.run(runCtx, id, dl, req)

	return dl.snapshot(), nil
}

func (m *Manager) run(ctx context.Context, id string, dl *activeDownload, req domain.DownloadRequest) {
	defer dl.cancel()

	uc := &DownloadTorrent{
		Engine:  m.Engine,
		Paths:   m.Paths,
		Monitor: m.Monitor,
		Logger:  m.logger(),
		OnStarted: func(infoHash string) {
			dl.update(func(s *domain.DownloadState) { s.InfoHash = infoHash })
		},
	}

	obs := ports.Observers{
		Progress: func(percent float64) {
			dl.update(func(s *domain.DownloadState) {
				s.Progress = percent
				s.UpdatedAt = m.now()
			})
		},
		Bandwidth: func(sample domain.BandwidthSample) {
			dl.update(func(s *domain.DownloadState) {
				s.DownloadRateKBps = sample.DownloadRateKBps
				s.UploadRateKBps = sample.UploadRateKBps
				if sample.HasETA {
					s.ETASeconds = int64(sample.ETA / time.Second)
				} else {
					s.ETASeconds = 0
				}
			})
		},
		Seeds: func(count int) {
			dl.update(func(s *domain.DownloadState) { s.Seeds = count })
		},
		Peers: func(count int) {
			dl.update(func(s *domain.DownloadState) { s.Peers = count })
		},
	}
	cbs := ports.Callbacks{
		Buffered: func() {
			dl.update(func(s *domain.DownloadState) {
				s.Buffered = true
				s.FilePath = dl.media.FilePath()
			})
			if m.OnBuffered != nil {
				m.OnBuffered(m.now().Sub(dl.snapshot().StartedAt))
			}
		},
		Cancelled: func() {
			m.logger().Info("download cancelled", slog.String("id", id))
		},
	}

	result, err := uc.Execute(ctx, req, dl.media, obs, cbs)

	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()

	outcome := result.Outcome
	if err != nil {
		outcome = domain.OutcomeFailed
		m.logger().Error("download failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}

	if m.History != nil {
		rec := domain.DownloadRecord{
			InfoHash:   result.InfoHash,
			Name:       result.Name,
			MediaKind:  req.MediaKind,
			Origin:     req.Source.Origin(),
			Outcome:    outcome,
			Progress:   result.Progress,
			FilePath:   dl.media.FilePath(),
			StartedAt:  dl.snapshot().StartedAt,
			FinishedAt: m.now(),
		}
		hctx, hcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer hcancel()
		if herr := m.History.Record(hctx, rec); herr != nil {
			m.logger().Warn("history record failed",
				slog.String("id", id),
				slog.String("error", herr.Error()),
			)
		}
	}
}

// Cancel requests cooperative cancellation of one download. The entry leaves
// the active set when its monitor loop has finished tearing down.
func (m *Manager) Cancel(id string) error {
	m.mu.RLock()
	dl, ok := m.active[id]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	dl.cancel()
	return nil
}

// Get returns the current snapshot of one active download.
func (m *Manager) Get(id string) (domain.DownloadState, error) {
	m.mu.RLock()
	dl, ok := m.active[id]
	m.mu.RUnlock()
	if !ok {
		return domain.DownloadState{}, domain.ErrNotFound
	}
	return dl.snapshot(), nil
}

// States returns snapshots of every active download, oldest first.
func (m *Manager) States() []domain.DownloadState {
	m.mu.RLock()
	states := make([]domain.DownloadState, 0, len(m.active))
	for _, dl := range m.active {
		states = append(states, dl.snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		if states[i].StartedAt.Equal(states[j].StartedAt) {
			return states[i].ID < states[j].ID
		}
		return states[i].StartedAt.Before(states[j].StartedAt)
	})
	return states
}

// CancelAll cancels every active download, used during shutdown.
func (m *Manager) CancelAll() {
	m.mu.RLock()
	for _, dl := range m.active {
		dl.cancel()
	}
	m.mu.RUnlock()
}
