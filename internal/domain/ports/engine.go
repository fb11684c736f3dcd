package ports

import (
	"context"

	"playstream/internal/domain"
)

// SessionConfig configures one engine session. Each download owns exactly one
// session for its whole lifetime.
type SessionConfig struct {
	SavePath string
}

// Engine is the minimal contract the download pipeline needs from the torrent
// transfer engine. The real implementation wraps anacrolix/torrent; tests
// substitute a double that replays status/metadata sequences.
type Engine interface {
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

// AddTorrentParams registers one torrent source with a session. Parsing the
// source (magnet URI or descriptor file) happens inside AddTorrent; a parse
// failure is terminal and no handle is returned.
type AddTorrentParams struct {
	Source domain.TorrentSource
}

// Session groups the transfers of one download. Closing it releases every
// associated handle.
type Session interface {
	AddTorrent(ctx context.Context, params AddTorrentParams) (Handle, error)
	RemoveTorrent(h Handle) error
	Close() error
}

// Handle references one active transfer within a session. It must never be
// used concurrently by more than one task.
type Handle interface {
	InfoHash() string
	SetUploadLimit(bytesPerSec int64)
	SetDownloadLimit(bytesPerSec int64)
	SetSequentialDownload(enabled bool)
	Status() domain.TransferStatus
	// Manifest returns the torrent's file listing. ok is false until
	// metadata is available.
	Manifest() (m domain.Manifest, ok bool)
	FileBytesCompleted(index int) int64
	SetFilePriority(index int, prio domain.FilePriority)
}
