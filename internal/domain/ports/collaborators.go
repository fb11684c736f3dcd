package ports

import (
	"context"

	"playstream/internal/domain"
)

// SavePathProvider maps a media kind to the directory downloads of that kind
// are stored under. An unrecognized kind is a configuration error.
type SavePathProvider interface {
	SavePath(kind domain.MediaKind) (string, error)
}

// PathResolver turns a candidate destination path into a usable filesystem
// path, working around platform path-length limits. An empty result means the
// path is not usable (yet); resolution may be retried.
type PathResolver interface {
	Resolve(longPath string) string
}

// NotificationSink receives structured business events such as "no media
// found". Publishing must never fail the download.
type NotificationSink interface {
	Publish(ctx context.Context, n domain.Notification)
}

// PlaybackFeed is the downstream consumer of the playback-only progress feed
// that starts once a download is buffered.
type PlaybackFeed interface {
	Progress(infoHash string, percent float64)
}

// DownloadHistory persists terminal download outcomes.
type DownloadHistory interface {
	Record(ctx context.Context, rec domain.DownloadRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error)
}
