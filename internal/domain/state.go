package domain

import "time"

// DownloadState is a point-in-time snapshot of one active download, served by
// the API and broadcast over the websocket hub.
type DownloadState struct {
	ID               string    `json:"id"`
	InfoHash         string    `json:"infoHash,omitempty"`
	Name             string    `json:"name,omitempty"`
	MediaKind        MediaKind `json:"mediaKind"`
	Progress         float64   `json:"progress"`
	DownloadRateKBps float64   `json:"downloadRateKBps"`
	UploadRateKBps   float64   `json:"uploadRateKBps"`
	ETASeconds       int64     `json:"etaSeconds,omitempty"`
	Seeds            int       `json:"seeds"`
	Peers            int       `json:"peers"`
	Buffered         bool      `json:"buffered"`
	FilePath         string    `json:"filePath,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DownloadOutcome is the terminal result of one download, persisted to the
// history repository.
type DownloadOutcome string

const (
	OutcomeBuffered  DownloadOutcome = "buffered"
	OutcomeCancelled DownloadOutcome = "cancelled"
	OutcomeNoMedia   DownloadOutcome = "no_media"
	OutcomeFailed    DownloadOutcome = "failed"
)

// DownloadRecord is the persisted history entry for a finished download.
type DownloadRecord struct {
	InfoHash   string          `json:"infoHash"`
	Name       string          `json:"name,omitempty"`
	MediaKind  MediaKind       `json:"mediaKind"`
	Origin     TorrentOrigin   `json:"origin"`
	Outcome    DownloadOutcome `json:"outcome"`
	Progress   float64         `json:"progress"`
	FilePath   string          `json:"filePath,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
}
