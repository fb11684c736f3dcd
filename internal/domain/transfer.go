package domain

import "time"

// TransferStatus is the engine-side view of one transfer, read once per tick.
type TransferStatus struct {
	HasMetadata     bool
	DownloadRateBps int64
	UploadRateBps   int64
	Seeds           int
	Peers           int
}

// BandwidthSample is the human-facing rate/ETA pair reported to the bandwidth
// observer. Value type, rebuilt every tick, never mutated after construction.
type BandwidthSample struct {
	DownloadRateKBps float64       `json:"downloadRateKBps"`
	UploadRateKBps   float64       `json:"uploadRateKBps"`
	ETA              time.Duration `json:"eta,omitempty"`
	HasETA           bool          `json:"hasEta"`
}

// FileRef describes one file inside a torrent manifest. Path is relative to
// the torrent's save path.
type FileRef struct {
	Index  int    `json:"index"`
	Path   string `json:"path"`
	Length int64  `json:"length"`
}

// Manifest is the torrent's file listing, available once metadata arrives.
type Manifest struct {
	Name        string
	TotalLength int64
	Files       []FileRef
}

// FilePriority is the per-file download priority exposed by the engine.
type FilePriority int

const (
	FilePriorityNone   FilePriority = 0
	FilePriorityNormal FilePriority = 1
)
