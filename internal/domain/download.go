package domain

// MediaKind classifies the media item a download request is for. It selects
// the save path and the buffering threshold.
type MediaKind string

const (
	MediaKindMovie   MediaKind = "movie"
	MediaKindShow    MediaKind = "show"
	MediaKindUnknown MediaKind = "unknown"
)

// TorrentOrigin distinguishes where the torrent came from. A dropped torrent
// is a local descriptor file supplied by the user; a curated one arrives as a
// magnet link from the catalog.
type TorrentOrigin string

const (
	OriginDropped TorrentOrigin = "dropped"
	OriginCurated TorrentOrigin = "curated"
)

// TorrentSource identifies the torrent to download. Exactly one field is set.
type TorrentSource struct {
	Magnet      string `json:"magnet,omitempty"`
	TorrentPath string `json:"torrentPath,omitempty"`
}

func (s TorrentSource) Origin() TorrentOrigin {
	if s.TorrentPath != "" {
		return OriginDropped
	}
	return OriginCurated
}

// DownloadRequest carries everything needed to start one progressive-playback
// download. Immutable once submitted.
type DownloadRequest struct {
	Source            TorrentSource `json:"source"`
	MediaKind         MediaKind     `json:"mediaKind"`
	UploadLimitKBps   int64         `json:"uploadLimitKBps"`
	DownloadLimitKBps int64         `json:"downloadLimitKBps"`
}

func (r DownloadRequest) Validate() error {
	hasMagnet := r.Source.Magnet != ""
	hasFile := r.Source.TorrentPath != ""
	if !hasMagnet && !hasFile {
		return ErrNoSource
	}
	if hasMagnet && hasFile {
		return ErrSourceAmbiguous
	}
	return nil
}

// BufferingThresholds holds the minimum progress (percent of the selected
// file, 0-100) that must be reached before playback may start, per media kind.
type BufferingThresholds struct {
	Movie   float64
	Show    float64
	Default float64
}

// Shows buffer earlier than movies: episodes are smaller and viewers expect
// near-instant starts.
func DefaultBufferingThresholds() BufferingThresholds {
	return BufferingThresholds{Movie: 10, Show: 3, Default: 5}
}

func (b BufferingThresholds) For(kind MediaKind) float64 {
	switch kind {
	case MediaKindMovie:
		return b.Movie
	case MediaKindShow:
		return b.Show
	default:
		return b.Default
	}
}
