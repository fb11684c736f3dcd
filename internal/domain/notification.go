package domain

type NotificationType string

const (
	// NotificationNoMediaFound signals that the torrent contains no file that
	// could ever be resolved to a playable path. An expected business outcome,
	// not a program error.
	NotificationNoMediaFound NotificationType = "no_media_found"
)

// Notification is a structured event published to the notification sink.
// Origin lets the consumer word the message differently for a dropped
// descriptor vs. a curated magnet.
type Notification struct {
	Type      NotificationType `json:"type"`
	Origin    TorrentOrigin    `json:"origin"`
	InfoHash  string           `json:"infoHash"`
	MediaKind MediaKind        `json:"mediaKind"`
}
