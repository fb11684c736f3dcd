// Package notify delivers business events, currently only "no media found",
// to interested consumers without ever failing the download that raised them.
package notify

import (
	"context"
	"log/slog"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

// LogSink writes every notification to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

var _ ports.NotificationSink = (*LogSink)(nil)

func (s *LogSink) Publish(_ context.Context, n domain.Notification) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("download notification",
		slog.String("type", string(n.Type)),
		slog.String("origin", string(n.Origin)),
		slog.String("infoHash", n.InfoHash),
		slog.String("mediaKind", string(n.MediaKind)))
}

// Fanout publishes to every sink in order. Sinks are expected to be
// non-blocking; a slow sink delays the monitor's teardown tick.
type Fanout []ports.NotificationSink

var _ ports.NotificationSink = (Fanout)(nil)

func (f Fanout) Publish(ctx context.Context, n domain.Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(ctx, n)
		}
	}
}
