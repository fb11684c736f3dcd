package notify

import (
	"context"
	"testing"

	"playstream/internal/domain"
)

type captureSink struct {
	got []domain.Notification
}

func (c *captureSink) Publish(_ context.Context, n domain.Notification) {
	c.got = append(c.got, n)
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	fanout := Fanout{first, nil, second}

	n := domain.Notification{
		Type:      domain.NotificationNoMediaFound,
		Origin:    domain.OriginCurated,
		InfoHash:  "abc123",
		MediaKind: domain.MediaKindMovie,
	}
	fanout.Publish(context.Background(), n)

	for name, sink := range map[string]*captureSink{"first": first, "second": second} {
		if len(sink.got) != 1 {
			t.Fatalf("%s sink received %d notifications", name, len(sink.got))
		}
		if sink.got[0] != n {
			t.Fatalf("%s sink received %+v", name, sink.got[0])
		}
	}
}

func TestLogSinkNilLoggerDoesNotPanic(t *testing.T) {
	sink := &LogSink{}
	sink.Publish(context.Background(), domain.Notification{Type: domain.NotificationNoMediaFound})
}
