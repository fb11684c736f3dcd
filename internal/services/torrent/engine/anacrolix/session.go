package anacrolix

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"golang.org/x/time/rate"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

// Session wraps one torrent client. Releasing the session closes the client
// and with it every handle.
type Session struct {
	client      *torrent.Client
	upLimiter   *rate.Limiter
	downLimiter *rate.Limiter
	logger      *slog.Logger
}

func (s *Session) AddTorrent(ctx context.Context, params ports.AddTorrentParams) (ports.Handle, error) {
	src := params.Source

	var t *torrent.Torrent
	switch {
	case src.Magnet != "":
		// Parse explicitly so a malformed URI fails the whole operation
		// before any handle exists instead of registering an empty torrent.
		if _, err := metainfo.ParseMagnetUri(src.Magnet); err != nil {
			return nil, fmt.Errorf("parse magnet uri: %w", err)
		}
		added, err := s.client.AddMagnet(src.Magnet)
		if err != nil {
			return nil, fmt.Errorf("add magnet: %w", err)
		}
		t = added
	case src.TorrentPath != "":
		mi, err := metainfo.LoadFromFile(src.TorrentPath)
		if err != nil {
			return nil, fmt.Errorf("load torrent descriptor: %w", err)
		}
		added, err := s.client.AddTorrent(mi)
		if err != nil {
			return nil, fmt.Errorf("add torrent: %w", err)
		}
		t = added
	default:
		return nil, domain.ErrNoSource
	}

	s.logger.Debug("torrent registered", slog.String("infoHash", t.InfoHash().HexString()))
	return newHandle(s, t), nil
}

func (s *Session) RemoveTorrent(h ports.Handle) error {
	handle, ok := h.(*Handle)
	if !ok || handle.torrent == nil {
		return domain.ErrNotFound
	}
	handle.torrent.Drop()
	return nil
}

func (s *Session) Close() error {
	errs := s.client.Close()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
