package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"playstream/internal/domain"
)

type fakeHistory struct {
	mu   sync.Mutex
	recs []domain.DownloadRecord
}

func (h *fakeHistory) Record(ctx context.Context, rec domain.DownloadRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, rec)
	return nil
}

func (h *fakeHistory) ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.DownloadRecord(nil), h.recs...), nil
}

func (h *fakeHistory) records() []domain.DownloadRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.DownloadRecord(nil), h.recs...)
}

func newTestManager(engine *fakeEngine, history *fakeHistory, resolver *fakeResolver) *Manager {
	return &Manager{
		Engine:  engine,
		Paths:   &fakePaths{movies: "/m", shows: "/s"},
		Monitor: newTestMonitor(resolver, &fakeNotifier{}, nil),
		History: history,
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestManagerRejectsDuplicateSource(t *testing.T) {
	h := &scriptedHandle{
		infoHash:    "dup",
		manifest:    testManifest("movie", 500 << 20),
		bytesByTick: []int64{0}, // idles until cancelled
	}
	m := newTestManager(&fakeEngine{session: &fakeEngineSession{handle: h}}, &fakeHistory{}, &fakeResolver{result: "passthrough"})

	req := domain.DownloadRequest{
		Source:    domain.TorrentSource{Magnet: "magnet:?xt=urn:btih:dup"},
		MediaKind: domain.MediaKindMovie,
	}
	state, err := m.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.CancelAll()

	if _, err := m.Start(context.Background(), req); !errors.Is(err, domain.ErrAlreadyActive) {
		t.Fatalf("duplicate start: err = %v, want ErrAlreadyActive", err)
	}
	if _, err := m.Get(state.ID); err != nil {
		t.Fatalf("Get(%s) failed: %v", state.ID, err)
	}
}

func TestManagerCancelUnknownID(t *testing.T) {
	m := newTestManager(&fakeEngine{session: &fakeEngineSession{}}, &fakeHistory{}, &fakeResolver{})
	if err := m.Cancel("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestManagerRecordsNoMediaOutcome(t *testing.T) {
	h := &scriptedHandle{
		infoHash:    "ffaa",
		manifest:    testManifest("junk", 100 << 20),
		bytesByTick: []int64{90 << 20}, // past threshold, but path never resolves
	}
	history := &fakeHistory{}
	m := newTestManager(&fakeEngine{session: &fakeEngineSession{handle: h}}, history, &fakeResolver{result: ""})

	req := domain.DownloadRequest{
		Source:    domain.TorrentSource{TorrentPath: "/tmp/junk.torrent"},
		MediaKind: domain.MediaKindShow,
	}
	state, err := m.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	waitFor(t, func() bool { return len(history.records()) == 1 }, "no history record written")

	rec := history.records()[0]
	if rec.Outcome != domain.OutcomeNoMedia {
		t.Fatalf("outcome = %s, want no_media", rec.Outcome)
	}
	if rec.Origin != domain.OriginDropped {
		t.Fatalf("origin = %s, want dropped", rec.Origin)
	}
	if rec.InfoHash != "ffaa" {
		t.Fatalf("infoHash = %q", rec.InfoHash)
	}

	waitFor(t, func() bool {
		_, err := m.Get(state.ID)
		return errors.Is(err, domain.ErrNotFound)
	}, "finished download still listed as active")
}

func TestManagerLiveStateCarriesPathAfterBuffering(t *testing.T) {
	h := &scriptedHandle{
		infoHash:    "playme",
		manifest:    testManifest("movie", 900 << 20),
		bytesByTick: []int64{200 << 20}, // instantly past the movie threshold
	}
	m := newTestManager(&fakeEngine{session: &fakeEngineSession{handle: h}}, &fakeHistory{}, &fakeResolver{result: "passthrough"})

	state, err := m.Start(context.Background(), domain.DownloadRequest{
		Source:    domain.TorrentSource{Magnet: "magnet:?xt=urn:btih:playme"},
		MediaKind: domain.MediaKindMovie,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer m.CancelAll()

	// The download keeps streaming after buffering; the live state must
	// expose the resolved path so a poller can start playback.
	waitFor(t, func() bool {
		s, err := m.Get(state.ID)
		return err == nil && s.Buffered
	}, "download never reported buffered")

	s, err := m.Get(state.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if s.FilePath == "" {
		t.Fatal("buffered live state has no file path")
	}
	if !strings.HasPrefix(s.FilePath, "/m/") {
		t.Fatalf("file path = %q, want a path under the movie library", s.FilePath)
	}
}

func TestManagerCancelStopsDownload(t *testing.T) {
	h := &scriptedHandle{
		infoHash:    "stopme",
		manifest:    testManifest("movie", 500 << 20),
		bytesByTick: []int64{0},
	}
	history := &fakeHistory{}
	m := newTestManager(&fakeEngine{session: &fakeEngineSession{handle: h}}, history, &fakeResolver{result: "passthrough"})

	state, err := m.Start(context.Background(), domain.DownloadRequest{
		Source:    domain.TorrentSource{Magnet: "magnet:?xt=urn:btih:stopme"},
		MediaKind: domain.MediaKindMovie,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	waitFor(t, func() bool {
		s, err := m.Get(state.ID)
		return err == nil && s.InfoHash == "stopme"
	}, "info hash never recorded on the live state")

	if err := m.Cancel(state.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	waitFor(t, func() bool { return len(history.records()) == 1 }, "no history record after cancel")
	if rec := history.records()[0]; rec.Outcome != domain.OutcomeCancelled {
		t.Fatalf("outcome = %s, want cancelled", rec.Outcome)
	}
}
