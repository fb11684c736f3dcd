package anacrolix

import (
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"golang.org/x/time/rate"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

// minLimiterBurst keeps finite rate limits workable: a burst smaller than the
// client's read chunks would stall transfers entirely.
const minLimiterBurst = 64 << 10

// Handle adapts one anacrolix torrent to the engine port. It is owned by a
// single monitor task; the mutex only guards the speed sample against the
// occasional status read from another snapshotting caller.
type Handle struct {
	session *Session
	torrent *torrent.Torrent

	mu         sync.Mutex
	sequential bool
	prev       speedSample
}

var _ ports.Handle = (*Handle)(nil)

func newHandle(s *Session, t *torrent.Torrent) *Handle {
	return &Handle{session: s, torrent: t}
}

func (h *Handle) InfoHash() string {
	return h.torrent.InfoHash().HexString()
}

func (h *Handle) SetUploadLimit(bytesPerSec int64) {
	applyLimit(h.session.upLimiter, bytesPerSec)
}

func (h *Handle) SetDownloadLimit(bytesPerSec int64) {
	applyLimit(h.session.downLimiter, bytesPerSec)
}

func applyLimit(l *rate.Limiter, bytesPerSec int64) {
	if bytesPerSec <= 0 {
		l.SetLimit(rate.Inf)
		l.SetBurst(0)
		return
	}
	burst := int(bytesPerSec)
	if burst < minLimiterBurst {
		burst = minLimiterBurst
	}
	l.SetLimit(rate.Limit(bytesPerSec))
	l.SetBurst(burst)
}

// SetSequentialDownload marks the transfer for in-order retrieval. The
// anacrolix client has no torrent-wide sequential flag; instead, when a file
// is prioritized, the leading pieces get a graduated priority gradient so the
// most urgent bytes arrive first.
func (h *Handle) SetSequentialDownload(enabled bool) {
	h.mu.Lock()
	h.sequential = enabled
	h.mu.Unlock()
}

func (h *Handle) Status() domain.TransferStatus {
	stats := h.torrent.Stats()
	download, upload := h.sampleSpeed(stats, time.Now())
	return domain.TransferStatus{
		HasMetadata:     infoReady(h.torrent),
		DownloadRateBps: download,
		UploadRateBps:   upload,
		Seeds:           stats.ConnectedSeeders,
		Peers:           stats.ActivePeers,
	}
}

func (h *Handle) Manifest() (domain.Manifest, bool) {
	if !infoReady(h.torrent) {
		return domain.Manifest{}, false
	}
	files := h.torrent.Files()
	m := domain.Manifest{
		Name:        h.torrent.Name(),
		TotalLength: h.torrent.Length(),
		Files:       make([]domain.FileRef, 0, len(files)),
	}
	for i, f := range files {
		m.Files = append(m.Files, domain.FileRef{
			Index:  i,
			Path:   f.Path(),
			Length: f.Length(),
		})
	}
	return m, true
}

func (h *Handle) FileBytesCompleted(index int) int64 {
	if !infoReady(h.torrent) {
		return 0
	}
	files := h.torrent.Files()
	if index < 0 || index >= len(files) {
		return 0
	}
	return files[index].BytesCompleted()
}

func (h *Handle) SetFilePriority(index int, prio domain.FilePriority) {
	if !infoReady(h.torrent) {
		return
	}
	files := h.torrent.Files()
	if index < 0 || index >= len(files) {
		return
	}
	f := files[index]
	if prio == domain.FilePriorityNone {
		f.SetPriority(torrent.PiecePriorityNone)
		return
	}
	f.SetPriority(torrent.PiecePriorityNormal)

	h.mu.Lock()
	sequential := h.sequential
	h.mu.Unlock()
	if sequential {
		h.applyLeadingGradient(f)
	}
}

// Graduated bands at the start of a prioritized file. The first band maps to
// PiecePriorityNow so playback's opening bytes arrive fastest.
const (
	gradientNowBand       int64 = 4 << 20
	gradientNextBand      int64 = 4 << 20
	gradientReadaheadBand int64 = 24 << 20
)

func (h *Handle) applyLeadingGradient(f *torrent.File) {
	t := h.torrent
	info := t.Info()
	if info == nil || info.PieceLength <= 0 {
		return
	}

	bands := []struct {
		length int64
		prio   torrent.PiecePriority
	}{
		{gradientNowBand, torrent.PiecePriorityNow},
		{gradientNextBand, torrent.PiecePriorityNext},
		{gradientReadaheadBand, torrent.PiecePriorityReadahead},
	}

	offset := int64(0)
	for _, band := range bands {
		start, end, ok := pieceRange(info.PieceLength, f.Offset(), f.Length(), offset, band.length, t.NumPieces())
		if !ok {
			break
		}
		for i := start; i < end; i++ {
			t.Piece(i).SetPriority(band.prio)
		}
		offset += band.length
	}
}

// pieceRange converts a byte range within a file to a clamped piece range.
func pieceRange(pieceLength, fileOffset, fileLength, off, length int64, numPieces int) (start, end int, ok bool) {
	if pieceLength <= 0 || fileLength <= 0 || length <= 0 || numPieces <= 0 {
		return 0, 0, false
	}
	if off < 0 {
		off = 0
	}
	if off >= fileLength {
		return 0, 0, false
	}
	fileEnd := fileOffset + fileLength
	startByte := fileOffset + off
	endByte := startByte + length
	if endByte > fileEnd || endByte < startByte {
		endByte = fileEnd
	}

	start = int(startByte / pieceLength)
	end = int((endByte + pieceLength - 1) / pieceLength)
	if start < 0 {
		start = 0
	}
	if start >= numPieces {
		return 0, 0, false
	}
	if end > numPieces {
		end = numPieces
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func infoReady(t *torrent.Torrent) bool {
	if t == nil {
		return false
	}
	select {
	case <-t.GotInfo():
		return true
	default:
		return false
	}
}

type speedSample struct {
	at           time.Time
	bytesRead    int64
	bytesWritten int64
}

// nextSpeedSample derives per-second rates from two cumulative counters.
// Counter regressions (post-restart re-verification) clamp to zero.
func nextSpeedSample(prev speedSample, bytesRead, bytesWritten int64, now time.Time) (speedSample, int64, int64) {
	cur := speedSample{at: now, bytesRead: bytesRead, bytesWritten: bytesWritten}
	if prev.at.IsZero() {
		return cur, 0, 0
	}
	dt := now.Sub(prev.at).Seconds()
	if dt <= 0 {
		return cur, 0, 0
	}
	deltaRead := bytesRead - prev.bytesRead
	deltaWritten := bytesWritten - prev.bytesWritten
	if deltaRead < 0 {
		deltaRead = 0
	}
	if deltaWritten < 0 {
		deltaWritten = 0
	}
	return cur, int64(float64(deltaRead) / dt), int64(float64(deltaWritten) / dt)
}

func (h *Handle) sampleSpeed(stats torrent.TorrentStats, now time.Time) (int64, int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next, download, upload := nextSpeedSample(
		h.prev,
		stats.BytesReadUsefulData.Int64(),
		stats.BytesWrittenData.Int64(),
		now,
	)
	h.prev = next
	return download, upload
}
