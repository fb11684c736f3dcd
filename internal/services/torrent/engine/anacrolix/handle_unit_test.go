package anacrolix

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNextSpeedSampleFirstCallZero(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	_, download, upload := nextSpeedSample(speedSample{}, 100, 50, now)
	if download != 0 || upload != 0 {
		t.Fatalf("expected 0 speeds, got %d/%d", download, upload)
	}
}

func TestNextSpeedSampleDelta(t *testing.T) {
	start := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	prev, _, _ := nextSpeedSample(speedSample{}, 100, 50, start)

	next := start.Add(2 * time.Second)
	_, download, upload := nextSpeedSample(prev, 1100, 450, next)
	if download != 500 {
		t.Fatalf("download = %d", download)
	}
	if upload != 200 {
		t.Fatalf("upload = %d", upload)
	}
}

func TestNextSpeedSampleNonPositiveElapsed(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	prev, _, _ := nextSpeedSample(speedSample{}, 100, 50, now)

	_, download, upload := nextSpeedSample(prev, 200, 100, now)
	if download != 0 || upload != 0 {
		t.Fatalf("expected 0 speeds, got %d/%d", download, upload)
	}
}

func TestNextSpeedSampleCounterRegressionClamps(t *testing.T) {
	start := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	prev, _, _ := nextSpeedSample(speedSample{}, 1000, 500, start)

	_, download, upload := nextSpeedSample(prev, 400, 100, start.Add(time.Second))
	if download != 0 || upload != 0 {
		t.Fatalf("expected clamped speeds, got %d/%d", download, upload)
	}
}

func TestPieceRangeWithinFile(t *testing.T) {
	// Pieces of 1 MiB, file occupies bytes [3 MiB, 13 MiB).
	pieceLength := int64(1 << 20)
	fileOffset := int64(3 << 20)
	fileLength := int64(10 << 20)

	start, end, ok := pieceRange(pieceLength, fileOffset, fileLength, 0, 4<<20, 100)
	if !ok {
		t.Fatal("expected a valid range")
	}
	if start != 3 || end != 7 {
		t.Fatalf("range = [%d, %d)", start, end)
	}
}

func TestPieceRangeClampedToFileEnd(t *testing.T) {
	pieceLength := int64(1 << 20)
	fileOffset := int64(0)
	fileLength := int64(3 << 20)

	start, end, ok := pieceRange(pieceLength, fileOffset, fileLength, 2<<20, 8<<20, 100)
	if !ok {
		t.Fatal("expected a valid range")
	}
	if start != 2 || end != 3 {
		t.Fatalf("range = [%d, %d)", start, end)
	}
}

func TestPieceRangeClampedToPieceCount(t *testing.T) {
	pieceLength := int64(1 << 20)

	start, end, ok := pieceRange(pieceLength, 0, 10<<20, 0, 10<<20, 4)
	if !ok {
		t.Fatal("expected a valid range")
	}
	if start != 0 || end != 4 {
		t.Fatalf("range = [%d, %d)", start, end)
	}
}

func TestPieceRangeBeyondFile(t *testing.T) {
	pieceLength := int64(1 << 20)

	if _, _, ok := pieceRange(pieceLength, 0, 4<<20, 5<<20, 1<<20, 100); ok {
		t.Fatal("expected no range past the file end")
	}
	if _, _, ok := pieceRange(0, 0, 4<<20, 0, 1<<20, 100); ok {
		t.Fatal("expected no range for zero piece length")
	}
}

func TestApplyLimitUnlimited(t *testing.T) {
	l := rate.NewLimiter(rate.Limit(1000), 1000)

	applyLimit(l, 0)
	if l.Limit() != rate.Inf {
		t.Fatalf("limit = %v", l.Limit())
	}
}

func TestApplyLimitFinite(t *testing.T) {
	l := rate.NewLimiter(rate.Inf, 0)

	applyLimit(l, 2<<20)
	if l.Limit() != rate.Limit(2<<20) {
		t.Fatalf("limit = %v", l.Limit())
	}
	if l.Burst() != 2<<20 {
		t.Fatalf("burst = %d", l.Burst())
	}

	applyLimit(l, 1024)
	if l.Burst() != minLimiterBurst {
		t.Fatalf("small limit burst = %d", l.Burst())
	}
}
