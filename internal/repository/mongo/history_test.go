package mongo

import (
	"testing"
	"time"

	"playstream/internal/domain"
)

func TestToDocFromDocRoundtrip(t *testing.T) {
	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	record := domain.DownloadRecord{
		InfoHash:   "d2354e",
		Name:       "Big Buck Bunny",
		MediaKind:  domain.MediaKindMovie,
		Origin:     domain.OriginCurated,
		Outcome:    domain.OutcomeBuffered,
		Progress:   42.5,
		FilePath:   "/media/movies/big-buck-bunny/video.mkv",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Minute),
	}

	got := fromDoc(toDoc(record))
	if got != record {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got, record)
	}
}

func TestFromDocZeroTimes(t *testing.T) {
	got := fromDoc(recordDoc{InfoHash: "ff", Outcome: string(domain.OutcomeNoMedia)})

	if !got.StartedAt.IsZero() {
		t.Errorf("StartedAt: got %v, want zero", got.StartedAt)
	}
	if !got.FinishedAt.IsZero() {
		t.Errorf("FinishedAt: got %v, want zero", got.FinishedAt)
	}
	if got.Outcome != domain.OutcomeNoMedia {
		t.Errorf("Outcome: got %q", got.Outcome)
	}
}
