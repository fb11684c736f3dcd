package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"

	"playstream/internal/domain"
)

// testMongoURI returns the MongoDB connection URI for integration tests.
// Defaults to localhost:27017. Set MONGO_TEST_URI to override.
func testMongoURI() string {
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// setupTestRepo connects to MongoDB and returns a HistoryRepository using a
// unique test database. The cleanup function drops the database and
// disconnects. Calls t.Skip if MongoDB is unreachable.
func setupTestRepo(t *testing.T) (*HistoryRepository, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uri := testMongoURI()
	client, err := Connect(ctx, uri, options.Client().SetConnectTimeout(3*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", uri, err)
	}

	dbName := fmt.Sprintf("playstream_test_%d", time.Now().UnixNano())
	repo := NewHistoryRepository(client, dbName, "download_history")
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = client.Disconnect(ctx)
	}
	return repo, cleanup
}

func TestHistoryRecordAndListRecent(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := domain.DownloadRecord{
			InfoHash:   fmt.Sprintf("hash%d", i),
			Name:       fmt.Sprintf("item %d", i),
			MediaKind:  domain.MediaKindShow,
			Origin:     domain.OriginCurated,
			Outcome:    domain.OutcomeBuffered,
			Progress:   float64(10 * i),
			StartedAt:  base,
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Most recently finished first.
	if records[0].InfoHash != "hash2" || records[1].InfoHash != "hash1" {
		t.Errorf("order: got %q, %q", records[0].InfoHash, records[1].InfoHash)
	}
}

func TestHistoryListRecentDefaultLimit(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	records, err := repo.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records from empty collection", len(records))
	}
}
