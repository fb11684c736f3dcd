package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"playstream/internal/domain"
	"playstream/internal/domain/ports"
)

type recordDoc struct {
	InfoHash   string  `bson:"infoHash"`
	Name       string  `bson:"name,omitempty"`
	MediaKind  string  `bson:"mediaKind"`
	Origin     string  `bson:"origin"`
	Outcome    string  `bson:"outcome"`
	Progress   float64 `bson:"progress"`
	FilePath   string  `bson:"filePath,omitempty"`
	StartedAt  int64   `bson:"startedAt"`
	FinishedAt int64   `bson:"finishedAt"`
}

// HistoryRepository persists terminal download outcomes.
type HistoryRepository struct {
	collection *mongo.Collection
}

var _ ports.DownloadHistory = (*HistoryRepository)(nil)

func NewHistoryRepository(client *mongo.Client, dbName, collectionName string) *HistoryRepository {
	return &HistoryRepository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "finishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "infoHash", Value: 1}}},
		{Keys: bson.D{{Key: "outcome", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *HistoryRepository) Record(ctx context.Context, rec domain.DownloadRecord) error {
	_, err := r.collection.InsertOne(ctx, toDoc(rec))
	return err
}

func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "finishedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]domain.DownloadRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromDoc(doc))
	}
	return records, nil
}

func toDoc(rec domain.DownloadRecord) recordDoc {
	return recordDoc{
		InfoHash:   rec.InfoHash,
		Name:       rec.Name,
		MediaKind:  string(rec.MediaKind),
		Origin:     string(rec.Origin),
		Outcome:    string(rec.Outcome),
		Progress:   rec.Progress,
		FilePath:   rec.FilePath,
		StartedAt:  rec.StartedAt.Unix(),
		FinishedAt: rec.FinishedAt.Unix(),
	}
}

func fromDoc(doc recordDoc) domain.DownloadRecord {
	return domain.DownloadRecord{
		InfoHash:   doc.InfoHash,
		Name:       doc.Name,
		MediaKind:  domain.MediaKind(doc.MediaKind),
		Origin:     domain.TorrentOrigin(doc.Origin),
		Outcome:    domain.DownloadOutcome(doc.Outcome),
		Progress:   doc.Progress,
		FilePath:   doc.FilePath,
		StartedAt:  timeFromUnix(doc.StartedAt),
		FinishedAt: timeFromUnix(doc.FinishedAt),
	}
}

func timeFromUnix(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.Unix(value, 0).UTC()
}
