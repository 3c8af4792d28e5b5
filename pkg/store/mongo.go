package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/errors"
)

const (
	// DefaultMongoDatabase is used when MongoConfig.Database is empty.
	DefaultMongoDatabase = "redline"
	// MongoCollection holds one document per batch, keyed by batch id.
	MongoCollection = "batches"

	mongoConnectTimeout = 10 * time.Second
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore keeps batches in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client // nil when built from a collection
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// created_at index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	s := &MongoStore{client: client, coll: client.Database(cfg.Database).Collection(MongoCollection)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect its client.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the index List sorts on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create index")
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, b *batch.Batch) error {
	if err := ValidateID(b.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save batch %s", b.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*batch.Batch, error) {
	var b batch.Batch
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load batch %s", id)
	}
	return &b, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(normalizeLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list batches")
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var b batch.Batch
		if err := cur.Decode(&b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode batch")
		}
		out = append(out, Summarize(&b))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list batches")
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete batch %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client if this store created it.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
