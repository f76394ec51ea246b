package runstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phylonetworks/reticula/pkg/observability"
)

const runsCollection = "runs"

// MongoStore is a MongoDB-backed run store for the server.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the given database.
// The connection is verified with a ping before the store is returned.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		runs:   client.Database(database).Collection(runsCollection),
	}, nil
}

// Save stores a run, overwriting any run with the same id.
func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	start := time.Now()
	_, err := s.runs.ReplaceOne(ctx,
		bson.M{"_id": run.ID},
		run,
		options.Replace().SetUpsert(true))
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "save", err)
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	observability.Store().OnStoreWrite(ctx, "mongo", run.ID, time.Since(start))
	return nil
}

// Get retrieves a run by id.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Store().OnStoreRead(ctx, "mongo", id, false, time.Since(start))
		return nil, ErrNotFound
	}
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "get", err)
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	observability.Store().OnStoreRead(ctx, "mongo", id, true, time.Since(start))
	return &run, nil
}

// List returns all runs, most recently started first.
func (s *MongoStore) List(ctx context.Context) ([]*Run, error) {
	cursor, err := s.runs.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"started_at": -1}))
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "list", err)
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Run
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding runs: %w", err)
	}
	return out, nil
}

// Delete removes a run.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.runs.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "delete", err)
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
