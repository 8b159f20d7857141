package snapshot

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spacelens/spacelens/pkg/xerrors"
)

// MongoStore keeps snapshots in a MongoDB collection, one document per
// snapshot with the ID as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the "snapshots"
// collection of the given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("snapshots"),
	}, nil
}

// Put persists a snapshot, replacing any existing document with the same ID.
func (s *MongoStore) Put(ctx context.Context, snap *Snapshot) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, opts)
	return xerrors.Wrap(xerrors.ErrCodeStorage, err, "store snapshot %s", snap.ID)
}

// Get retrieves a snapshot by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "load snapshot %s", id)
	}
	return &snap, nil
}

// List returns summaries of all snapshots, newest first. The entry
// payload stays in the database; only metadata fields are projected.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"root":       1,
			"created_at": 1,
			"num_files": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$entries",
				"as":    "e",
				"cond":  bson.M{"$eq": []interface{}{"$$e.is_dir", false}},
			}}},
			"total_size": bson.M{"$sum": "$entries.size"},
		}}},
		{{Key: "$sort", Value: bson.M{"created_at": -1}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "list snapshots")
	}
	defer cursor.Close(ctx)

	var infos []Info
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "decode snapshot list")
	}
	return infos, nil
}

// Delete removes a snapshot. Unknown IDs are not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return xerrors.Wrap(xerrors.ErrCodeStorage, err, "delete snapshot %s", id)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
