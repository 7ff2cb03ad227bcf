package manifest

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/affectively-ai/foldline/pkg/errors"
)

// MongoStore persists manifests in a MongoDB collection, one document per
// DocumentID. Suited to multi-instance edge deployments where several
// servers serve the same manifests.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	// URI is the connection string (mongodb://...).
	URI string

	// Database name. Defaults to "foldline".
	Database string

	// Collection name. Defaults to "manifests".
	Collection string
}

// NewMongoStore connects to MongoDB, verifies the connection, and ensures
// the document-id index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "foldline"
	}
	if cfg.Collection == "" {
		cfg.Collection = "manifests"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "document_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create manifest index")
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Put upserts the manifest keyed by document id.
func (s *MongoStore) Put(ctx context.Context, m Manifest) error {
	if err := errors.ValidateDocumentID(m.DocumentID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"document_id": m.DocumentID},
		m,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "store manifest for %s", m.DocumentID)
	}
	return nil
}

// Get retrieves the manifest for a document.
func (s *MongoStore) Get(ctx context.Context, documentID string) (Manifest, error) {
	if err := errors.ValidateDocumentID(documentID); err != nil {
		return Manifest{}, err
	}
	var m Manifest
	err := s.coll.FindOne(ctx, bson.M{"document_id": documentID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return Manifest{}, errors.New(errors.ErrCodeDocumentNotFound, "no manifest for document %s", documentID)
	}
	if err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeStore, err, "load manifest for %s", documentID)
	}
	return m, nil
}

// List returns every stored document id.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"document_id": 1}).SetSort(bson.D{{Key: "document_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list manifests")
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			DocumentID string `bson:"document_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "decode manifest row")
		}
		ids = append(ids, row.DocumentID)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate manifests")
	}
	return ids, nil
}

// Delete removes a document's manifest. Missing documents are not an error.
func (s *MongoStore) Delete(ctx context.Context, documentID string) error {
	if err := errors.ValidateDocumentID(documentID); err != nil {
		return err
	}
	_, err := s.coll.DeleteOne(ctx, bson.M{"document_id": documentID})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete manifest for %s", documentID)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
