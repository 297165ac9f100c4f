// Package mongodb persists analyzed emails for the listing endpoints.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/quickemail/email-triage/internal/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store implements the EmailStore interface on top of a MongoDB
// collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// triageDocument is the persisted document shape. The subject lives
// under the legacy "snippet" field name that existing dashboards read.
type triageDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	SenderEmail    string             `bson:"email"`
	Subject        string             `bson:"snippet"`
	Content        string             `bson:"content"`
	Category       string             `bson:"category"`
	Confidence     float64            `bson:"confidence"`
	SuggestedReply string             `bson:"suggested_reply"`
	Deleted        bool               `bson:"deleted,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
}

// notDeletedFilter matches documents that were never soft-deleted.
// Older documents predate the deleted flag, so absence counts as live.
func notDeletedFilter() bson.M {
	return bson.M{"$or": []bson.M{
		{"deleted": bson.M{"$exists": false}},
		{"deleted": false},
	}}
}

// NewStore connects to MongoDB and verifies the connection before
// returning a store bound to the given database and collection.
func NewStore(uri, database, collection string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}

	if err := store.ensureIndexes(ctx); err != nil {
		logger.Warn("Failed to create MongoDB indexes", zap.Error(err))
	}

	return store, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "deleted", Value: 1}}},
	}

	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Save inserts a new triage record
func (s *Store) Save(ctx context.Context, record *core.TriageRecord) error {
	doc := triageDocument{
		SenderEmail:    record.SenderEmail,
		Subject:        record.Subject,
		Content:        record.Content,
		Category:       string(record.Category),
		Confidence:     record.Confidence,
		SuggestedReply: record.SuggestedReply,
		Deleted:        record.Deleted,
		CreatedAt:      record.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert triage record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

// List returns one page of live records, newest first, along with the
// total count of live records.
func (s *Store) List(ctx context.Context, page, perPage int) ([]*core.TriageRecord, int64, error) {
	filter := notDeletedFilter()

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count triage records: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page-1) * int64(perPage)).
		SetLimit(int64(perPage))

	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list triage records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*core.TriageRecord, 0, perPage)
	for cursor.Next(ctx) {
		var doc triageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode triage record: %w", err)
		}
		records = append(records, s.toRecord(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate triage records: %w", err)
	}

	return records, total, nil
}

// SoftDelete marks a record as deleted without removing it
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrInvalidRecordID
	}

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"deleted": true}})
	if err != nil {
		return fmt.Errorf("failed to soft delete triage record: %w", err)
	}

	if result.MatchedCount == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// Close disconnects the underlying MongoDB client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) toRecord(doc *triageDocument) *core.TriageRecord {
	return &core.TriageRecord{
		ID:             doc.ID.Hex(),
		SenderEmail:    doc.SenderEmail,
		Subject:        doc.Subject,
		Content:        doc.Content,
		Category:       core.Category(doc.Category),
		Confidence:     doc.Confidence,
		SuggestedReply: doc.SuggestedReply,
		Deleted:        doc.Deleted,
		CreatedAt:      doc.CreatedAt,
	}
}
