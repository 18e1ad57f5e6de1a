package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"toolforge-rest-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBDocumentStore implements DocumentStore using MongoDB.
type MongoDBDocumentStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBDocumentStore connects to MongoDB and ensures the unique email
// index used by login/signup upserts.
func NewMongoDBDocumentStore(uri, database string) (*MongoDBDocumentStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)

	// Users are looked up and upserted by email on every gated request.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create email index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s", database)
	return &MongoDBDocumentStore{
		client: client,
		db:     db,
	}, nil
}

// List returns matching documents newest-first by _id.
func (s *MongoDBDocumentStore) List(ctx context.Context, collection string, filter model.Filter) ([]model.Document, error) {
	query := bson.M{}
	for key, value := range filter {
		query[key] = value
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := s.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []model.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return docs, nil
}

// Get returns the document with the given id.
func (s *MongoDBDocumentStore) Get(ctx context.Context, collection, id string) (model.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

// Insert stores a new document and returns the generated ObjectID hex.
func (s *MongoDBDocumentStore) Insert(ctx context.Context, collection string, doc model.Document) (InsertResult, error) {
	result, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return InsertResult{}, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return InsertResult{}, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return InsertResult{ID: oid.Hex()}, nil
}

// UpdateByID merges fields into the document with the given id.
func (s *MongoDBDocumentStore) UpdateByID(ctx context.Context, collection, id string, fields model.Partial) (UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return UpdateResult{}, nil
	}

	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(fields)},
	)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return UpdateResult{Matched: result.MatchedCount, Modified: result.ModifiedCount}, nil
}

// UpdateByFilter merges fields into the first matching document, optionally
// inserting a new one.
func (s *MongoDBDocumentStore) UpdateByFilter(ctx context.Context, collection string, filter model.Filter, fields model.Partial, upsert bool) (UpdateResult, error) {
	opts := options.Update().SetUpsert(upsert)
	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M(filter),
		bson.M{"$set": bson.M(fields)},
		opts,
	)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update %s by filter: %w", collection, err)
	}

	out := UpdateResult{Matched: result.MatchedCount, Modified: result.ModifiedCount}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = oid.Hex()
	}
	return out, nil
}

// DeleteByID removes the document with the given id.
func (s *MongoDBDocumentStore) DeleteByID(ctx context.Context, collection, id string) (DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return DeleteResult{}, nil
	}

	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return DeleteResult{Deleted: result.DeletedCount}, nil
}

// DecrementField subtracts amount from an integer field in a single
// conditional update, so two concurrent checkouts cannot interleave.
func (s *MongoDBDocumentStore) DecrementField(ctx context.Context, collection, id, field string, amount int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": oid, field: bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{field: -amount}},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement %s/%s.%s: %w", collection, id, field, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// No match: either the document is gone or the stock is too low.
	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to check %s/%s: %w", collection, id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

// Close closes the MongoDB connection.
func (s *MongoDBDocumentStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// fromBSON rewrites the Mongo _id into the public string id field.
func fromBSON(raw bson.M) model.Document {
	doc := make(model.Document, len(raw))
	for key, value := range raw {
		if key == "_id" {
			if oid, ok := value.(primitive.ObjectID); ok {
				doc["id"] = oid.Hex()
				continue
			}
		}
		doc[key] = value
	}
	return doc
}
