// Package repository defines the user store interface and errors.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okian/podium/pkg/metrics"
)

// Mongo adapter constants.
const (
	usersCollection     = "users"
	connectAttempts     = 5
	connectRetryDelay   = 500 * time.Millisecond
	defaultMongoTimeout = 5 * time.Second
)

// userDoc is the persisted document shape.
type userDoc struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
	Rating   int    `bson:"rating"`
}

// MongoStore implements Store against a MongoDB users collection. Query
// shapes mirror the memory store exactly: one sorted skip/limit scan per
// page, one $gt count per rank lookup, one [q, q') range find per prefix
// search. Queries are never retried; only the initial ping is.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the users collection,
// including the indexes backing the three query shapes.
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	if timeout <= 0 {
		timeout = defaultMongoTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// Transient startup failures (container races, DNS warm-up) are worth
	// riding out; request-path queries never retry.
	err = retry.Do(
		func() error { return client.Ping(connectCtx, nil) },
		retry.Context(connectCtx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectRetryDelay),
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s := &MongoStore{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// ensureIndexes creates the compound leaderboard index and the username
// index used by prefix ranges.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "rating", Value: -1}, {Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "username", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	if err := s.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// ListByRating returns up to limit records ordered by rating descending,
// username ascending, skipping offset records.
func (s *MongoStore) ListByRating(ctx context.Context, limit, offset int) ([]UserRecord, error) {
	if limit < 1 {
		metrics.RecordStoreError(metrics.QueryKindScan)
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "username", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		metrics.RecordStoreError(metrics.QueryKindScan)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	out, err := decodeRecords(ctx, cur, limit)
	if err != nil {
		metrics.RecordStoreError(metrics.QueryKindScan)
		return nil, err
	}
	metrics.RecordStoreQuery(metrics.QueryKindScan, float64(time.Since(start).Milliseconds()))
	return out, nil
}

// CountHigher returns the number of records with rating strictly greater
// than the given value via a single aggregate count.
func (s *MongoStore) CountHigher(ctx context.Context, rating int) (int, error) {
	start := time.Now()
	n, err := s.users.CountDocuments(ctx, bson.M{"rating": bson.M{"$gt": rating}})
	if err != nil {
		metrics.RecordStoreError(metrics.QueryKindCount)
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.RecordStoreQuery(metrics.QueryKindCount, float64(time.Since(start).Milliseconds()))
	return int(n), nil
}

// SearchByPrefix returns up to limit records whose username falls in
// [prefix, PrefixUpperBound(prefix)), in username order.
func (s *MongoStore) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]UserRecord, error) {
	if limit < 1 {
		metrics.RecordStoreError(metrics.QueryKindPrefix)
		return nil, ErrInvalidLimit
	}

	upper := PrefixUpperBound(prefix)
	if upper == "" {
		return []UserRecord{}, nil
	}

	start := time.Now()
	filter := bson.M{"username": bson.M{"$gte": prefix, "$lt": upper}}
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordStoreError(metrics.QueryKindPrefix)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	out, err := decodeRecords(ctx, cur, limit)
	if err != nil {
		metrics.RecordStoreError(metrics.QueryKindPrefix)
		return nil, err
	}
	metrics.RecordStoreQuery(metrics.QueryKindPrefix, float64(time.Since(start).Milliseconds()))
	return out, nil
}

// Count returns the total number of records.
func (s *MongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return int(n), nil
}

// Upsert inserts or replaces the record stored under rec.Username.
func (s *MongoStore) Upsert(ctx context.Context, rec UserRecord) error {
	start := time.Now()
	update := bson.M{
		"$set":         bson.M{"rating": rec.Rating},
		"$setOnInsert": bson.M{"_id": rec.ID, "username": rec.Username},
	}
	_, err := s.users.UpdateOne(ctx, bson.M{"username": rec.Username}, update, options.Update().SetUpsert(true))
	if err != nil {
		metrics.RecordStoreError(metrics.QueryKindUpsert)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.RecordStoreQuery(metrics.QueryKindUpsert, float64(time.Since(start).Milliseconds()))
	return nil
}

// decodeRecords drains a cursor into UserRecord values.
func decodeRecords(ctx context.Context, cur *mongo.Cursor, capacity int) ([]UserRecord, error) {
	defer func() { _ = cur.Close(ctx) }()

	out := make([]UserRecord, 0, capacity)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		out = append(out, UserRecord{ID: doc.ID, Username: doc.Username, Rating: doc.Rating})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, nil
}
