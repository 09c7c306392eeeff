package repository

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"frictionstudy/internal/model"
)

type mongoSink struct {
	collections map[model.Stream]*mongo.Collection
}

// NewMongoSink appends each stream to its own collection
func NewMongoSink(db *mongo.Database) Sink {
	collections := make(map[model.Stream]*mongo.Collection, len(model.StreamColumns))
	for stream := range model.StreamColumns {
		collections[stream] = db.Collection(collectionName(stream))
	}
	return &mongoSink{collections: collections}
}

func collectionName(stream model.Stream) string {
	return strings.ToLower(string(stream))
}

// EnsureIndexes adds the unique (session_id, item_id) index on responses so a
// replayed append cannot produce a second row for the same item.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName(model.StreamResponses)).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "item_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("session_item_unique"),
	})
	if err != nil {
		return fmt.Errorf("create responses index: %w", err)
	}
	return nil
}

// buildDocument pairs a row with its stream's column names, keeping order
func buildDocument(stream model.Stream, row []interface{}) (bson.D, error) {
	columns, err := checkRow(stream, row)
	if err != nil {
		return nil, err
	}
	doc := make(bson.D, 0, len(columns))
	for i, col := range columns {
		doc = append(doc, bson.E{Key: col, Value: row[i]})
	}
	return doc, nil
}

func (s *mongoSink) Append(ctx context.Context, stream model.Stream, row []interface{}) error {
	doc, err := buildDocument(stream, row)
	if err != nil {
		return err
	}
	coll, ok := s.collections[stream]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// already appended by an earlier attempt
			return nil
		}
		return fmt.Errorf("append to %s: %w", stream, err)
	}
	return nil
}
