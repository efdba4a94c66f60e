// Package docstore is the read-only seam between the audit and the POS document database.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrUnknownCollection = errors.New("docstore: unknown collection")

// Query is a find-many request. A zero Limit returns every match; an empty Sort keeps the
// store's natural (insertion) order.
type Query struct {
	Filter bson.M
	Sort   bson.D
	Limit  int64
}

type Store interface {
	Find(ctx context.Context, collection string, q Query) ([]bson.Raw, error)
	Distinct(ctx context.Context, collection, field string, filter bson.M) ([]any, error)
}

// NewestFirst sorts by insertion recency.
func NewestFirst() bson.D {
	return bson.D{{Key: "_id", Value: -1}}
}

func FindAll[T any](ctx context.Context, s Store, collection string, q Query) ([]T, error) {
	raws, err := s.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FindOne returns the first match in q.Sort order, or nil when nothing matches.
func FindOne[T any](ctx context.Context, s Store, collection string, q Query) (*T, error) {
	q.Limit = 1
	found, err := FindAll[T](ctx, s, collection, q)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func DistinctStrings(ctx context.Context, s Store, collection, field string, filter bson.M) ([]string, error) {
	values, err := s.Distinct(ctx, collection, field, filter)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}
