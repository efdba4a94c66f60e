package docstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryEpoch seeds the timestamp half of generated ObjectIDs so ids grow with insertion order.
const memoryEpoch = 1700000000

// MemoryStore is an in-process Store used by tests and by offline fixture audits.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.Raw
	seq         uint64
	strict      bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string][]bson.Raw{}}
}

// SetStrict makes reads of a collection that was never inserted into fail with
// ErrUnknownCollection instead of returning nothing.
func (s *MemoryStore) SetStrict(strict bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strict = strict
}

// Insert appends docs (bson.M, bson.D or tagged structs). Documents without an _id, or with a
// zero ObjectID, get a generated one.
func (s *MemoryStore) Insert(collection string, docs ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = nil
	}
	for _, doc := range docs {
		raw, err := s.normalize(doc)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", collection, err)
		}
		s.collections[collection] = append(s.collections[collection], raw)
	}
	return nil
}

func (s *MemoryStore) normalize(doc any) (bson.Raw, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	raw := bson.Raw(data)
	if id, err := raw.LookupErr("_id"); err == nil {
		if id.Type != bsontype.ObjectID || !id.ObjectID().IsZero() {
			return raw, nil
		}
	}

	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	withID := make(bson.D, 0, len(d)+1)
	withID = append(withID, bson.E{Key: "_id", Value: s.nextID()})
	for _, e := range d {
		if e.Key != "_id" {
			withID = append(withID, e)
		}
	}
	return bson.Marshal(withID)
}

func (s *MemoryStore) nextID() primitive.ObjectID {
	s.seq++
	var id primitive.ObjectID
	binary.BigEndian.PutUint32(id[0:4], memoryEpoch)
	binary.BigEndian.PutUint64(id[4:12], s.seq)
	return id
}

func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *MemoryStore) docs(collection string) ([]bson.Raw, error) {
	docs, ok := s.collections[collection]
	if !ok && s.strict {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return docs, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, q Query) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.docs(collection)
	if err != nil {
		return nil, err
	}

	var out []bson.Raw
	for _, doc := range docs {
		ok, err := matches(doc, q.Filter)
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", collection, err)
		}
		if ok {
			out = append(out, doc)
		}
	}
	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return compareDocs(out[i], out[j], q.Sort) < 0
		})
	}
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Distinct(ctx context.Context, collection, field string, filter bson.M) ([]any, error) {
	matched, err := s.Find(ctx, collection, Query{Filter: filter})
	if err != nil {
		return nil, err
	}

	var seen []bson.RawValue
	var out []any
	add := func(v bson.RawValue) error {
		for _, prev := range seen {
			if sameValue(prev, v) {
				return nil
			}
		}
		var decoded any
		if err := v.Unmarshal(&decoded); err != nil {
			return err
		}
		seen = append(seen, v)
		out = append(out, decoded)
		return nil
	}

	for _, doc := range matched {
		v, ok := lookup(doc, field)
		if !ok {
			continue
		}
		if v.Type == bsontype.Array {
			elems, err := v.Array().Values()
			if err != nil {
				return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
			}
			for _, e := range elems {
				if err := add(e); err != nil {
					return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
				}
			}
			continue
		}
		if err := add(v); err != nil {
			return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
		}
	}
	return out, nil
}
