package docstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// FixtureMeta is the header of a snapshot file.
type FixtureMeta struct {
	AuditDate  string `json:"audit_date"`
	SystemDate string `json:"system_date,omitempty"`
}

type fixtureFile struct {
	FixtureMeta
	Collections map[string][]json.RawMessage `json:"collections"`
}

// LoadFixture reads {audit_date, system_date?, collections: {name: [docs]}}. Documents may use
// MongoDB extended JSON ({"$oid": ...}, {"$date": ...}). A system_date without a tp_system
// collection seeds one.
func (s *MemoryStore) LoadFixture(r io.Reader) (FixtureMeta, error) {
	var f fixtureFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return FixtureMeta{}, fmt.Errorf("decode fixture: %w", err)
	}
	if f.AuditDate == "" {
		return FixtureMeta{}, fmt.Errorf("decode fixture: audit_date is required")
	}

	names := make([]string, 0, len(f.Collections))
	for name := range f.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		docs := make([]any, 0, len(f.Collections[name]))
		for i, raw := range f.Collections[name] {
			var doc bson.D
			if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
				return FixtureMeta{}, fmt.Errorf("fixture %s[%d]: %w", name, i, err)
			}
			docs = append(docs, doc)
		}
		if err := s.Insert(name, docs...); err != nil {
			return FixtureMeta{}, err
		}
	}

	if _, ok := f.Collections[systemCollection]; !ok && f.SystemDate != "" {
		if err := s.Insert(systemCollection, bson.M{"tgl_system": f.SystemDate}); err != nil {
			return FixtureMeta{}, err
		}
	}
	return f.FixtureMeta, nil
}

const systemCollection = "tp_system"

func LoadFixtureFile(path string) (*MemoryStore, FixtureMeta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, FixtureMeta{}, err
	}
	defer file.Close()

	store := NewMemoryStore()
	meta, err := store.LoadFixture(file)
	if err != nil {
		return nil, FixtureMeta{}, fmt.Errorf("%s: %w", path, err)
	}
	return store, meta, nil
}
