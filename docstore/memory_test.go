package docstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedStore(t *testing.T, collection string, docs ...any) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	if err := s.Insert(collection, docs...); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return s
}

func TestMemoryStore_Equality_NumbersCompareAcrossTypes(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"k": "a", "n": int32(1)},
		bson.M{"k": "b", "n": 1.0},
		bson.M{"k": "c", "n": int64(2)},
	)

	got, err := s.Find(context.Background(), "c", Query{Filter: bson.M{"n": 1}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestMemoryStore_NotEqual_MatchesMissingField(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"k": "a", "kode_group": "ACC"},
		bson.M{"k": "b", "kode_group": "CIN"},
		bson.M{"k": "c"},
	)

	got, err := FindAll[bson.M](context.Background(), s, "c", Query{Filter: bson.M{"kode_group": bson.M{"$ne": "ACC"}}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0]["k"] != "b" || got[1]["k"] != "c" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestMemoryStore_In(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"kategori": "X"},
		bson.M{"kategori": "Y"},
		bson.M{"kategori": "Z"},
	)

	got, err := s.Find(context.Background(), "c", Query{Filter: bson.M{"kategori": bson.M{"$in": []string{"X", "Z"}}}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestMemoryStore_NullFilter_MatchesAbsentAndNull(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"k": "a", "v": nil},
		bson.M{"k": "b"},
		bson.M{"k": "c", "v": "x"},
	)

	got, err := s.Find(context.Background(), "c", Query{Filter: bson.M{"v": nil}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestMemoryStore_SortLimit_NewestFirst(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"k": "first"},
		bson.M{"k": "second"},
		bson.M{"k": "third"},
	)

	got, err := FindOne[bson.M](context.Background(), s, "c", Query{Sort: NewestFirst()})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || (*got)["k"] != "third" {
		t.Fatalf("expected the last inserted document, got %v", got)
	}
}

func TestMemoryStore_Sort_MissingValuesSortLowest(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"k": "none"},
		bson.M{"k": "late", "input_date": "2024-05-01T10:00:00Z"},
		bson.M{"k": "early", "input_date": "2024-05-01T08:00:00Z"},
	)

	got, err := FindAll[bson.M](context.Background(), s, "c", Query{Sort: bson.D{{Key: "input_date", Value: -1}, {Key: "_id", Value: -1}}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	order := []string{}
	for _, d := range got {
		order = append(order, d["k"].(string))
	}
	if strings.Join(order, ",") != "late,early,none" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestMemoryStore_GeneratedIDsFollowInsertionOrder(t *testing.T) {
	type row struct {
		ID primitive.ObjectID `bson:"_id"`
		K  string             `bson:"k"`
	}
	s := seedStore(t, "c", row{K: "a"}, row{K: "b"})

	got, err := FindAll[row](context.Background(), s, "c", Query{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got[0].ID.IsZero() || got[1].ID.IsZero() {
		t.Fatalf("expected generated ids, got %v", got)
	}
	if got[0].ID.Hex() >= got[1].ID.Hex() {
		t.Fatalf("expected ascending ids, got %s then %s", got[0].ID.Hex(), got[1].ID.Hex())
	}
}

func TestMemoryStore_Distinct(t *testing.T) {
	s := seedStore(t, "c",
		bson.M{"g": "G1", "status_valid": "CANC"},
		bson.M{"g": "G1", "status_valid": "CANC"},
		bson.M{"g": "G2", "status_valid": "DONE"},
		bson.M{"g": "G3", "status_valid": "CANC"},
	)

	got, err := DistinctStrings(context.Background(), s, "c", "g", bson.M{"status_valid": "CANC"})
	if err != nil {
		t.Fatalf("distinct: %v", err)
	}
	if strings.Join(got, ",") != "G1,G3" {
		t.Fatalf("unexpected distinct values: %v", got)
	}
}

func TestMemoryStore_Strict_UnknownCollection(t *testing.T) {
	s := NewMemoryStore()
	if got, err := s.Find(context.Background(), "nope", Query{}); err != nil || len(got) != 0 {
		t.Fatalf("lenient store should return nothing, got %v, %v", got, err)
	}

	s.SetStrict(true)
	_, err := s.Find(context.Background(), "nope", Query{})
	if !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestMemoryStore_UnsupportedOperator(t *testing.T) {
	s := seedStore(t, "c", bson.M{"k": "a"})
	if _, err := s.Find(context.Background(), "c", Query{Filter: bson.M{"k": bson.M{"$regex": "a"}}}); err == nil {
		t.Fatalf("expected an error for $regex")
	}
}

func TestMemoryStore_LoadFixture(t *testing.T) {
	fixture := `{
		"audit_date": "2024-05-01",
		"system_date": "2024-05-02",
		"collections": {
			"tt_jual_detail": [
				{"_id": {"$oid": "650000000000000000000001"}, "kode_barcode": "B1", "harga_total": 50000},
				{"kode_barcode": "B2", "input_date": {"$date": "2024-05-01T09:00:00Z"}}
			]
		}
	}`

	s := NewMemoryStore()
	meta, err := s.LoadFixture(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.AuditDate != "2024-05-01" || meta.SystemDate != "2024-05-02" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if s.Count("tt_jual_detail") != 2 {
		t.Fatalf("expected 2 sale lines, got %d", s.Count("tt_jual_detail"))
	}

	sys, err := FindOne[bson.M](context.Background(), s, "tp_system", Query{})
	if err != nil || sys == nil || (*sys)["tgl_system"] != "2024-05-02" {
		t.Fatalf("expected a seeded tp_system row, got %v, %v", sys, err)
	}

	first, err := FindOne[bson.M](context.Background(), s, "tt_jual_detail", Query{Filter: bson.M{"kode_barcode": "B1"}})
	if err != nil || first == nil {
		t.Fatalf("find B1: %v", err)
	}
	if id, ok := (*first)["_id"].(primitive.ObjectID); !ok || id.Hex() != "650000000000000000000001" {
		t.Fatalf("expected the fixture _id to be kept, got %v", (*first)["_id"])
	}
}

func TestMemoryStore_LoadFixture_RequiresAuditDate(t *testing.T) {
	if _, err := NewMemoryStore().LoadFixture(strings.NewReader(`{"collections": {}}`)); err == nil {
		t.Fatalf("expected an error without audit_date")
	}
}
