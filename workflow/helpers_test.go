package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

const testDate = "2024-05-01"

var testClock = time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)

func newTestAuditor(store docstore.Store) (*Auditor, *mismatchlog.Recorder) {
	rec := mismatchlog.NewRecorder()
	a := NewAuditor(store, rec, WithClock(func() time.Time { return testClock }))
	return a, rec
}

func insert(t *testing.T, s *docstore.MemoryStore, collection string, docs ...any) {
	t.Helper()
	if err := s.Insert(collection, docs...); err != nil {
		t.Fatalf("insert %s: %v", collection, err)
	}
}

// runDomain runs a single validator against an open store.
func runDomain(t *testing.T, store docstore.Store, domain string) []models.Mismatch {
	t.Helper()
	return runDomainOn(t, store, domain, models.NewAuditRun(testDate, "", "test", testClock))
}

func runDomainOn(t *testing.T, store docstore.Store, domain string, run models.AuditRun) []models.Mismatch {
	t.Helper()
	a, rec := newTestAuditor(store)
	res, err := a.Run(context.Background(), run, []string{domain})
	if err != nil {
		t.Fatalf("run %s: %v", domain, err)
	}
	got := rec.ByDomain(domain)
	if res.Summary.Counts[domain] != len(got) {
		t.Fatalf("summary count %d, recorded %d", res.Summary.Counts[domain], len(got))
	}
	return got
}

func reasons(ms []models.Mismatch) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Reason)
	}
	return out
}

func cash(date, desc, category, method string, in, out float64) bson.M {
	doc := bson.M{
		"tanggal":    date,
		"status":     models.CashStatusOpen,
		"deskripsi":  desc,
		"kategori":   category,
		"jumlah_in":  in,
		"jumlah_out": out,
	}
	if method != "" {
		doc["jenis"] = method
	}
	return doc
}

func decimalOf(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
