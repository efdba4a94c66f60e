package workflow

import (
	"context"
	"testing"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildBalanceQuery_ClosedStoreScopesByDate(t *testing.T) {
	q := BuildBalanceQuery("2024-05-01", "B1", true)
	if q["tanggal"] != "2024-05-01" || q["kode_barcode"] != "B1" {
		t.Fatalf("unexpected closed query %v", q)
	}

	q = BuildBalanceQuery("2024-05-01", "B1", false)
	if _, ok := q["tanggal"]; ok {
		t.Fatalf("open store query must not carry a date: %v", q)
	}
}

func TestResolveBalanceView(t *testing.T) {
	if ResolveBalanceView(true) != models.CollectionBalanceClosed {
		t.Fatalf("closed store should read %s", models.CollectionBalanceClosed)
	}
	if ResolveBalanceView(false) != models.CollectionBalanceLive {
		t.Fatalf("open store should read %s", models.CollectionBalanceLive)
	}
}

func TestBalanceLedger_Latest_FollowsRunFlag(t *testing.T) {
	s := docstore.NewMemoryStore()
	insert(t, s, models.CollectionBalanceLive,
		bson.M{"kode_barcode": "B1", "stock_jual": 0},
		bson.M{"kode_barcode": "B1", "stock_jual": 1},
	)
	insert(t, s, models.CollectionBalanceClosed,
		bson.M{"tanggal": "2024-04-30", "kode_barcode": "B1", "stock_akhir": 1},
		bson.M{"tanggal": "2024-05-01", "kode_barcode": "B1", "stock_akhir": 0},
		bson.M{"tanggal": "2024-05-02", "kode_barcode": "B1", "stock_akhir": 5},
	)
	ctx := context.Background()

	open := NewBalanceLedger(s, models.NewAuditRun("2024-05-01", "2024-05-01", "c", testClock))
	bal, err := open.Latest(ctx, "2024-05-01", "B1", nil)
	if err != nil || bal == nil || bal.StockSold != 1 {
		t.Fatalf("expected newest live row, got %+v (%v)", bal, err)
	}

	closed := NewBalanceLedger(s, models.NewAuditRun("2024-05-01", "2024-05-03", "c", testClock))
	bal, err = closed.Latest(ctx, "2024-05-01", "B1", nil)
	if err != nil || bal == nil || bal.Date != "2024-05-01" || bal.StockEnd != 0 {
		t.Fatalf("expected the 2024-05-01 snapshot, got %+v (%v)", bal, err)
	}

	bal, err = closed.Latest(ctx, "2024-05-01", "B1", bson.M{"kode_toko": "T9"})
	if err != nil || bal != nil {
		t.Fatalf("expected no row for another tray, got %+v (%v)", bal, err)
	}
}
