package workflow

import (
	"testing"
	"time"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson"
)

func seedTransfer(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	s := docstore.NewMemoryStore()
	insert(t, s, models.CollectionTransferLines,
		bson.M{"kode_barcode": "M1", "kode_group": "CIN", "tgl_system": testDate, "kode_gudang": "G1",
			"kode_baki_asal": "A", "kode_baki": "B", "berat": 4.2,
			"input_date": time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		bson.M{"kode_barcode": "M1", "kode_group": "CIN", "tgl_system": testDate, "kode_gudang": "G1",
			"kode_baki_asal": "B", "kode_baki": "C", "berat": 4.2,
			"input_date": time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)},
	)
	insert(t, s, models.CollectionItems, bson.M{"kode_barcode": "M1", "kode_gudang": "G1", "kode_toko": "C"})
	return s
}

func TestAuditTransfers_LastMoveMatches(t *testing.T) {
	s := seedTransfer(t)
	insert(t, s, models.CollectionBalanceLive,
		bson.M{"kode_barcode": "M1", "kode_toko": "B", "stock_out": 1, "berat_out": 4.2, "stock_akhir": 0, "berat_akhir": 0},
		bson.M{"kode_barcode": "M1", "kode_toko": "C", "stock_in": 1, "berat_in": 4.2004, "stock_akhir": 1, "berat_akhir": 4.2},
	)
	if got := runDomain(t, s, models.DomainTransfer); len(got) != 0 {
		t.Fatalf("expected no mismatch, got %v", reasons(got))
	}
}

func TestAuditTransfers_MissingDestinationAndSource(t *testing.T) {
	s := seedTransfer(t)
	got := runDomain(t, s, models.DomainTransfer)
	want := []string{"source tray balance mismatch", "destination tray balance not found"}
	r := reasons(got)
	if len(r) != 2 || r[0] != want[0] || r[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, r)
	}
	if got[1].Context["kode_baki"] != "C" {
		t.Fatalf("expected the last destination tray, got %v", got[1].Context)
	}
}

func TestAuditTransfers_DestinationMovedOnSkipped(t *testing.T) {
	s := seedTransfer(t)
	insert(t, s, models.CollectionBalanceLive,
		bson.M{"kode_barcode": "M1", "kode_toko": "B", "stock_out": 1, "berat_out": 4.2, "stock_akhir": 0, "berat_akhir": 0},
		bson.M{"kode_barcode": "M1", "kode_toko": "C", "stock_in": 1, "stock_jual": 1, "stock_akhir": 0},
	)
	if got := runDomain(t, s, models.DomainTransfer); len(got) != 0 {
		t.Fatalf("expected the sold destination row to be skipped, got %v", reasons(got))
	}
}

func TestAuditTransfers_WrongMasterLocation(t *testing.T) {
	s := docstore.NewMemoryStore()
	insert(t, s, models.CollectionTransferLines, bson.M{"kode_barcode": "M2", "kode_group": "CIN", "tgl_system": testDate,
		"kode_gudang": "G1", "kode_baki_asal": "A", "kode_baki": "B", "berat": 1.0})
	insert(t, s, models.CollectionItems, bson.M{"kode_barcode": "M2", "kode_gudang": "G1", "kode_toko": "A"})
	insert(t, s, models.CollectionBalanceLive,
		bson.M{"kode_barcode": "M2", "kode_toko": "A", "stock_out": 1, "berat_out": 1.0, "stock_akhir": 0, "berat_akhir": 0},
		bson.M{"kode_barcode": "M2", "kode_toko": "B", "stock_in": 1, "berat_in": 1.0, "stock_akhir": 1, "berat_akhir": 1.0},
	)
	got := runDomain(t, s, models.DomainTransfer)
	if len(got) != 1 || got[0].Reason != "item master location differs from transfer destination" {
		t.Fatalf("expected a location mismatch, got %v", reasons(got))
	}
}
