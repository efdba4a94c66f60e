package workflow

import (
	"testing"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAuditServices_IntakePickupCancel(t *testing.T) {
	s := docstore.NewMemoryStore()
	insert(t, s, models.CollectionServiceLines,
		bson.M{"no_faktur_service": "SV-1", "tgl_system": testDate, "status_valid": models.StatusOpen, "status_proses": models.StatusOpen,
			"pembayaran": bson.A{bson.M{"jenis": "TUNAI", "jumlah_rp": 100}}},
		bson.M{"no_faktur_service": "SV-2", "tgl_system": testDate, "status_valid": models.StatusOpen, "status_proses": models.StatusClos,
			"pembayaran": bson.A{
				bson.M{"jenis": "TUNAI", "jumlah_rp": 100, "no_faktur_group": "SV-2"},
				bson.M{"jenis": "TUNAI", "jumlah_rp": 350},
			}},
		bson.M{"no_faktur_service": "SV-3", "tgl_system": testDate, "status_valid": models.StatusOpen, "status_proses": models.StatusCanc,
			"total_bayar": 100},
	)
	insert(t, s, models.CollectionCashDaily,
		cash(testDate, "SV-1", models.CashCategoryServiceIntake, encodedTunai, 100, 0),
		cash(testDate, "SV-2", models.CashCategoryServicePickup, encodedTunai, 350, 0),
		cash(testDate, "SV-3", models.CashCategoryServiceCancel, "", 0, 100),
	)
	if got := runDomain(t, s, models.DomainService); len(got) != 0 {
		t.Fatalf("expected no mismatch, got %+v", got)
	}
}

func TestAuditServices_RawMethodIsNotAccepted(t *testing.T) {
	s := docstore.NewMemoryStore()
	insert(t, s, models.CollectionServiceLines,
		bson.M{"no_faktur_service": "SV-4", "tgl_system": testDate, "status_valid": models.StatusOpen, "status_proses": models.StatusOpen,
			"pembayaran": bson.A{bson.M{"jenis": "TUNAI", "jumlah_rp": 100}}},
	)
	insert(t, s, models.CollectionCashDaily, cash(testDate, "SV-4", models.CashCategoryServiceIntake, "TUNAI", 100, 0))

	got := runDomain(t, s, models.DomainService)
	if len(got) != 1 || got[0].Reason != models.ReasonCashNotFound {
		t.Fatalf("expected the encoded lookup to miss, got %v", reasons(got))
	}
}
