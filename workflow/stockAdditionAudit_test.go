package workflow

import (
	"testing"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAuditStockAdditions_EveryNewItemNeedsBalance(t *testing.T) {
	s := docstore.NewMemoryStore()
	insert(t, s, models.CollectionItems,
		bson.M{"kode_barcode": "N1", "kode_group": "CIN", "tgl_last_beli": testDate},
		bson.M{"kode_barcode": "N2", "kode_group": "CIN", "tgl_last_beli": testDate},
		bson.M{"kode_barcode": "N3", "kode_group": models.GroupAccessories, "tgl_last_beli": testDate},
		bson.M{"kode_barcode": "N4", "kode_group": "CIN", "tgl_last_beli": "2024-04-30"},
	)
	insert(t, s, models.CollectionBalanceLive, bson.M{"kode_barcode": "N1", "stock_in": 1})

	got := runDomain(t, s, models.DomainStockAddition)
	if len(got) != 1 || got[0].Context["kode_barcode"] != "N2" {
		t.Fatalf("expected only N2 to be reported, got %+v", got)
	}
	if got[0].Context["is_closed_store"] != false {
		t.Fatalf("expected the run flag in the context, got %v", got[0].Context)
	}
}
