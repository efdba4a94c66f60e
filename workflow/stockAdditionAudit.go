package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson"
)

// auditStockAdditions expects every piece bought in on the audit date to have a ledger row.
func auditStockAdditions(ctx context.Context, d *domainAudit) error {
	items, err := docstore.FindAll[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
		Filter: bson.M{"tgl_last_beli": d.date(), "kode_group": bson.M{"$ne": models.GroupAccessories}},
	})
	if err != nil {
		return err
	}
	for _, item := range items {
		bal, err := d.ledger.Latest(ctx, d.date(), item.Barcode, nil)
		if err != nil {
			return err
		}
		if bal != nil {
			continue
		}
		if err := d.report(ctx, models.Mismatch{
			Reason:   "balance row not found for new item",
			Expected: d.ledger.Query(d.date(), item.Barcode, nil),
		}, "kode_barcode", item.Barcode, "is_closed_store", d.run.IsClosedStore); err != nil {
			return err
		}
	}
	return nil
}
