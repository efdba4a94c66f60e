package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/utils"
	"go.mongodb.org/mongo-driver/bson"
)

func auditDestructions(ctx context.Context, d *domainAudit) error {
	lines, err := docstore.FindAll[models.DestructionLine](ctx, d.store, models.CollectionDestructionLines, docstore.Query{
		Filter: bson.M{"tgl_system": d.date(), "kode_group": bson.M{"$ne": models.GroupAccessories}},
	})
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		d.debug("no destruction on the audit date", nil)
		return nil
	}

	for _, l := range lines {
		item, err := docstore.FindOne[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
			Filter: bson.M{"kode_barcode": l.Barcode},
			Sort:   docstore.NewestFirst(),
		})
		if err != nil {
			return err
		}
		if item == nil {
			if err := d.report(ctx, models.Mismatch{Reason: "item master not found"}, "kode_barcode", l.Barcode); err != nil {
				return err
			}
			continue
		}
		if !isTrue(item.Destroyed) || item.StockOnHand != 0 {
			if err := d.report(ctx, models.Mismatch{
				Reason:   "item master not marked destroyed",
				Expected: bson.M{"status_hancur": true, "stock_on_hand": 0},
				Found:    bson.M{"status_hancur": item.Destroyed, "stock_on_hand": item.StockOnHand},
			}, "kode_barcode", l.Barcode); err != nil {
				return err
			}
		}

		bal, err := d.ledger.Latest(ctx, d.date(), l.Barcode, nil)
		if err != nil {
			return err
		}
		if bal == nil {
			if err := d.report(ctx, models.Mismatch{Reason: "balance row not found"},
				"kode_barcode", l.Barcode, "is_closed_store", d.run.IsClosedStore); err != nil {
				return err
			}
			continue
		}
		// A sale or transfer after the destruction owns the newest row.
		if bal.StockSold > 0 || bal.StockOut > 0 {
			continue
		}

		if !(bal.StockDestroy > 0) ||
			!utils.WeightsEqual(bal.WeightDestroy, l.Weight) ||
			bal.StockEnd != 0 ||
			!utils.WeightsEqual(bal.WeightEnd, 0) {
			if err := d.report(ctx, models.Mismatch{
				Reason: "balance mismatch",
				Expected: bson.M{
					"stock_hancur": ">0",
					"berat_hancur": l.Weight,
					"stock_akhir":  0,
					"berat_akhir":  0,
				},
				Found: bal,
			}, "kode_barcode", l.Barcode); err != nil {
				return err
			}
		}
	}
	return nil
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
