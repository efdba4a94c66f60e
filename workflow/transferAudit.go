package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/utils"
	"go.mongodb.org/mongo-driver/bson"
)

func auditTransfers(ctx context.Context, d *domainAudit) error {
	lines, err := docstore.FindAll[models.TransferLine](ctx, d.store, models.CollectionTransferLines, docstore.Query{
		Filter: bson.M{"tgl_system": d.date(), "kode_group": bson.M{"$ne": models.GroupAccessories}},
	})
	if err != nil {
		return err
	}
	// Only the last move of the day decides where the item should be.
	latest := SelectLatest(lines, func(l models.TransferLine) string { return l.Barcode }, transferLineNewer)

	for _, l := range latest {
		if err := d.checkTransfer(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (d *domainAudit) checkTransfer(ctx context.Context, l models.TransferLine) error {
	location := bson.M{"kode_gudang": l.Warehouse, "kode_toko": l.Tray}
	item, err := docstore.FindOne[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
		Filter: bson.M{"kode_barcode": l.Barcode, "kode_gudang": l.Warehouse, "kode_toko": l.Tray},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	if item == nil {
		if err := d.report(ctx, models.Mismatch{
			Reason:   "item master location differs from transfer destination",
			Expected: location,
		}, "kode_barcode", l.Barcode); err != nil {
			return err
		}
	}

	source, err := d.ledger.Latest(ctx, d.date(), l.Barcode, bson.M{"kode_toko": l.SourceTray})
	if err != nil {
		return err
	}
	if source == nil ||
		!(source.StockOut > 0) ||
		!utils.WeightsEqual(source.WeightOut, l.Weight) ||
		source.StockEnd != 0 ||
		!utils.WeightsEqual(source.WeightEnd, 0) {
		var found any
		if source != nil {
			found = source
		}
		if err := d.report(ctx, models.Mismatch{
			Reason:   "source tray balance mismatch",
			Expected: bson.M{"stock_out": ">0", "berat_out": l.Weight, "stock_akhir": 0, "berat_akhir": 0},
			Found:    found,
		}, "kode_barcode", l.Barcode, "kode_baki_asal", l.SourceTray); err != nil {
			return err
		}
	}

	dest, err := d.ledger.Latest(ctx, d.date(), l.Barcode, bson.M{"kode_toko": l.Tray})
	if err != nil {
		return err
	}
	if dest == nil {
		return d.report(ctx, models.Mismatch{
			Reason:   "destination tray balance not found",
			Expected: d.ledger.Query(d.date(), l.Barcode, bson.M{"kode_toko": l.Tray}),
		}, "kode_barcode", l.Barcode, "kode_baki", l.Tray)
	}
	// Sold, destroyed or moved again since: the row belongs to the later event.
	if dest.StockSold > 0 || dest.StockDestroy > 0 || dest.StockOut > 0 {
		return nil
	}
	if !(dest.StockIn > 0) ||
		!utils.WeightsEqual(dest.WeightIn, l.Weight) ||
		dest.StockEnd != 1 ||
		!utils.WeightsEqual(dest.WeightEnd, l.Weight) {
		return d.report(ctx, models.Mismatch{
			Reason:   "destination tray balance mismatch",
			Expected: bson.M{"stock_in": ">0", "berat_in": l.Weight, "stock_akhir": 1, "berat_akhir": l.Weight},
			Found:    dest,
		}, "kode_barcode", l.Barcode, "kode_baki", l.Tray)
	}
	return nil
}
