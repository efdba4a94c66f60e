package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

func auditConsignments(ctx context.Context, d *domainAudit) error {
	rows, err := docstore.FindAll[models.Consignment](ctx, d.store, models.CollectionConsignments, docstore.Query{
		Filter: bson.M{"tgl_system": d.date()},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		d.debug("no consignment on the audit date", nil)
		return nil
	}
	latest := SelectLatest(rows, func(c models.Consignment) string { return c.Barcode }, consignmentNewer)

	for _, c := range latest {
		if c.Status != models.StatusClose || c.State != models.StatusOpen {
			continue
		}
		for _, p := range c.Payments {
			exp := moneyIn(c.SystemDate, c.GroupNo, "", p.AmountDecimal()).WithMethod(d.encode(p.Method))
			// Older POS builds book the deposit under the legacy category.
			exp.Categories = []string{models.CashCategoryConsignmentLegacy, models.CashCategoryConsignment}
			detail := map[string]any{"jenis": "TITIPAN MASUK", "no_titip_group": c.GroupNo, "jenis_pembayaran": p.Method, "jumlah_rp": p.Amount}
			if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
				return err
			}
		}
	}

	for _, c := range latest {
		if c.Status != models.StatusClose || c.State != models.StatusClose || c.CancelDate != d.date() {
			continue
		}
		if err := d.checkConsignmentReturn(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (d *domainAudit) checkConsignmentReturn(ctx context.Context, c models.Consignment) error {
	item, err := docstore.FindOne[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
		Filter: bson.M{
			"kode_barcode": c.Barcode,
			"kode_gudang":  bson.M{"$ne": models.LocationConsignment},
			"kode_toko":    bson.M{"$ne": models.LocationConsignment},
		},
		Sort: docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	if item == nil {
		if err := d.report(ctx, models.Mismatch{Reason: "item not returned to stock in item master"},
			"kode_barcode", c.Barcode, "no_titip_group", c.GroupNo); err != nil {
			return err
		}
	}

	bal, err := d.ledger.Latest(ctx, c.CancelDate, c.Barcode, nil)
	if err != nil {
		return err
	}
	if bal == nil {
		if err := d.report(ctx, models.Mismatch{Reason: "balance row not found for cancelled consignment"},
			"kode_barcode", c.Barcode, "no_titip_group", c.GroupNo); err != nil {
			return err
		}
	}

	exp := moneyOut(c.CancelDate, c.GroupNo, models.CashCategoryConsignmentCancel, decimal.NewFromFloat(c.Deposit))
	detail := map[string]any{"jenis": "BATAL TITIP", "no_titip_group": c.GroupNo, "dp": c.Deposit}
	return d.cash.Validate(ctx, exp, detail, decimal.Zero)
}
