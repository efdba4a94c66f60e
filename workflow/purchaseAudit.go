package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

var purchaseGroups = GroupSpec[models.PurchaseLine]{
	GroupID:  func(l models.PurchaseLine) string { return l.InvoiceGroup },
	Amount:   func(l models.PurchaseLine) decimal.Decimal { return decimal.NewFromFloat(l.Price) },
	Document: func(l models.PurchaseLine) string { return l.InvoiceNo },
}

func auditPurchases(ctx context.Context, d *domainAudit) error {
	lines, err := docstore.FindAll[models.PurchaseLine](ctx, d.store, models.CollectionPurchaseLines, docstore.Query{
		Filter: bson.M{"tgl_system": d.date()},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	// Untagged goods all share the "-" barcode and collapse into one line here.
	latest := SelectLatest(lines, func(l models.PurchaseLine) string { return l.Barcode }, purchaseLineNewer)

	cancelledGroups, err := distinctSet(ctx, d.store, models.CollectionPurchaseLines, "no_faktur_group", bson.M{
		"tgl_system":   d.date(),
		"status_valid": models.StatusCanc,
	})
	if err != nil {
		return err
	}

	var done, cancelled, destroyed []models.PurchaseLine
	for _, l := range latest {
		switch l.Status {
		case models.StatusDone:
			done = append(done, l)
		case models.StatusCanc:
			cancelled = append(cancelled, l)
		}
		if l.Destroyed {
			destroyed = append(destroyed, l)
		}
	}

	for _, g := range AggregateGroups(done, purchaseGroups, cancelledGroups) {
		for _, l := range g.Members {
			if err := d.checkExchangedSale(ctx, l, true); err != nil {
				return err
			}
		}
		exp := moneyOut(d.date(), g.ID, models.CashCategoryPurchase, g.Total)
		detail := map[string]any{"no_faktur_group": g.ID, "no_faktur_beli": g.Documents}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}

	for _, l := range cancelled {
		if err := d.checkExchangedSale(ctx, l, false); err != nil {
			return err
		}
		exp := moneyIn(d.date(), l.InvoiceNo, models.CashCategoryPurchaseCancel, decimal.NewFromFloat(l.Price))
		detail := map[string]any{"no_faktur_beli": l.InvoiceNo, "kode_barcode": l.Barcode}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}

	for _, l := range destroyed {
		row, err := docstore.FindOne[models.PurchaseDestruction](ctx, d.store, models.CollectionPurchaseDestroyed, docstore.Query{
			Filter: bson.M{"tgl_system": d.date(), "kode_dept": l.Department},
		})
		if err != nil {
			return err
		}
		if row == nil {
			if err := d.report(ctx, models.Mismatch{
				Reason:   "destroyed purchase not recorded",
				Expected: bson.M{"tgl_system": d.date(), "kode_dept": l.Department},
			}, "no_faktur_beli", l.InvoiceNo, "kode_barcode", l.Barcode); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkExchangedSale compares status_tukar on the sale a buy-back came from. Lines without a
// barcode, or without a sale on the same date, are not checked.
func (d *domainAudit) checkExchangedSale(ctx context.Context, l models.PurchaseLine, want bool) error {
	if l.Barcode == models.NoBarcode {
		return nil
	}
	sale, err := docstore.FindOne[models.SaleLine](ctx, d.store, models.CollectionSaleLines, docstore.Query{
		Filter: bson.M{"kode_barcode": l.Barcode, "tgl_system": l.SystemDate},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil || sale == nil {
		return err
	}
	if sale.Exchanged != nil && *sale.Exchanged == want {
		return nil
	}

	var found any
	if sale.Exchanged != nil {
		found = *sale.Exchanged
	}
	return d.report(ctx, models.Mismatch{
		Reason:   "status_tukar mismatch",
		Expected: want,
		Found:    found,
	}, "kode_barcode", l.Barcode, "no_faktur_beli", l.InvoiceNo, "no_faktur_group", sale.InvoiceGroup)
}
