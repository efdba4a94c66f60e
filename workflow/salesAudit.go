package workflow

import (
	"context"
	"fmt"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

var saleGroups = GroupSpec[models.SaleLine]{
	GroupID:  func(l models.SaleLine) string { return l.InvoiceGroup },
	Amount:   func(l models.SaleLine) decimal.Decimal { return decimal.NewFromFloat(l.TotalPrice) },
	Payments: func(l models.SaleLine) []models.Payment { return l.Payments },
	Document: func(l models.SaleLine) string { return l.Barcode },
}

func auditSales(ctx context.Context, d *domainAudit) error {
	lines, err := docstore.FindAll[models.SaleLine](ctx, d.store, models.CollectionSaleLines, docstore.Query{
		Filter: bson.M{"tgl_system": d.date()},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	latest := SelectLatest(lines, func(l models.SaleLine) string { return l.Barcode }, saleLineNewer)

	var completed, cancelled []models.SaleLine
	for _, l := range latest {
		if l.Status != models.StatusDone {
			continue
		}
		switch l.ReturnStatus {
		case models.StatusOpen:
			completed = append(completed, l)
		case models.StatusCanc:
			cancelled = append(cancelled, l)
		}
	}

	returned, err := distinctSet(ctx, d.store, models.CollectionSaleLines, "no_faktur_group", bson.M{
		"tgl_system":     d.date(),
		"status_kembali": models.StatusCanc,
	})
	if err != nil {
		return err
	}

	for _, g := range AggregateGroups(completed, saleGroups, returned) {
		if err := d.auditCompletedSale(ctx, g); err != nil {
			return err
		}
	}
	for _, g := range AggregateGroups(cancelled, saleGroups, nil) {
		if g.HasFee() {
			d.debug("cancelled sale paid with fee, skipped", map[string]any{"no_faktur_group": g.ID})
			continue
		}
		if err := d.auditCancelledSale(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (d *domainAudit) auditCompletedSale(ctx context.Context, g *Group[models.SaleLine]) error {
	for _, line := range g.Members {
		if err := d.checkSoldItem(ctx, line, 0, 1); err != nil {
			return err
		}
	}

	for _, p := range g.Payments {
		exp := moneyIn(d.date(), g.ID, models.CashCategorySale, p.Amount).WithMethod(p.Method)
		detail := map[string]any{
			"no_faktur_group": g.ID,
			"jenis":           p.Method,
			"jumlah_rp":       p.Amount.InexactFloat64(),
			"fee":             p.FeePercent.InexactFloat64(),
		}
		if err := d.cash.Validate(ctx, exp, detail, p.FeePercent); err != nil {
			return err
		}
	}
	return nil
}

func (d *domainAudit) auditCancelledSale(ctx context.Context, g *Group[models.SaleLine]) error {
	for _, line := range g.Members {
		if err := d.checkSoldItem(ctx, line, 1, 0); err != nil {
			return err
		}
	}

	exp := moneyOut(d.date(), g.ID, models.CashCategorySaleCancel, g.Total)
	detail := map[string]any{"no_faktur_group": g.ID, "kode_barcode": g.Documents}
	return d.cash.Validate(ctx, exp, detail, decimal.Zero)
}

// checkSoldItem verifies the master on-hand quantity and the ledger's sold count of one line.
func (d *domainAudit) checkSoldItem(ctx context.Context, line models.SaleLine, onHand, sold float64) error {
	item, err := docstore.FindOne[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
		Filter: bson.M{"kode_barcode": line.Barcode, "stock_on_hand": onHand},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	if item == nil {
		if err := d.report(ctx, models.Mismatch{
			Reason:   fmt.Sprintf("item master stock_on_hand is not %v", onHand),
			Expected: bson.M{"stock_on_hand": onHand},
		}, "kode_barcode", line.Barcode, "no_faktur_group", line.InvoiceGroup); err != nil {
			return err
		}
	}

	bal, err := d.ledger.Latest(ctx, d.date(), line.Barcode, nil)
	if err != nil {
		return err
	}
	if bal == nil {
		return d.report(ctx, models.Mismatch{
			Reason:   "balance row not found",
			Expected: d.ledger.Query(d.date(), line.Barcode, nil),
		}, "kode_barcode", line.Barcode, "no_faktur_group", line.InvoiceGroup, "is_closed_store", d.run.IsClosedStore)
	}
	if bal.StockSold != sold {
		return d.report(ctx, models.Mismatch{
			Reason:   "stock_jual mismatch",
			Expected: sold,
			Found:    bal.StockSold,
		}, "kode_barcode", line.Barcode, "no_faktur_group", line.InvoiceGroup)
	}
	return nil
}
