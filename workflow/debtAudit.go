package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

func auditDebts(ctx context.Context, d *domainAudit) error {
	find := func(filter bson.M) ([]models.DebtLine, error) {
		filter["status_valid"] = models.StatusDone
		return docstore.FindAll[models.DebtLine](ctx, d.store, models.CollectionDebtLines, docstore.Query{Filter: filter})
	}

	opened, err := find(bson.M{"tgl_hutang": d.date(), "status_hutang": models.StatusOpen})
	if err != nil {
		return err
	}
	for _, h := range opened {
		exp := moneyOut(h.DebtDate, h.InvoiceNo, models.CashCategoryDebt, decimal.NewFromFloat(h.Amount))
		detail := map[string]any{"jenis": "HUTANG MASUK", "no_faktur_hutang": h.InvoiceNo, "jumlah_hutang": h.Amount}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}

	cancelled, err := find(bson.M{"tgl_system": d.date(), "status_hutang": models.StatusCanc})
	if err != nil {
		return err
	}
	for _, h := range cancelled {
		exp := moneyIn(h.SystemDate, h.InvoiceNo, models.CashCategoryDebtCancel, decimal.NewFromFloat(h.Amount))
		detail := map[string]any{"jenis": "BATAL HUTANG", "no_faktur_hutang": h.InvoiceNo, "jumlah_hutang": h.Amount}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}

	settled, err := find(bson.M{"tgl_lunas": d.date(), "status_hutang": models.StatusClos})
	if err != nil {
		return err
	}
	for _, h := range settled {
		if err := d.checkSettlement(ctx, h); err != nil {
			return err
		}
	}

	reopened, err := find(bson.M{"tgl_system": d.date(), "status_hutang": models.StatusOpen, "tgl_lunas": models.NotSettled})
	if err != nil {
		return err
	}
	for _, h := range reopened {
		exp := CashExpectation{
			Date:        h.DebtDate,
			Description: h.InvoiceNo,
			Categories:  []string{models.CashCategoryDebtSettleCancel},
		}
		detail := map[string]any{"jenis": "BATAL PELUNASAN HUTANG", "no_faktur_hutang": h.InvoiceNo}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}

// checkSettlement sums every settlement entry of the debt; a pay-off may be split across methods.
func (d *domainAudit) checkSettlement(ctx context.Context, h models.DebtLine) error {
	entries, err := docstore.FindAll[models.CashEntry](ctx, d.store, models.CollectionCashDaily, docstore.Query{
		Filter: bson.M{
			"tanggal":   h.SettledDate,
			"status":    models.CashStatusOpen,
			"deskripsi": h.InvoiceNo,
			"kategori":  models.CashCategoryDebtSettlement,
		},
	})
	if err != nil {
		return err
	}

	total := decimal.Zero
	lines := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		total = total.Add(e.In())
		lines = append(lines, map[string]any{"jenis": e.Method, "jumlah_in": e.AmountIn})
	}
	if total.Equal(decimal.NewFromFloat(h.TotalPaid)) {
		return nil
	}
	return d.report(ctx, models.Mismatch{
		Reason:   "settlement cash total mismatch",
		Expected: h.TotalPaid,
		Found:    total.InexactFloat64(),
		Detail:   lines,
	}, "jenis", "PELUNASAN HUTANG", "no_faktur_hutang", h.InvoiceNo)
}
