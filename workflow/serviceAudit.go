package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

func auditServices(ctx context.Context, d *domainAudit) error {
	find := func(process string) ([]models.ServiceLine, error) {
		return docstore.FindAll[models.ServiceLine](ctx, d.store, models.CollectionServiceLines, docstore.Query{
			Filter: bson.M{"tgl_system": d.date(), "status_valid": models.StatusOpen, "status_proses": process},
		})
	}

	intake, err := find(models.StatusOpen)
	if err != nil {
		return err
	}
	for _, s := range intake {
		for _, p := range s.Payments {
			exp := moneyIn(d.date(), s.InvoiceNo, models.CashCategoryServiceIntake, p.AmountDecimal()).
				WithMethod(d.encode(p.Method))
			detail := map[string]any{"jenis": "SERVICE MASUK", "no_faktur_service": s.InvoiceNo, "jenis_pembayaran": p.Method}
			if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
				return err
			}
		}
	}

	pickup, err := find(models.StatusClos)
	if err != nil {
		return err
	}
	for _, s := range pickup {
		for _, p := range s.Payments {
			// Intake payments are stamped with the invoice group; only pickup payments lack it.
			if p.HasInvoiceGroup {
				continue
			}
			exp := moneyIn(d.date(), s.InvoiceNo, models.CashCategoryServicePickup, p.AmountDecimal()).
				WithMethod(d.encode(p.Method))
			detail := map[string]any{"jenis": "SERVICE AMBIL", "no_faktur_service": s.InvoiceNo, "jenis_pembayaran": p.Method}
			if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
				return err
			}
		}
	}

	cancelled, err := find(models.StatusCanc)
	if err != nil {
		return err
	}
	for _, s := range cancelled {
		exp := moneyOut(d.date(), s.InvoiceNo, models.CashCategoryServiceCancel, decimal.NewFromFloat(s.TotalPaid))
		detail := map[string]any{"jenis": "BATAL SERVICE", "no_faktur_service": s.InvoiceNo}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}
