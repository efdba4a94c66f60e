package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

func auditOrders(ctx context.Context, d *domainAudit) error {
	find := func(filter bson.M) ([]models.Order, error) {
		filter["tanggal"] = d.date()
		return docstore.FindAll[models.Order](ctx, d.store, models.CollectionOrders, docstore.Query{Filter: filter})
	}

	deposits, err := find(bson.M{"status_validasi": models.StatusClose, "status_pesanan": models.StatusOpen})
	if err != nil {
		return err
	}
	for _, o := range deposits {
		for _, p := range o.Payments {
			if !p.HasDescription || p.Description != models.PaymentTagOrderDeposit {
				continue
			}
			exp := moneyIn(o.Date, o.OrderNo, models.CashCategoryOrderDeposit, p.AmountDecimal()).WithMethod(p.Method)
			detail := map[string]any{"jenis": "PESANAN MASUK", "no_pesanan": o.OrderNo, "jenis_pembayaran": p.Method, "jumlah_rp": p.Amount}
			if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
				return err
			}
		}
	}

	done, err := find(bson.M{"status_pesanan": models.StatusDone})
	if err != nil {
		return err
	}
	for _, o := range done {
		if err := d.checkOrderItems(ctx, o); err != nil {
			return err
		}
	}

	finished, err := find(bson.M{"status_pesanan": models.StatusFinish})
	if err != nil {
		return err
	}
	for _, o := range finished {
		if err := d.checkOrderPickup(ctx, o); err != nil {
			return err
		}
	}

	cancelled, err := find(bson.M{"status_validasi": models.StatusClose, "status_pesanan": models.StatusClose})
	if err != nil {
		return err
	}
	for _, o := range cancelled {
		if len(o.Payments) == 0 {
			d.debug("cancelled order without payment, cash check skipped", map[string]any{"no_pesanan": o.OrderNo})
			continue
		}
		exp := moneyOut(o.Date, o.OrderNo, models.CashCategoryOrderCancel, decimal.NewFromFloat(o.AmountPaid))
		detail := map[string]any{"jenis": "BATAL PESANAN", "no_pesanan": o.OrderNo, "jumlah_bayar": o.AmountPaid}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}

	all, err := find(bson.M{})
	if err != nil {
		return err
	}
	for _, o := range all {
		for _, p := range o.Payments {
			// A top-up carries no deskripsi key at all; an empty one is not a top-up.
			if p.HasDescription {
				continue
			}
			exp := moneyIn(o.Date, o.OrderNo, models.CashCategoryOrderTopUp, p.AmountDecimal()).WithMethod(d.encode(p.Method))
			detail := map[string]any{"jenis": "TAMBAH DP PESANAN", "no_pesanan": o.OrderNo, "jenis_pembayaran": p.Method, "jumlah_rp": p.Amount}
			if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkOrderItems expects every piece made for a completed order to have entered the ledger.
func (d *domainAudit) checkOrderItems(ctx context.Context, o models.Order) error {
	items, err := docstore.FindAll[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
		Filter: bson.M{"no_pesanan": o.OrderNo},
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return d.report(ctx, models.Mismatch{Reason: "order item not found in item master"}, "no_pesanan", o.OrderNo)
	}

	for _, item := range items {
		bal, err := d.ledger.Latest(ctx, d.date(), item.Barcode, nil)
		if err != nil {
			return err
		}
		if bal == nil {
			if err := d.report(ctx, models.Mismatch{Reason: "balance row not found for order item"},
				"no_pesanan", o.OrderNo, "kode_barcode", item.Barcode); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkOrderPickup follows a finished order to the sale that released the piece.
func (d *domainAudit) checkOrderPickup(ctx context.Context, o models.Order) error {
	item, err := docstore.FindOne[models.Item](ctx, d.store, models.CollectionItems, docstore.Query{
		Filter: bson.M{"no_pesanan": o.OrderNo, "stock_on_hand": 0},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	if item == nil {
		if err := d.report(ctx, models.Mismatch{Reason: "order item still on hand in item master"}, "no_pesanan", o.OrderNo); err != nil {
			return err
		}
	}

	sale, err := docstore.FindOne[models.SaleLine](ctx, d.store, models.CollectionSaleLines, docstore.Query{
		Filter: bson.M{"no_pesanan": o.OrderNo, "status_valid": models.StatusDone, "status_kembali": models.StatusOpen},
		Sort:   docstore.NewestFirst(),
	})
	if err != nil {
		return err
	}
	if sale == nil {
		return d.report(ctx, models.Mismatch{Reason: "sale for order not found"}, "no_pesanan", o.OrderNo)
	}

	if item != nil {
		bal, err := d.ledger.Latest(ctx, sale.SystemDate, item.Barcode, nil)
		if err != nil {
			return err
		}
		if bal == nil || bal.StockSold != 1 || bal.StockEnd != 0 {
			var found any
			if bal != nil {
				found = bson.M{"stock_jual": bal.StockSold, "stock_akhir": bal.StockEnd}
			}
			if err := d.report(ctx, models.Mismatch{
				Reason:   "sold balance mismatch",
				Expected: bson.M{"stock_jual": 1, "stock_akhir": 0},
				Found:    found,
			}, "no_pesanan", o.OrderNo, "kode_barcode", item.Barcode); err != nil {
				return err
			}
		}
	}

	for _, p := range sale.Payments {
		exp := moneyIn(sale.SystemDate, sale.InvoiceGroup, models.CashCategorySale, p.AmountDecimal()).WithMethod(p.Method)
		detail := map[string]any{"jenis": "AMBIL PESANAN", "no_pesanan": o.OrderNo, "jenis_pembayaran": p.Method, "jumlah_rp": p.Amount}
		if err := d.cash.Validate(ctx, exp, detail, decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}
