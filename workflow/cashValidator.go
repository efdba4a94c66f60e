package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

var hundred = decimal.NewFromInt(100)

// CashExpectation is the journal line a transaction should have produced. Exactly one of
// AmountIn and AmountOut is set, or neither when only existence is checked.
type CashExpectation struct {
	Date        string
	Description string
	Categories  []string
	Method      *string
	AmountIn    *decimal.Decimal
	AmountOut   *decimal.Decimal
}

func moneyIn(date, description, category string, amount decimal.Decimal) CashExpectation {
	return CashExpectation{Date: date, Description: description, Categories: []string{category}, AmountIn: &amount}
}

func moneyOut(date, description, category string, amount decimal.Decimal) CashExpectation {
	return CashExpectation{Date: date, Description: description, Categories: []string{category}, AmountOut: &amount}
}

func (e CashExpectation) WithMethod(method string) CashExpectation {
	e.Method = &method
	return e
}

// WithFee inflates the incoming amount by feePercent; the POS books card fees into the entry.
func (e CashExpectation) WithFee(feePercent decimal.Decimal) CashExpectation {
	if !feePercent.IsPositive() || e.AmountIn == nil {
		return e
	}
	inflated := e.AmountIn.Add(e.AmountIn.Mul(feePercent).Div(hundred))
	e.AmountIn = &inflated
	return e
}

// Filter is the tt_cash_daily lookup for the expectation.
func (e CashExpectation) Filter() bson.M {
	f := bson.M{
		"tanggal":   e.Date,
		"status":    models.CashStatusOpen,
		"deskripsi": e.Description,
	}
	switch len(e.Categories) {
	case 0:
	case 1:
		f["kategori"] = e.Categories[0]
	default:
		f["kategori"] = bson.M{"$in": e.Categories}
	}
	if e.Method != nil {
		f["jenis"] = *e.Method
	}
	if e.AmountIn != nil {
		f["jumlah_in"] = e.AmountIn.InexactFloat64()
	}
	if e.AmountOut != nil {
		f["jumlah_out"] = e.AmountOut.InexactFloat64()
	}
	return f
}

// CashValidator looks up the journal entry of an expectation and reports what diverges.
type CashValidator struct {
	store docstore.Store
	emit  func(context.Context, models.Mismatch) error
}

// Validate does a single lookup. Only store and sink failures are returned.
func (v CashValidator) Validate(ctx context.Context, exp CashExpectation, detail any, feePercent decimal.Decimal) error {
	exp = exp.WithFee(feePercent)
	filter := exp.Filter()

	entry, err := docstore.FindOne[models.CashEntry](ctx, v.store, models.CollectionCashDaily, docstore.Query{Filter: filter})
	if err != nil {
		return err
	}
	if entry == nil {
		return v.emit(ctx, models.Mismatch{
			Reason:   models.ReasonCashNotFound,
			Expected: filter,
			Detail:   detail,
		})
	}

	if exp.AmountIn != nil && !entry.In().Equal(*exp.AmountIn) {
		if err := v.emit(ctx, models.Mismatch{
			Reason:   models.ReasonAmountInDiffer,
			Expected: exp.AmountIn.InexactFloat64(),
			Found:    entry.AmountIn,
			Detail:   detail,
		}); err != nil {
			return err
		}
	}
	if exp.AmountOut != nil && !entry.Out().Equal(*exp.AmountOut) {
		return v.emit(ctx, models.Mismatch{
			Reason:   models.ReasonAmountOutDiffer,
			Expected: exp.AmountOut.InexactFloat64(),
			Found:    entry.AmountOut,
			Detail:   detail,
		})
	}
	return nil
}
