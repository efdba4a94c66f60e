package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ResolveBalanceView picks the stock ledger collection: the per-date closed snapshot once the
// store has closed the audit date, the live running balance otherwise.
func ResolveBalanceView(isClosedStore bool) string {
	if isClosedStore {
		return models.CollectionBalanceClosed
	}
	return models.CollectionBalanceLive
}

// BuildBalanceQuery scopes a closed-store lookup to the exact date. A live lookup has no date
// and simply reads the newest row of the barcode.
func BuildBalanceQuery(date, barcode string, isClosedStore bool) bson.M {
	q := bson.M{"kode_barcode": barcode}
	if isClosedStore {
		q["tanggal"] = date
	}
	return q
}

// BalanceLedger routes every balance lookup of a run. It takes the run's store-closed flag
// and never works it out on its own.
type BalanceLedger struct {
	store         docstore.Store
	isClosedStore bool
}

func NewBalanceLedger(store docstore.Store, run models.AuditRun) BalanceLedger {
	return BalanceLedger{store: store, isClosedStore: run.IsClosedStore}
}

func (l BalanceLedger) View() string {
	return ResolveBalanceView(l.isClosedStore)
}

func (l BalanceLedger) Query(date, barcode string, extra bson.M) bson.M {
	q := BuildBalanceQuery(date, barcode, l.isClosedStore)
	for k, v := range extra {
		q[k] = v
	}
	return q
}

// Latest returns the newest balance row matching the lookup, or nil.
func (l BalanceLedger) Latest(ctx context.Context, date, barcode string, extra bson.M) (*models.Balance, error) {
	return docstore.FindOne[models.Balance](ctx, l.store, l.View(), docstore.Query{
		Filter: l.Query(date, barcode, extra),
		Sort:   docstore.NewestFirst(),
	})
}
