package workflow

import (
	"context"

	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// PaymentTotal is the sum of one (method, fee) bucket of a group.
type PaymentTotal struct {
	Method     string
	FeePercent decimal.Decimal
	Amount     decimal.Decimal
}

type Group[T any] struct {
	ID        string
	Members   []T
	Total     decimal.Decimal
	Payments  []PaymentTotal
	Documents []string
	hasFee    bool
	index     map[models.PaymentKey]int
}

// HasFee reports whether any member paid with a non-zero fee percentage.
func (g *Group[T]) HasFee() bool {
	return g.hasFee
}

// GroupSpec says how to read a record. Only GroupID is required.
type GroupSpec[T any] struct {
	GroupID  func(T) string
	Amount   func(T) decimal.Decimal
	Payments func(T) []models.Payment
	Document func(T) string
}

// AggregateGroups folds records into groups in order of first appearance. Groups named in
// excluded are dropped entirely.
func AggregateGroups[T any](records []T, spec GroupSpec[T], excluded map[string]bool) []*Group[T] {
	byID := map[string]*Group[T]{}
	var groups []*Group[T]

	for _, r := range records {
		id := spec.GroupID(r)
		if excluded[id] {
			continue
		}
		g, ok := byID[id]
		if !ok {
			g = &Group[T]{ID: id, index: map[models.PaymentKey]int{}}
			byID[id] = g
			groups = append(groups, g)
		}

		g.Members = append(g.Members, r)
		if spec.Amount != nil {
			g.Total = g.Total.Add(spec.Amount(r))
		}
		if spec.Document != nil {
			g.Documents = append(g.Documents, spec.Document(r))
		}
		if spec.Payments == nil {
			continue
		}
		for _, p := range spec.Payments(r) {
			if p.FeePercent != 0 {
				g.hasFee = true
			}
			key := p.Key()
			i, ok := g.index[key]
			if !ok {
				i = len(g.Payments)
				g.index[key] = i
				g.Payments = append(g.Payments, PaymentTotal{Method: p.Method, FeePercent: p.Fee()})
			}
			g.Payments[i].Amount = g.Payments[i].Amount.Add(p.AmountDecimal())
		}
	}
	return groups
}

// distinctSet collects the values of field over the full (not deduplicated) filter result.
// A group with a cancelled line anywhere on the date is excluded from completed-path checks.
func distinctSet(ctx context.Context, store docstore.Store, collection, field string, filter bson.M) (map[string]bool, error) {
	values, err := docstore.DistinctStrings(ctx, store, collection, field, filter)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set, nil
}
