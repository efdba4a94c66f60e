package workflow

import (
	"bytes"
	"sort"

	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SelectLatest keeps exactly one record per key: the one ranked first by newer. Records the
// ranking cannot separate keep their input order, so the result is deterministic for a
// fixed input. Output follows the ranking of each key's winner.
func SelectLatest[T any](records []T, key func(T) string, newer func(a, b T) bool) []T {
	ranked := make([]T, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return newer(ranked[i], ranked[j])
	})

	seen := make(map[string]bool, len(ranked))
	out := make([]T, 0, len(ranked))
	for _, r := range ranked {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func idNewer(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) > 0
}

func saleLineNewer(a, b models.SaleLine) bool         { return idNewer(a.ID, b.ID) }
func purchaseLineNewer(a, b models.PurchaseLine) bool { return idNewer(a.ID, b.ID) }
func consignmentNewer(a, b models.Consignment) bool   { return idNewer(a.ID, b.ID) }

// transferLineNewer ranks by the explicit input_date first and falls back to insertion order.
func transferLineNewer(a, b models.TransferLine) bool {
	if c := a.InputDate.Compare(b.InputDate); c != 0 {
		return c > 0
	}
	return idNewer(a.ID, b.ID)
}
