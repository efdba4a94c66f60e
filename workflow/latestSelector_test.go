package workflow

import (
	"testing"
	"time"

	"github.com/nagatech/daily_audit/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func oid(n byte) primitive.ObjectID {
	var id primitive.ObjectID
	id[11] = n
	return id
}

func TestSelectLatest_LatestWins_ForAnyRevisionCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		var lines []models.SaleLine
		for i := 1; i <= n; i++ {
			lines = append(lines, models.SaleLine{ID: oid(byte(i)), Barcode: "B1", InvoiceGroup: string(rune('a' + i))})
		}
		// Shuffle-ish: reverse so the newest is not first.
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
		got := SelectLatest(lines, func(l models.SaleLine) string { return l.Barcode }, saleLineNewer)
		if len(got) != 1 {
			t.Fatalf("n=%d: expected 1 record, got %d", n, len(got))
		}
		if got[0].ID != oid(byte(n)) {
			t.Fatalf("n=%d: expected newest id, got %v", n, got[0].ID)
		}
	}
}

func TestSelectLatest_OneRecordPerKey(t *testing.T) {
	lines := []models.SaleLine{
		{ID: oid(1), Barcode: "A"},
		{ID: oid(2), Barcode: "B"},
		{ID: oid(3), Barcode: "A"},
	}
	got := SelectLatest(lines, func(l models.SaleLine) string { return l.Barcode }, saleLineNewer)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != oid(3) || got[1].ID != oid(2) {
		t.Fatalf("unexpected order: %v %v", got[0].ID, got[1].ID)
	}
	if lines[0].ID != oid(1) {
		t.Fatalf("input was reordered")
	}
}

func TestTransferLineNewer_InputDateBeforeInsertionOrder(t *testing.T) {
	early := models.RecencyMarker{Set: true, Time: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	late := models.RecencyMarker{Set: true, Time: time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)}
	lines := []models.TransferLine{
		{ID: oid(9), Barcode: "X", Tray: "T1", InputDate: early},
		{ID: oid(1), Barcode: "X", Tray: "T2", InputDate: late},
		{ID: oid(10), Barcode: "X", Tray: "T3"},
	}
	got := SelectLatest(lines, func(l models.TransferLine) string { return l.Barcode }, transferLineNewer)
	if len(got) != 1 || got[0].Tray != "T2" {
		t.Fatalf("expected the later input_date to win, got %+v", got)
	}
}

func TestTransferLineNewer_FallsBackToId(t *testing.T) {
	same := models.RecencyMarker{Set: true, Time: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	lines := []models.TransferLine{
		{ID: oid(1), Barcode: "X", Tray: "T1", InputDate: same},
		{ID: oid(2), Barcode: "X", Tray: "T2", InputDate: same},
	}
	got := SelectLatest(lines, func(l models.TransferLine) string { return l.Barcode }, transferLineNewer)
	if got[0].Tray != "T2" {
		t.Fatalf("expected the later insert to win, got %s", got[0].Tray)
	}
}
