package reports

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/xuri/excelize/v2"
)

func TestWriteMismatchWorkbook_SummaryAndDomainSheets(t *testing.T) {
	base := t.TempDir()
	sink := mismatchlog.NewFileSink(base, "2024-05-01", nil)
	if err := sink.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	ts := time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)
	emit := []models.Mismatch{
		{Timestamp: ts, Domain: models.DomainSale, Reason: models.ReasonCashNotFound, Detail: map[string]any{"no_faktur_group": "FJ-1"}},
		{Timestamp: ts, Domain: models.DomainSale, Reason: "stock_jual mismatch", Expected: 1, Found: 0, Context: map[string]any{"kode_barcode": "B1"}},
		{Timestamp: ts, Domain: models.DomainDestruction, Reason: "balance row not found", Context: map[string]any{"kode_barcode": "H1"}},
	}
	for _, m := range emit {
		if err := sink.Emit(context.Background(), m); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	summary := models.NewSummary(map[string]int{models.DomainSale: 2, models.DomainDestruction: 1, models.DomainDebt: 0})
	if err := sink.RecordRun(context.Background(), models.AuditRun{}, summary, ts); err != nil {
		t.Fatalf("record run: %v", err)
	}

	path, err := WriteMismatchWorkbook(sink.Dir(), "2024-05-01", ts)
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if filepath.Base(path) != mismatchlog.ReportFile {
		t.Fatalf("unexpected report path %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SummarySheet, models.DomainDestruction, models.DomainDebt, models.DomainSale}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	total, _ := f.GetCellValue(SummarySheet, "B9")
	if total != "3" {
		t.Fatalf("expected total 3, got %q", total)
	}
	rows, err := f.GetRows(models.DomainSale)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[1][2] != "FJ-1" || rows[2][2] != "B1" {
		t.Fatalf("unexpected sale rows %v", rows)
	}
}
