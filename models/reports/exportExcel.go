package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/nagatech/daily_audit/mismatchlog"
	"github.com/nagatech/daily_audit/models"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Ringkasan"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var detailHeadings = []string{"No", "Waktu", "Kode", "Alasan", "Expected", "Found", "Detail", "Lainnya"}

// keyFields are tried in order for the "Kode" column.
var keyFields = []string{"kode_barcode", "no_pesanan", "no_faktur_group", "no_titip_group", "no_faktur_hutang", "no_faktur_service", "no_faktur_beli"}

// BuildMismatchWorkbook renders a summary sheet and one sheet per domain of the summary.
func BuildMismatchWorkbook(auditDate string, printedAt time.Time, summary models.Summary, byDomain map[string][]models.Mismatch) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}

	f.SetCellValue(SummarySheet, "A1", "NAGATECH DAILY AUDIT REPORT")
	f.SetCellValue(SummarySheet, "A2", "Tanggal Audit")
	f.SetCellValue(SummarySheet, "B2", auditDate)
	f.SetCellValue(SummarySheet, "A3", "Waktu Cetak")
	f.SetCellValue(SummarySheet, "B3", printedAt.Format("2006-01-02 15:04:05"))
	f.SetCellValue(SummarySheet, "A5", "Modul")
	f.SetCellValue(SummarySheet, "B5", "Mismatch")

	domains := orderedDomains(summary)
	row := 6
	for _, domain := range domains {
		f.SetCellValue(SummarySheet, cell("A", row), domain)
		f.SetCellValue(SummarySheet, cell("B", row), summary.Counts[domain])
		row++
	}
	f.SetCellValue(SummarySheet, cell("A", row), models.SummaryTotalKey)
	f.SetCellValue(SummarySheet, cell("B", row), summary.Total)

	for _, domain := range domains {
		if err := writeDomainSheet(f, domain, byDomain[domain]); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", domain, err)
		}
	}
	return f, nil
}

func writeDomainSheet(f *excelize.File, domain string, mismatches []models.Mismatch) error {
	if _, err := f.NewSheet(domain); err != nil {
		return err
	}

	col := 'A'
	for _, h := range detailHeadings {
		f.SetCellValue(domain, string(col)+"1", h)
		col++
	}

	for i, m := range mismatches {
		rowNo := i + 2
		values := []interface{}{
			i + 1,
			m.Timestamp.UTC().Format(time.RFC3339),
			keyOf(m),
			m.Reason,
			jsonText(m.Expected),
			jsonText(m.Found),
			jsonText(m.Detail),
			jsonText(m.Context),
		}
		col := 'A'
		for _, value := range values {
			f.SetCellValue(domain, string(col)+fmt.Sprint(rowNo), value)
			col++
		}
	}
	return nil
}

// WriteMismatchWorkbook renders the logs of one audit date folder into mismatch_detail.xlsx.
func WriteMismatchWorkbook(dir, auditDate string, printedAt time.Time) (string, error) {
	f, err := loadWorkbook(dir, auditDate, printedAt)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, mismatchlog.ReportFile)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

// StreamMismatchWorkbook renders the same workbook straight to w.
func StreamMismatchWorkbook(w io.Writer, dir, auditDate string, printedAt time.Time) error {
	f, err := loadWorkbook(dir, auditDate, printedAt)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func loadWorkbook(dir, auditDate string, printedAt time.Time) (*excelize.File, error) {
	summary, err := mismatchlog.ReadSummary(dir)
	if err != nil {
		return nil, err
	}
	byDomain := make(map[string][]models.Mismatch, len(summary.Counts))
	for _, domain := range summary.Domains() {
		list, err := mismatchlog.ReadMismatches(dir, domain)
		if err != nil {
			return nil, err
		}
		byDomain[domain] = list
	}
	return BuildMismatchWorkbook(auditDate, printedAt, summary, byDomain)
}

// orderedDomains lists known domains in run order, then anything else by name.
func orderedDomains(summary models.Summary) []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range models.AuditDomains {
		if _, ok := summary.Counts[d]; ok {
			out = append(out, d)
			seen[d] = true
		}
	}
	var rest []string
	for d := range summary.Counts {
		if !seen[d] {
			rest = append(rest, d)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func keyOf(m models.Mismatch) string {
	for _, k := range keyFields {
		if v, ok := m.Context[k]; ok && v != nil && fmt.Sprint(v) != "" {
			return fmt.Sprint(v)
		}
	}
	if detail, ok := m.Detail.(map[string]any); ok {
		for _, k := range keyFields {
			if v, ok := detail[k]; ok && v != nil {
				return fmt.Sprint(v)
			}
		}
	}
	return "-"
}

func jsonText(v any) string {
	if v == nil {
		return ""
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return ""
	}
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

func cell(col string, row int) string {
	return col + fmt.Sprint(row)
}
