package intake

import (
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"freshops/internal"
	"freshops/internal/parse"
)

// ExportOrderReviewXLSX writes staged order rows to a spreadsheet staff can
// review before commit. Unresolved rows are included and flagged; the sheet
// never hides them.
func ExportOrderReviewXLSX(result parse.OrderResult, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"line_no", "raw_line", "qty", "uom", "price",
		"product_code", "product_name", "score", "status", "note",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range reviewRows(result) {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, row.LineNo)
		set(2, row.RawLine)
		set(3, row.Quantity)
		set(4, row.UOM)
		set(5, row.Price)
		set(6, row.ProductCode)
		set(7, row.ProductName)
		set(8, row.Score)
		set(9, row.Status)
		set(10, row.Note)
	}

	meta := "customer: unresolved"
	if result.Customer != nil {
		meta = "customer: " + result.Customer.Display()
	}
	if result.DeliveryDate != nil {
		meta += " | delivery: " + result.DeliveryDate.Format(time.DateOnly)
	}
	lastRow := len(result.Staging.Items()) + 3
	cell, _ := excelize.CoordinatesToCellName(1, lastRow)
	_ = f.SetCellValue(sheet, cell, meta)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func reviewRows(result parse.OrderResult) []internal.ReviewExportRow {
	items := result.Staging.Items()
	out := make([]internal.ReviewExportRow, 0, len(items))
	for i, item := range items {
		status := "resolved"
		if !item.Resolved() {
			status = "unresolved"
		}
		out = append(out, internal.ReviewExportRow{
			LineNo:      i + 1,
			RawLine:     item.RawLine,
			Quantity:    item.Quantity,
			UOM:         item.UOM,
			Price:       item.Price,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Score:       item.Score,
			Status:      status,
			Note:        item.Note,
		})
	}
	return out
}
