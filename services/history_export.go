package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hotel-frontdesk/models"
)

const (
	historySheet      = "History"
	maxExportRows     = 10000
	historyTimeLayout = "2006-01-02 15:04"
)

var historyHeaders = []string{"#", "Room", "Type", "Check-in", "Check-out", "Payment", "Staff", "Note"}

// ExportHistory writes every history record matching q's filters (paging is
// ignored) to an xlsx workbook, capped at maxExportRows rows.
func (f *FrontDesk) ExportHistory(ctx context.Context, q models.HistoryQuery) (*bytes.Buffer, error) {
	q.Page = 1
	q.Limit = models.MaxHistoryLimit

	var (
		records      []models.HistoryRecord
		totalPayment int64
	)
	for len(records) < maxExportRows {
		page, err := f.History(ctx, q)
		if err != nil {
			return nil, err
		}
		totalPayment = page.TotalPayment
		records = append(records, page.Records...)
		if len(page.Records) < q.Limit || int64(len(records)) >= page.Total {
			break
		}
		q.Page++
	}
	if len(records) > maxExportRows {
		records = records[:maxExportRows]
	}

	return buildHistoryWorkbook(records, totalPayment)
}

func buildHistoryWorkbook(records []models.HistoryRecord, totalPayment int64) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}

	for i, header := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, r := range records {
		row := i + 2
		checkout := ""
		if r.CheckoutTime != nil {
			checkout = r.CheckoutTime.Format(historyTimeLayout)
		}
		values := []interface{}{
			i + 1,
			r.RoomNumber,
			string(r.Type),
			r.CheckinTime.Format(historyTimeLayout),
			checkout,
			r.Payment,
			r.StaffID,
			r.Note,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(historySheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	summaryRow := len(records) + 3
	f.SetCellValue(historySheet, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(historySheet, fmt.Sprintf("F%d", summaryRow), totalPayment)

	f.SetColWidth(historySheet, "A", "A", 6)
	f.SetColWidth(historySheet, "B", "C", 10)
	f.SetColWidth(historySheet, "D", "E", 18)
	f.SetColWidth(historySheet, "F", "F", 12)
	f.SetColWidth(historySheet, "G", "G", 14)
	f.SetColWidth(historySheet, "H", "H", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
