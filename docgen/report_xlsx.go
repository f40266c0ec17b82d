package docgen

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows     = 1048576
	defaultSheetName = "Documents"
	defaultDateTime  = "yyyy-mm-dd hh:mm:ss"
)

var historyColumns = []string{
	"ID", "Definition", "Title", "Format", "Theme", "State",
	"Requested By", "Tenant", "Workspace",
	"Tokens", "Pages", "Bytes",
	"Created At", "Completed At", "Expires At",
}

// HistoryReport writes document records into an XLSX workbook. Operators
// pull these for retention audits and usage reviews.
type HistoryReport struct {
	SheetName string
	Format    FormatOptions
	MaxRows   int
}

// Write streams records into a workbook and returns the bytes written.
func (r HistoryReport) Write(ctx context.Context, records []DocumentRecord, w io.Writer) (int64, error) {
	if w == nil {
		return 0, AsGoError(NewError(KindValidation, "output writer is required", nil))
	}

	formatter, err := newFormatContext(r.Format)
	if err != nil {
		return 0, AsGoError(err)
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheetName := r.SheetName
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetName {
		file.SetSheetName(defaultSheet, sheetName)
	}

	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return 0, AsGoError(err)
	}

	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, AsGoError(err)
	}
	dateTimeFmt := defaultDateTime
	dateTimeID, err := file.NewStyle(&excelize.Style{CustomNumFmt: &dateTimeFmt})
	if err != nil {
		return 0, AsGoError(err)
	}

	headers := make([]interface{}, len(historyColumns))
	for i, label := range historyColumns {
		headers[i] = excelize.Cell{StyleID: headerID, Value: label}
	}
	if err := stream.SetRow("A1", headers); err != nil {
		return 0, AsGoError(err)
	}

	maxRows := r.MaxRows
	if maxRows <= 0 || maxRows > excelMaxRows-1 {
		maxRows = excelMaxRows - 1
	}

	rowIndex := 2
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return 0, AsGoError(err)
		}
		if i >= maxRows {
			return 0, AsGoError(NewError(KindValidation, "xlsx row limit exceeded", nil))
		}

		cells := historyRow(record, formatter, dateTimeID)
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), cells); err != nil {
			return 0, AsGoError(err)
		}
		rowIndex++
	}

	if err := stream.Flush(); err != nil {
		return 0, AsGoError(err)
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return cw.count, AsGoError(err)
	}
	return cw.count, nil
}

func historyRow(record DocumentRecord, formatter formatContext, dateTimeID int) []interface{} {
	timeCell := func(value interface{}) excelize.Cell {
		if t, ok := coerceTime(value); ok && !t.IsZero() {
			return excelize.Cell{Value: formatter.applyTimezone(t), StyleID: dateTimeID}
		}
		return excelize.Cell{Value: ""}
	}

	return []interface{}{
		excelize.Cell{Value: record.ID},
		excelize.Cell{Value: record.Definition},
		excelize.Cell{Value: record.Title},
		excelize.Cell{Value: string(record.Format)},
		excelize.Cell{Value: record.Theme},
		excelize.Cell{Value: string(record.State)},
		excelize.Cell{Value: record.RequestedBy.ID},
		excelize.Cell{Value: record.Scope.TenantID},
		excelize.Cell{Value: record.Scope.WorkspaceID},
		excelize.Cell{Value: record.Counts.Processed},
		excelize.Cell{Value: int64(record.Pages)},
		excelize.Cell{Value: record.BytesWritten},
		timeCell(record.CreatedAt),
		timeCell(record.CompletedAt),
		timeCell(record.ExpiresAt),
	}
}
