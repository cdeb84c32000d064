// internal/app/features/contacts/export.go
package contacts

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/liststate"
	"github.com/dalemusser/contacthub/internal/app/system/listview"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Contacts"

var exportHeader = []string{
	"Name",
	"Type",
	"Status",
	"Email",
	"Phone",
	"Country",
	"Join Date",
	"Created",
	"Updated",
}

var exportWidths = []float64{30, 14, 10, 32, 18, 10, 12, 20, 20}

// ServeExport handles GET /contacts/export.xlsx: every row of the current
// filtered and sorted view, all pages, as one worksheet.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "contacts export")
	defer cancel()

	state := h.listState(r)
	page, err := h.Queries.List(ctx, cacheScope(r), liststate.ServerParams(state, h.today()))
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "contacts export fetch failed", err, upstreamStatus(err),
			"The contacts could not be loaded for export.", listURL(state))
		return
	}

	rows := listview.FilterStatus(page.Data, state.Status)
	rows = listview.Sort(rows, state.SortField, state.SortDir)

	buf, err := buildWorkbook(rows)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build export workbook failed", err, "The export could not be created.", listURL(state))
		return
	}

	h.Log.Info("contacts exported", zap.Int("rows", len(rows)), zap.String("subject", principalSubject(r)))

	filename := "contacts-" + h.today().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(buf.Bytes())
}

// buildWorkbook writes rows into a single-sheet workbook.
func buildWorkbook(rows []models.Contact) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(exportSheet, colName, colName, exportWidths[col]); err != nil {
			return nil, fmt.Errorf("column width %s: %w", colName, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, c := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row cell: %w", err)
		}
		values := []any{
			c.DisplayName,
			c.ContactType.Label(),
			c.StatusLabel(),
			c.Email(),
			c.Phone(),
			c.Country(),
			c.JoinDateString(),
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
