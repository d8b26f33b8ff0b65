// Package export renders booking reports as xlsx workbooks for the
// administrator console.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"regatta/internal/models"
)

var bookingColumns = []string{
	"Booking ID", "Yacht", "Customer", "Email", "Phone",
	"Start Date", "End Date", "Days", "Total Price", "Status",
	"Created At", "Last Updated",
}

// BookingReport builds an xlsx workbook from bookings, one sheet per report.
type BookingReport struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

// NewBookingReport creates an empty report with the given sheet name.
func NewBookingReport(sheet string) (*BookingReport, error) {
	// Excel caps sheet names at 31 chars.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if sheet == "" {
		sheet = "Bookings"
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)

	r := &BookingReport{file: f, sheet: sheet, currentRow: 1}
	if err := r.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func (r *BookingReport) writeHeader() error {
	for i, col := range bookingColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, r.currentRow)
		if err != nil {
			return err
		}
		if err := r.file.SetCellValue(r.sheet, cell, col); err != nil {
			return err
		}
	}

	style, err := r.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, r.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(bookingColumns), r.currentRow)
		_ = r.file.SetCellStyle(r.sheet, startCell, endCell, style)
	}

	r.currentRow++
	return nil
}

// Add appends one booking row.
func (r *BookingReport) Add(b *models.Booking) error {
	row := []interface{}{
		b.ID,
		b.YachtName,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		b.StartDate.Format("2006-01-02"),
		b.EndDate.Format("2006-01-02"),
		b.Range().Days(),
		b.TotalPrice,
		string(b.Status),
		b.CreatedAt.Format("2006-01-02 15:04"),
		b.LastUpdated.Format("2006-01-02 15:04"),
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, r.currentRow)
		if err != nil {
			return err
		}
		if err := r.file.SetCellValue(r.sheet, cell, val); err != nil {
			return err
		}
	}

	r.currentRow++
	return nil
}

// AddAll appends every booking in order.
func (r *BookingReport) AddAll(bookings []models.Booking) error {
	for i := range bookings {
		if err := r.Add(&bookings[i]); err != nil {
			return fmt.Errorf("add booking %s: %w", bookings[i].ID, err)
		}
	}
	return nil
}

// Rows returns the number of data rows written so far.
func (r *BookingReport) Rows() int {
	return r.currentRow - 2
}

// Save writes the workbook to w.
func (r *BookingReport) Save(w io.Writer) error {
	return r.file.Write(w)
}

// Close releases workbook resources.
func (r *BookingReport) Close() error {
	return r.file.Close()
}
