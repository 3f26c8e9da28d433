package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"attendcli/pkg/contracts/domain"
)

const attendanceSheet = "Attendance"

// ExcelWriter provides xlsx export functionality.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteTable writes the attendance table to an xlsx workbook with a single
// sheet, header row first.
func (w *ExcelWriter) WriteTable(filePath string, table *domain.AttendanceTable) error {
	w.logger.Info("Writing Excel file",
		slog.String("file_path", filePath),
		slog.Int("record_count", table.Len()))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(attendanceSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := w.writeRow(f, 1, AttendanceHeaders()); err != nil {
		return err
	}
	for i, row := range AttendanceRows(table) {
		if err := w.writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(attendanceSheet, "A", "B", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %w", err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(attendanceSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
