package exporter

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendcli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTable() *domain.AttendanceTable {
	return &domain.AttendanceTable{
		Records: []domain.AttendanceRecord{
			{Name: "Alice Johnson", Email: "alice@example.com", MinutesInSession: 42, MeetingDate: "2026-08-01", MeetingTime: "18:00:00", Attended: true},
			{Name: "Bob Smith", Email: "bob@example.com", MinutesInSession: 0, MeetingDate: "2026-08-01", MeetingTime: "18:00:00", Attended: false},
		},
	}
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "attendance.csv")
	w := NewCSVWriter(testLogger())

	table := sampleTable()
	require.NoError(t, w.WriteSimpleCSV(path, AttendanceHeaders(), AttendanceRows(table)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3], "expected UTF-8 BOM")

	r := csv.NewReader(openSkippingBOM(t, path))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, AttendanceHeaders(), rows[0])
	assert.Equal(t, []string{"Alice Johnson", "alice@example.com", "42", "2026-08-01", "18:00:00", "true"}, rows[1])
	assert.Equal(t, "false", rows[2][5])
}

func openSkippingBOM(t *testing.T, path string) io.Reader {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	bom := make([]byte, 3)
	_, err = io.ReadFull(f, bom)
	require.NoError(t, err)
	return f
}

func TestExcelWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")
	w := NewExcelWriter(testLogger())

	require.NoError(t, w.WriteTable(path, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(attendanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, AttendanceHeaders(), rows[0])
	assert.Equal(t, "Alice Johnson", rows[1][0])
	assert.Equal(t, "42", rows[1][2])
}

func TestAttendanceRows_Empty(t *testing.T) {
	rows := AttendanceRows(&domain.AttendanceTable{})
	assert.Empty(t, rows)
}
