package exporter

import (
	"strconv"

	"attendcli/pkg/contracts/domain"
)

// AttendanceHeaders returns the column headers for an exported table.
func AttendanceHeaders() []string {
	return []string{"Name", "Email", "Minutes In Session", "Meeting Date", "Meeting Time", "Attended"}
}

// AttendanceRows flattens a table into export rows, one per record, in
// ingestion order.
func AttendanceRows(table *domain.AttendanceTable) [][]string {
	rows := make([][]string, 0, table.Len())
	for _, rec := range table.Records {
		rows = append(rows, []string{
			rec.Name,
			rec.Email,
			strconv.Itoa(rec.MinutesInSession),
			rec.MeetingDate,
			rec.MeetingTime,
			formatBool(rec.Attended),
		})
	}
	return rows
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
