package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"attendcli/pkg/contracts/domain"
)

const (
	// attendeeSectionMarker introduces the attendee header row; the line
	// must equal the marker after trimming.
	attendeeSectionMarker = "Attendee Details"

	// startTimeLayout is the literal timestamp format Zoom writes into the
	// metadata row, e.g. "1/9/2025 9:05:30 AM".
	startTimeLayout = "1/2/2006 3:04:05 PM"

	columnName    = "User Name (Original Name)"
	columnEmail   = "Email"
	columnMinutes = "Time in Session (minutes)"
)

// ParseReport reads one raw export file and extracts the meeting's start
// timestamp plus the attendee rows. Every structural anomaly short of a
// read failure is non-fatal: a malformed metadata row yields an absent
// start time, a missing attendee section or header column yields an empty
// attendee list.
func ParseReport(r io.Reader) (*domain.MeetingReport, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	report := &domain.MeetingReport{}
	report.StartDate, report.StartTime = extractStartTime(lines)
	report.Attendees = extractAttendees(lines)
	return report, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\uFEFF")
	}
	return lines, scanner.Err()
}

// extractStartTime pulls the actual start timestamp out of the metadata row:
// line 4, 3rd comma-separated field, quoted. The timestamp never contains a
// comma, so a plain split is safe here.
func extractStartTime(lines []string) (date, timeOfDay string) {
	if len(lines) < 4 {
		return "", ""
	}

	parts := strings.Split(lines[3], ",")
	if len(parts) < 3 {
		return "", ""
	}

	raw := strings.Trim(strings.TrimSpace(parts[2]), `"`)
	start, err := time.Parse(startTimeLayout, raw)
	if err != nil {
		slog.Debug("export start timestamp not parseable",
			slog.String("value", raw),
			slog.String("error", err.Error()))
		return "", ""
	}

	return start.Format("2006-01-02"), start.Format("15:04:05")
}

// extractAttendees scans for the "Attendee Details" marker, reads the header
// row below it to locate the required columns by name, then reads data rows
// with CSV quoting rules until a blank line or a line announcing another
// "Details" section.
func extractAttendees(lines []string) []domain.AttendeeRow {
	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == attendeeSectionMarker {
			headerIdx = i + 1
			break
		}
	}
	if headerIdx < 0 || headerIdx >= len(lines) {
		return nil
	}

	var section []string
	for _, line := range lines[headerIdx:] {
		if strings.TrimSpace(line) == "" || strings.Contains(line, "Details") {
			break
		}
		section = append(section, line)
	}
	if len(section) == 0 {
		return nil
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(section, "\n")))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil
	}

	nameIdx := indexOf(header, columnName)
	emailIdx := indexOf(header, columnEmail)
	minutesIdx := indexOf(header, columnMinutes)
	if nameIdx < 0 || emailIdx < 0 || minutesIdx < 0 {
		slog.Debug("attendee header missing required columns",
			slog.Any("header", header))
		return nil
	}

	need := max3(nameIdx, emailIdx, minutesIdx) + 1

	var rows []domain.AttendeeRow
	for {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single unreadable row does not discard the rest.
			continue
		}
		if len(cols) < need {
			continue
		}

		rawMinutes := strings.TrimSpace(cols[minutesIdx])
		minutes, err := strconv.Atoi(rawMinutes)
		if err != nil {
			slog.Warn("skipping attendee row with non-numeric minutes",
				slog.String("name", strings.TrimSpace(cols[nameIdx])),
				slog.String("minutes", rawMinutes))
			continue
		}

		rows = append(rows, domain.AttendeeRow{
			Name:             strings.TrimSpace(cols[nameIdx]),
			Email:            strings.TrimSpace(cols[emailIdx]),
			MinutesInSession: minutes,
		})
	}
	return rows
}

func indexOf(fields []string, want string) int {
	for i, f := range fields {
		if f == want {
			return i
		}
	}
	return -1
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
