package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/pkg/contracts/domain"
)

const sampleExport = `Attendee Report
Topic,Meeting ID,Host
"Weekly Sync","123 456 7890","host@example.com"
"Scheduled Duration","60","1/10/2025 9:00:00 AM","90"
,
Attendee Details
Attended,User Name (Original Name),First Name,Email,Time in Session (minutes)
Yes,Alice Johnson,Alice,a@x.com,58
Yes,"Carter, Bob",Bob,b@x.com,5
No,Eve Moreau,Eve,e@x.com,0

Panelist Details
Attended,User Name (Original Name),Email
Yes,Host Person,host@example.com
`

func TestParseReport(t *testing.T) {
	report, err := ParseReport(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-10", report.StartDate)
	assert.Equal(t, "09:00:00", report.StartTime)
	assert.True(t, report.HasStartTime())

	require.Len(t, report.Attendees, 3)
	assert.Equal(t, domain.AttendeeRow{Name: "Alice Johnson", Email: "a@x.com", MinutesInSession: 58}, report.Attendees[0])
	// Quoted name containing a comma survives CSV parsing intact.
	assert.Equal(t, "Carter, Bob", report.Attendees[1].Name)
	assert.Equal(t, 0, report.Attendees[2].MinutesInSession)
}

func TestParseReport_StartTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantDate string
		wantTime string
	}{
		{
			name:     "afternoon timestamp",
			input:    "a\nb\nc\n\"x\",\"y\",\"12/31/2024 11:59:59 PM\"\n",
			wantDate: "2024-12-31",
			wantTime: "23:59:59",
		},
		{
			name:  "fewer than four lines",
			input: "a\nb\nc\n",
		},
		{
			name:  "metadata row too short",
			input: "a\nb\nc\nonly-one-field\n",
		},
		{
			name:  "timestamp fails to parse",
			input: "a\nb\nc\n\"x\",\"y\",\"2025-01-10T09:00:00Z\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseReport(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, report.StartDate)
			assert.Equal(t, tt.wantTime, report.StartTime)
		})
	}
}

func TestParseReport_AttendeeSection(t *testing.T) {
	header := "User Name (Original Name),Email,Time in Session (minutes)\n"

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "marker never found",
			body: "a\nb\nc\nd\nNo sections here\n",
			want: 0,
		},
		{
			name: "header lacks required column",
			body: "a\nb\nc\nd\nAttendee Details\nUser Name (Original Name),Email\nAlice,a@x.com\n",
			want: 0,
		},
		{
			name: "rows end at blank line",
			body: "a\nb\nc\nd\nAttendee Details\n" + header + "Alice,a@x.com,10\n\nBob,b@x.com,20\n",
			want: 1,
		},
		{
			name: "rows end at next Details section",
			body: "a\nb\nc\nd\nAttendee Details\n" + header + "Alice,a@x.com,10\nHost Details\nBob,b@x.com,20\n",
			want: 1,
		},
		{
			name: "marker requires exact trimmed match",
			body: "a\nb\nc\nd\n  Attendee Details  \n" + header + "Alice,a@x.com,10\n",
			want: 1,
		},
		{
			name: "marker is the last line",
			body: "a\nb\nc\nd\nAttendee Details",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseReport(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Len(t, report.Attendees, tt.want)
		})
	}
}

func TestParseReport_RowFiltering(t *testing.T) {
	body := "a\nb\nc\nd\nAttendee Details\n" +
		"Attended,User Name (Original Name),Email,Time in Session (minutes)\n" +
		"Yes,Alice,a@x.com,10\n" +
		"Yes,Short\n" +
		"Yes,Bob,b@x.com,n/a\n" +
		"No,Carol,c@x.com,0\n"

	report, err := ParseReport(strings.NewReader(body))
	require.NoError(t, err)

	// The short row and the non-numeric minutes row are skipped; the zero
	// minutes row is kept.
	require.Len(t, report.Attendees, 2)
	assert.Equal(t, "Alice", report.Attendees[0].Name)
	assert.Equal(t, "Carol", report.Attendees[1].Name)
}

func TestParseReport_HeaderColumnOrderIrrelevant(t *testing.T) {
	body := "a\nb\nc\nd\nAttendee Details\n" +
		"Time in Session (minutes),Email,User Name (Original Name)\n" +
		"42,a@x.com,Alice\n"

	report, err := ParseReport(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, report.Attendees, 1)
	assert.Equal(t, domain.AttendeeRow{Name: "Alice", Email: "a@x.com", MinutesInSession: 42}, report.Attendees[0])
}
