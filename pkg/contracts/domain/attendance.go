package domain

// MeetingKey identifies a distinct meeting instance. Two records sharing the
// same (date, time) pair belong to the same meeting. Records whose source
// file had an unparseable start timestamp all collapse to the zero key.
type MeetingKey struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// IsZero reports whether the key carries no timestamp information.
func (k MeetingKey) IsZero() bool {
	return k.Date == "" && k.Time == ""
}

// AttendanceRecord is one row per (attendee, meeting), as reported by a
// single export file. Name and email come through verbatim from the source;
// email is the case-insensitive identity key and may be empty.
type AttendanceRecord struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	MinutesInSession int    `json:"minutes_in_session" validate:"min=0"`
	MeetingDate      string `json:"meeting_date"`
	MeetingTime      string `json:"meeting_time"`
	Attended         bool   `json:"attended"`
}

// Key returns the meeting key the record belongs to.
func (r AttendanceRecord) Key() MeetingKey {
	return MeetingKey{Date: r.MeetingDate, Time: r.MeetingTime}
}

// AttendanceTable is the unified record set produced by one ingestion run.
// It is an ordered, append-only snapshot: no dedup is performed and it is
// rebuilt fully on every run.
type AttendanceTable struct {
	Records []AttendanceRecord `json:"records"`
}

// Len returns the number of records in the table.
func (t *AttendanceTable) Len() int {
	return len(t.Records)
}

// MeetingKeys returns the distinct meeting keys in first-encounter order.
func (t *AttendanceTable) MeetingKeys() []MeetingKey {
	seen := make(map[MeetingKey]struct{}, len(t.Records))
	keys := make([]MeetingKey, 0)
	for _, rec := range t.Records {
		k := rec.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// AttendeeRow is one participant line inside a single export's attendee
// section, before the meeting key is attached.
type AttendeeRow struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	MinutesInSession int    `json:"minutes_in_session"`
}

// MeetingReport is the parsed form of one raw export file: the meeting's
// start timestamp (absent when line 4 was missing or malformed) and the
// attendee rows found under the "Attendee Details" section.
type MeetingReport struct {
	// StartDate and StartTime are the meeting's actual start in
	// "2006-01-02" / "15:04:05" form; both empty when the timestamp could
	// not be extracted.
	StartDate string        `json:"start_date"`
	StartTime string        `json:"start_time"`
	Attendees []AttendeeRow `json:"attendees"`
}

// HasStartTime reports whether the export carried a parseable start
// timestamp.
func (m *MeetingReport) HasStartTime() bool {
	return m.StartDate != "" || m.StartTime != ""
}
