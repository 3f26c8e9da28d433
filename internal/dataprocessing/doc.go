// Package dataprocessing turns raw Zoom attendance export files into the
// unified attendance table the query engine runs against.
//
// An export file is one meeting. ParseReport extracts the meeting's actual
// start timestamp and the attendee rows from a single file; Aggregator runs
// the parser over every available source and concatenates the results into
// one domain.AttendanceTable. Per-file anomalies (missing timestamp, missing
// attendee section, malformed rows) degrade that file's contribution but
// never abort the run.
package dataprocessing
