package query

import (
	"log/slog"
	"sort"
	"strings"

	"attendcli/pkg/contracts/domain"
)

// Result kinds for the single free-text entry point.
const (
	KindEmail = "email"
	KindName  = "name"
)

// Result is the tagged outcome of one free-text query. Email queries fill
// MeetingsAttended; name queries fill Matches. TotalMeetings is set either
// way.
type Result struct {
	Kind             string      `json:"kind"`
	Query            string      `json:"query"`
	MeetingsAttended int         `json:"meetings_attended"`
	TotalMeetings    int         `json:"total_meetings"`
	Matches          []NameMatch `json:"matches,omitempty"`
}

// NameMatch is one fuzzy-matched participant name with its aggregate stats.
// Email holds the single distinct email when the name maps to exactly one;
// Emails holds the full distinct set otherwise.
type NameMatch struct {
	Name             string   `json:"name"`
	Email            string   `json:"email,omitempty"`
	Emails           []string `json:"emails,omitempty"`
	Score            float64  `json:"score"`
	MeetingsAttended int      `json:"meetings_attended"`
	TotalMeetings    int      `json:"total_meetings"`
}

// Config tunes the fuzzy-matching contract.
type Config struct {
	// SimilarityThreshold is the minimum 0-1 score a candidate name must
	// reach to be reported.
	SimilarityThreshold float64
	// MaxMatches caps the ranked match list.
	MaxMatches int
}

// DefaultConfig returns the standard threshold (0.5) and cap (5).
func DefaultConfig() Config {
	return Config{SimilarityThreshold: 0.5, MaxMatches: 5}
}

// Engine resolves lookups against an attendance table. It holds no state
// beyond its configuration.
type Engine struct {
	logger    *slog.Logger
	threshold float64
	cap       int
}

// NewEngine creates a query engine. A nil logger falls back to slog.Default;
// zero config fields fall back to the defaults.
func NewEngine(logger *slog.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = DefaultConfig().MaxMatches
	}
	return &Engine{
		logger:    logger.With(slog.String("component", "query_engine")),
		threshold: cfg.SimilarityThreshold,
		cap:       cfg.MaxMatches,
	}
}

// TotalMeetings counts the distinct (date, time) pairs across the table.
// Meetings with unparseable timestamps collapse to the single empty pair;
// callers treat that as a known skew.
func (e *Engine) TotalMeetings(table *domain.AttendanceTable) int {
	return len(table.MeetingKeys())
}

// Search routes a free-text query: anything containing '@' is resolved as
// an email, everything else as a fuzzy name lookup.
func (e *Engine) Search(table *domain.AttendanceTable, q string) Result {
	if strings.Contains(q, "@") {
		return e.ByEmail(table, q)
	}
	return e.ByName(table, q)
}

// ByEmail resolves a case-insensitive exact email match. Meetings attended
// counts distinct meeting keys among matching rows where the attendee was
// actually present (minutes > 0). Zero matches is not an error.
func (e *Engine) ByEmail(table *domain.AttendanceTable, email string) Result {
	attended := make(map[domain.MeetingKey]struct{})
	for _, rec := range table.Records {
		if rec.Attended && strings.EqualFold(rec.Email, email) {
			attended[rec.Key()] = struct{}{}
		}
	}
	return Result{
		Kind:             KindEmail,
		Query:            email,
		MeetingsAttended: len(attended),
		TotalMeetings:    e.TotalMeetings(table),
	}
}

// ByName runs an approximate match of the query against every distinct
// non-empty name in the table, keeping candidates at or above the
// similarity threshold, ranked by descending score and capped. Ties keep
// the order in which names were first encountered in the table, so output
// is deterministic for a given table. A query containing '@' is routed to
// ByEmail instead.
func (e *Engine) ByName(table *domain.AttendanceTable, name string) Result {
	if strings.Contains(name, "@") {
		return e.ByEmail(table, name)
	}

	total := e.TotalMeetings(table)

	var candidates []NameMatch
	for _, candidate := range distinctNames(table) {
		score := Similarity(name, candidate)
		if score < e.threshold {
			continue
		}
		candidates = append(candidates, NameMatch{Name: candidate, Score: score})
	}

	// Stable sort preserves first-encounter order between equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > e.cap {
		candidates = candidates[:e.cap]
	}

	for i := range candidates {
		e.fillStats(table, &candidates[i], total)
	}

	return Result{
		Kind:          KindName,
		Query:         name,
		TotalMeetings: total,
		Matches:       candidates,
	}
}

// fillStats computes per-name attendance and the associated email(s).
func (e *Engine) fillStats(table *domain.AttendanceTable, match *NameMatch, total int) {
	attended := make(map[domain.MeetingKey]struct{})
	seenEmails := make(map[string]struct{})
	var emails []string

	for _, rec := range table.Records {
		if rec.Name != match.Name {
			continue
		}
		if rec.Attended {
			attended[rec.Key()] = struct{}{}
		}
		if rec.Email == "" {
			continue
		}
		if _, ok := seenEmails[rec.Email]; !ok {
			seenEmails[rec.Email] = struct{}{}
			emails = append(emails, rec.Email)
		}
	}

	match.MeetingsAttended = len(attended)
	match.TotalMeetings = total
	if len(emails) == 1 {
		match.Email = emails[0]
	} else {
		match.Emails = emails
	}
}

// distinctNames returns the distinct non-empty names in first-encounter
// order. The slice order is what makes tie-breaking deterministic.
func distinctNames(table *domain.AttendanceTable) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range table.Records {
		if rec.Name == "" {
			continue
		}
		if _, ok := seen[rec.Name]; ok {
			continue
		}
		seen[rec.Name] = struct{}{}
		names = append(names, rec.Name)
	}
	return names
}
