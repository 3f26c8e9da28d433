// Package query answers participant lookups against an immutable
// attendance table: total distinct meetings, exact email matches, and
// ranked fuzzy name matches. All operations are pure functions over the
// table; repeated queries are idempotent and side-effect-free.
package query
