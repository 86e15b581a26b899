// Package logline extracts timestamps from raw log lines.
//
// A line starts with an ISO-8601 offset date-time followed by a comma and an
// arbitrary payload. Only the prefix is ever parsed, and only when a caller
// asks for it.
package logline
