// Package logtail reads the tail of booth's own log file for the activity
// view.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded
// regardless of file size. Parse and Entry.Format turn slog JSON records into
// single display lines; anything that is not JSON (for example text-format
// logs) passes through unchanged.
package logtail
