// Package notes finds duplicate notes and deletes all but one of each set.
//
// Notes are grouped by trimmed content, trimmed title and company id. A note without a
// company joins the company group that shares its content and title, or forms its own
// group when there is none. A group is a duplicate set only when it holds at least two
// distinct note ids; the same id listed twice by overlapping pages does not count.
//
// Within a set the notes are ordered by creation time. The earliest note that has a
// company is kept, or the earliest overall when none has one. Every other note is
// deleted, one request at a time, with the delete throttle between batches.
//
// # HTTP Endpoints
//
//   - POST /notes/duplicates/preview : list duplicate sets.
//   - POST /notes/duplicates/execute : delete duplicates; requires ?confirm=true.
package notes
