// Package upsert creates or updates records from an uploaded CSV.
//
// Each row is matched to an existing record through a natural key built from the
// mapping's key columns (lowercased name and domain by default). A matching row becomes an
// update that writes every non-blank mapped value; any other row becomes a create. Current
// values of update rows are read beforehand so the preview can show them next to the new
// ones, but they never decide what is written.
//
// Description and tags may be fed by several columns; their cells are concatenated in
// mapping order. A create rejected because its owner does not exist is retried once
// without the owner, and the row is reported as owner-skipped.
//
// A key repeated within one upload is only applied for its first row; later rows are
// reported as duplicate_key errors unless the mapping sets allow_duplicate_keys, in which
// case every row is matched or created on its own.
//
// # HTTP Endpoints
//
//   - POST /upsert/preview : multipart upload (file, mapping); returns a preview.
//   - POST /upsert/execute : same upload; writes when ?confirm=true.
package upsert
