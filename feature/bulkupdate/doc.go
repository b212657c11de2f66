// Package bulkupdate writes custom field values from an uploaded CSV onto existing
// entities identified by a UUID column.
//
// Blank cells are never sent, so a bulk update cannot clear a field. Cells are coerced to
// the column's field type; a cell that fails coercion is reported as a field error and
// the rest of the row still goes out. With preserve_existing set, the current value of
// every mapped field is read first and fields that already hold data are skipped. A row
// whose fields were all skipped is a no-op, not a failure.
//
// # HTTP Endpoints
//
//   - POST /bulk-update/preview : multipart upload (file, mapping); returns a preview.
//   - POST /bulk-update/execute : same upload; writes when ?confirm=true.
package bulkupdate
