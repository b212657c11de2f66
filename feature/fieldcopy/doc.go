// Package fieldcopy copies one custom field into another across every entity of a type.
//
// Each source to target rule is classified independently:
//
//   - skip_source_empty: the entity has no source value.
//   - skip_has_value: only_empty_targets is set and the target already holds data.
//   - update: the source value is written into the target.
//
// Current values come from a snapshot read with bounded parallelism before
// classification; the writes that follow are strictly sequential. Every confirmed run
// keeps a migration log per rule when a datastore is configured.
//
// # HTTP Endpoints
//
//   - POST /fieldcopy/preview : classify and return a truncated preview.
//   - POST /fieldcopy/execute : classify and execute; requires ?confirm=true.
package fieldcopy
