// Package migration persists the audit log of custom-field migrations.
//
// A field-copy run creates one Log per source to target rule when it starts. The log is
// updated after every item with running counts and failure details, and finalized to
// completed or failed when the run ends. Logs are exposed read-only over HTTP:
//
//   - GET /migrations       : most recent logs first.
//   - GET /migrations/:id   : one log.
package migration
