// Package runs serves the reports of finished runs.
//
// Recent reports are kept in memory. When object storage is configured every report is
// also archived, and reports that fell out of memory are read back from the archive.
//
// # HTTP Endpoints
//
//   - GET /runs                : recent and archived run ids.
//   - GET /runs/:id            : run summary as JSON (recent runs only).
//   - GET /runs/:id/report.csv : full CSV report.
package runs
