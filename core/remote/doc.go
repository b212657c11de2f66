// Package remote is the HTTP client for the hierarchical-entity API.
//
// Client implements both reconcile.Source and reconcile.Sink. Every request carries the
// configured bearer token as-is and waits on a token bucket so that concurrent field
// reads never exceed the configured request rate. Field reads are cached in an expirable
// LRU; writing a field invalidates its cache entry.
//
// # Endpoints
//
//	GET    {base}/{type}?pageCursor=...           list one page
//	GET    {base}/entities/{id}/fields/{field}    read one field
//	PUT    {base}/entities/{id}/fields/{field}    write one field
//	POST   {base}/{type}                          create a record
//	DELETE {base}/entities/{id}                   delete a record
//
// Non-2xx responses are returned as *APIError.
package remote
