// Package server holds the HTTP server configuration and the response helpers shared by
// the engine handlers.
//
// Every engine exposes a preview and an execute endpoint. Execute only mutates when the
// request carries ?confirm=true; otherwise it answers with the same preview. Errors are
// mapped to statuses by StatusFor: invalid mappings are 400, an unreachable source is
// 502 and a cancelled request is 503.
package server
