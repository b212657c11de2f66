// Package middleware groups the HTTP middleware mounted in front of every feature.
//
//   - auth: rejects requests without the configured X-API-Key. Disabled when no key is set.
//   - rayid: tags each request with a ray id for log correlation.
package middleware
