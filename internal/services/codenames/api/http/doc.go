// Package httpapi serves the codenames actions and read models over HTTP.
//
// Callers identify themselves with an opaque session id taken from the
// session_id cookie or, failing that, the X-Session-ID header. Mutating routes
// are rate limited per session.
package httpapi
