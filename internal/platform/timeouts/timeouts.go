// Package timeouts holds the server timeouts shared by codenames binaries.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers drain in-flight requests on stop.
const Shutdown = 5 * time.Second
