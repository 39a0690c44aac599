// Package app composes the codenames service: storage, the command engine,
// the game manager, and the HTTP and gRPC transports that expose them.
package app
