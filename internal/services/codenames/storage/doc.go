// Package storage defines the persistence contracts of the codenames service:
// the append-only event journal, the read projections derived from it, and
// the global word corpus.
package storage
