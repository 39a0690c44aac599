// Package event defines the event envelope and event-type registry used by the
// codenames write path.
//
// Events are immutable facts emitted by accepted decisions. The registry checks
// actor metadata, entity addressing and payload validity before storage assigns
// sequence numbers and integrity hashes.
package event
