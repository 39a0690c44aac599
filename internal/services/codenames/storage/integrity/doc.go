// Package integrity signs and verifies the chain hashes of the game event
// journal so a tampered or reordered journal is detected on verification.
package integrity
