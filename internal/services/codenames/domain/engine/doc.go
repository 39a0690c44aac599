// Package engine wires command validation, decision routing, event append,
// and replay-backed state loading for game command execution.
//
// It is the seam between the pure game rules and the transports: commands
// for one game are serialized, decided against freshly loaded state, appended
// atomically, and folded into the state returned to the caller.
package engine
