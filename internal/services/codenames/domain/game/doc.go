// Package game implements the codenames rules: the event-folded game state,
// the command decider that enforces whose turn it is, and the event and
// command contracts that connect both to the engine.
//
// The current phase of a game is the latest pushed condition. Decide maps a
// (condition, command) pair to either a set of new events or a typed
// rejection; Fold replays those events into State.
package game
