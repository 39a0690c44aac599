// Package command defines the command envelope and the decision contract used
// by the codenames write path.
//
// Commands carry intent from an API caller (one player session or the server
// itself) to a decider. The registry normalizes and validates them so deciders
// only see well-formed input.
package command
