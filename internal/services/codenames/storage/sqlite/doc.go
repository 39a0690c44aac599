// Package sqlite implements the codenames persistence contracts on SQLite.
//
// The event journal and its projections share one database so each accepted
// action commits its events and projection rows in a single transaction.
package sqlite
