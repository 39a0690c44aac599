// Package migrations embeds the SQL migration scripts of the SQLite store.
//
// events holds the journal schema; projections holds the read models and the
// word corpus derived from or feeding into it.
package migrations
