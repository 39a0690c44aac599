package migrations

import "embed"

// EventsFS holds the event journal migrations.
//
//go:embed events/*.sql
var EventsFS embed.FS

// ProjectionsFS holds the projection and corpus migrations.
//
//go:embed projections/*.sql
var ProjectionsFS embed.FS
