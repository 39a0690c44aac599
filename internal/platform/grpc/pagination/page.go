// Package pagination normalizes page parameters of list calls.
package pagination

// PageSizeConfig bounds a requested page size.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize returns value, or cfg.Default when value is not positive,
// capped at cfg.Max. The result is at least 1.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	return max(pageSize, 1)
}
