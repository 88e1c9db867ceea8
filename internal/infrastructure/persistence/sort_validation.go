package persistence

import "strings"

// sortWhitelist maps request-facing sort keys to columns. Anything outside
// the map falls back to the default column, so user input never reaches SQL.
type sortWhitelist struct {
	columns  map[string]string
	fallback string
}

// paymentSort backs the admin payment list
var paymentSort = sortWhitelist{
	columns: map[string]string{
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"amount":       "amount",
		"status":       "status",
		"confirmed_at": "confirmed_at",
	},
	fallback: "created_at",
}

// orderBy builds "<column> ASC|DESC". Direction defaults to DESC.
func (w sortWhitelist) orderBy(field, dir string) string {
	column, ok := w.columns[strings.TrimSpace(field)]
	if !ok {
		column = w.fallback
	}
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}
