// Package search owns the query typed by the user, commits it after a quiet
// period and keeps a back/forward history of committed queries.
package search

import (
	"strings"

	"github.com/olivier-w/bucketbox/internal/catalog"
)

// Filter returns the ids that contain q case-insensitively, in catalog order.
// An empty query matches nothing.
func Filter(ids []catalog.TrackID, q string) []catalog.TrackID {
	if q == "" {
		return nil
	}
	needle := strings.ToLower(q)
	var out []catalog.TrackID
	for _, id := range ids {
		if strings.Contains(strings.ToLower(string(id)), needle) {
			out = append(out, id)
		}
	}
	return out
}
