// Package catalog lists the remote track keys that make up the browsable
// catalog and builds playable URLs for them.
package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// TrackID is an opaque catalog key such as "U2/Achtung Baby/01 - Zoo Station.mp3".
type TrackID string

// Base returns the last path segment of the key.
func (id TrackID) Base() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (id TrackID) String() string { return string(id) }

// Catalog is the ordered key list. The zero value is the "not yet loaded"
// sentinel.
type Catalog struct {
	IDs    []TrackID
	Loaded bool
}

// NewLoaded wraps ids as a loaded catalog.
func NewLoaded(ids []TrackID) Catalog {
	return Catalog{IDs: ids, Loaded: true}
}

// Page is one batch of a paginated listing. An empty Next marks the last page.
type Page struct {
	Keys []TrackID
	Next string
}

// Source is a paginated, idempotent listing of every key.
type Source interface {
	ListPage(ctx context.Context, token string) (Page, error)
}

// ErrPaginationLoop is returned when a source hands back a continuation token
// it already returned.
var ErrPaginationLoop = errors.New("catalog: continuation token repeated")

// Load exhausts pagination and concatenates pages in the order returned.
// Keys are not deduplicated.
func Load(ctx context.Context, src Source) ([]TrackID, error) {
	var (
		ids   []TrackID
		token string
		seen  = map[string]bool{}
		pages int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "catalog load cancelled")
		}
		page, err := src.ListPage(ctx, token)
		if err != nil {
			return nil, errors.Wrapf(err, "listing page %d", pages+1)
		}
		pages++
		ids = append(ids, page.Keys...)
		if page.Next == "" {
			break
		}
		if seen[page.Next] {
			return nil, errors.Wrapf(ErrPaginationLoop, "token %q", page.Next)
		}
		seen[page.Next] = true
		token = page.Next
	}
	zlog.Info().Int("keys", len(ids)).Int("pages", pages).Msg("catalog loaded")
	return ids, nil
}

// URL joins base and the key, escaping each path segment.
func URL(base string, id TrackID) string {
	segs := strings.Split(string(id), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segs, "/")
}
