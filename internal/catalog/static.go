package catalog

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// StaticSource serves a fixed key list in pages of PageSize keys. A zero
// PageSize returns everything in one page.
type StaticSource struct {
	Keys     []TrackID
	PageSize int
}

func (s StaticSource) ListPage(_ context.Context, token string) (Page, error) {
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(s.Keys) {
			return Page{}, errors.Newf("invalid continuation token %q", token)
		}
		start = n
	}
	end := len(s.Keys)
	if s.PageSize > 0 && start+s.PageSize < end {
		end = start + s.PageSize
	}
	page := Page{Keys: append([]TrackID(nil), s.Keys[start:end]...)}
	if end < len(s.Keys) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

// ReadKeysFile reads one key per line, skipping blank lines and lines
// starting with '#'.
func ReadKeysFile(path string) ([]TrackID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog file")
	}
	defer f.Close()

	var keys []TrackID
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, TrackID(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading catalog file")
	}
	return keys, nil
}
