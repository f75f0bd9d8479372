package player

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/cockroachdb/errors"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/media"
)

// Metadata holds song information.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// String renders "Artist - Title", or the title alone.
func (m Metadata) String() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// ReadMetadata reads the ID3v2 tag at the start of an MP3 object, falling
// back to the file name. Only the tag's bytes are read off the body.
func ReadMetadata(ctx context.Context, client *http.Client, url string, id catalog.TrackID) (Metadata, error) {
	fallback := Metadata{Title: strings.TrimSuffix(id.Base(), path.Ext(id.Base()))}
	if media.Ext(string(id)) != ".mp3" {
		return fallback, nil
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fallback, errors.Wrap(err, "building request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return fallback, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fallback, errors.Newf("fetching %s: %s", url, resp.Status)
	}

	tag, err := id3v2.ParseReader(resp.Body, id3v2.Options{Parse: true})
	if err != nil {
		return fallback, errors.Wrap(err, "parsing ID3 tag")
	}
	m := Metadata{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
	}
	if m.Title == "" {
		m.Title = fallback.Title
	}
	return m, nil
}
