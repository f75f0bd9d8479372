package search

import (
	"slices"
	"testing"

	"github.com/olivier-w/bucketbox/internal/catalog"
)

var u2 = []catalog.TrackID{
	"U2/Songs of Experience/01 - Zoo Station.mp3",
	"U2/Songs of Experience/03 - One.mp3",
	"U2/Songs of Experience/04 - Until The End Of The World.mp3",
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		ids   []catalog.TrackID
		query string
		want  []catalog.TrackID
	}{
		{name: "empty query shows nothing", ids: u2, query: "", want: nil},
		{name: "common prefix", ids: u2, query: "U2", want: u2},
		{name: "case insensitive", ids: u2, query: "zoo", want: u2[:1]},
		{name: "matches across separators", ids: u2, query: "experience/03", want: u2[1:2]},
		{name: "no match", ids: u2, query: "Bono", want: nil},
		{
			name:  "duplicates kept in order",
			ids:   []catalog.TrackID{"a/1.mp3", "b/1.mp3", "a/1.mp3"},
			query: "A/",
			want:  []catalog.TrackID{"a/1.mp3", "a/1.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(tt.ids, tt.query); !slices.Equal(got, tt.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
