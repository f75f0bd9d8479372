package media

import (
	"strings"
	"testing"
)

func TestIsSupportedExtCaseInsensitive(t *testing.T) {
	for _, ext := range []string{".mp3", ".MP3", ".Flac", ".ogg", ".wav"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".aac", ".m4a", ".txt", ""} {
		if IsSupportedExt(ext) {
			t.Fatalf("expected %q to be unsupported", ext)
		}
	}
}

func TestIsPlayableUsesLastExtension(t *testing.T) {
	cases := map[string]bool{
		"Albums/Artist/01 Song.mp3":  true,
		"mixes/set.tar.FLAC":         true,
		"notes/readme.mp3.txt":       false,
		"covers/folder":              false,
		"dir.with.dots/track.ogg":    true,
		"dir.with.dots/no-extension": false,
	}
	for key, want := range cases {
		if got := IsPlayable(key); got != want {
			t.Fatalf("IsPlayable(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestSupportedExtsListMatchesTable(t *testing.T) {
	list := SupportedExtsList()
	for ext := range audioExts {
		if !strings.Contains(list, ext) {
			t.Fatalf("expected supported ext list to include %s, got %q", ext, list)
		}
	}
}
