package media

import (
	"path"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// Ext returns the lower-cased extension of an object key.
func Ext(key string) string {
	return strings.ToLower(path.Ext(key))
}

// IsSupportedExt returns true if the extension is a supported playable media format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsPlayable reports whether the key names a file the player can decode.
func IsPlayable(key string) bool {
	return IsSupportedExt(Ext(key))
}

// SupportedExtsList returns a human-readable list of supported playable media formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}
