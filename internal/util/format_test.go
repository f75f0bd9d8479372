package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59*time.Second + 900*time.Millisecond, "0:59"},
		{61 * time.Second, "1:01"},
		{75 * time.Minute, "75:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestEllipsize(t *testing.T) {
	assert.Equal(t, "short", Ellipsize("short", 10))
	assert.Equal(t, "exact", Ellipsize("exact", 5))
	assert.Equal(t, "trunc…", Ellipsize("truncated", 6))
	assert.Equal(t, "ünï…", Ellipsize("ünïcode", 4))
	assert.Equal(t, "…", Ellipsize("abc", 1))
	assert.Equal(t, "", Ellipsize("abc", 0))
}
