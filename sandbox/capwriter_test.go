package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapWriterUnderLimit(t *testing.T) {
	w := newCapWriter(16, nil)
	n, err := w.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", w.String())
	assert.False(t, w.Truncated())
}

func TestCapWriterOverLimit(t *testing.T) {
	exceeded := 0
	w := newCapWriter(8, func() { exceeded++ })

	n, err := w.Write([]byte("0123456789abcdef"))
	assert.NoError(t, err)
	assert.Equal(t, 16, n, "capped writes still report full length")

	assert.True(t, w.Truncated())
	assert.Equal(t, "01234567"+TruncationMarker, w.String())
	assert.Equal(t, 1, exceeded)
}

func TestCapWriterExceedFiresOnce(t *testing.T) {
	exceeded := 0
	w := newCapWriter(4, func() { exceeded++ })

	for i := 0; i < 5; i++ {
		_, _ = w.Write([]byte("xxxx"))
	}
	assert.Equal(t, 1, exceeded)
	assert.Equal(t, "xxxx"+TruncationMarker, w.String())
}

func TestCapWriterExactBoundary(t *testing.T) {
	w := newCapWriter(4, nil)
	_, _ = w.Write([]byte("xxxx"))
	assert.False(t, w.Truncated(), "hitting the limit exactly is not an overflow")
	assert.Equal(t, "xxxx", w.String())
	assert.False(t, strings.Contains(w.String(), TruncationMarker))
}
