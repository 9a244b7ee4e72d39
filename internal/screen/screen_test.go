package screen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferWriteAndRender(t *testing.T) {
	var out bytes.Buffer
	b := New(24, 80, &out)
	defer b.Close()

	_, err := b.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Contains(t, b.Render(), "hello")
}

func TestBufferResize(t *testing.T) {
	var out bytes.Buffer
	b := New(24, 80, &out)
	defer b.Close()

	assert.NotPanics(t, func() { b.Resize(40, 120) })
}
