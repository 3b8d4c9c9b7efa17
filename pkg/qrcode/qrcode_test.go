package qrcode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPNG(t *testing.T) {
	png, err := PNG("ticket:1:booking:2", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	_, err = PNG("", 128)
	assert.Error(t, err)
}

func TestDataURI(t *testing.T) {
	uri, err := DataURI("ticket:1:booking:2", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
