package utils

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pngHeader  = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	jpegHeader = "\xff\xd8\xff\xe0\x00\x10JFIF\x00"
	gifHeader  = "GIF89a\x01\x00\x01\x00"
	webpHeader = "RIFF\x24\x00\x00\x00WEBPVP8 "
)

func TestSniffImage_AllowedTypes(t *testing.T) {
	cases := []struct {
		payload string
		ct, ext string
	}{
		{pngHeader + "rest", "image/png", ".png"},
		{jpegHeader + "rest", "image/jpeg", ".jpg"},
		{gifHeader + "rest", "image/gif", ".gif"},
		{webpHeader + "rest", "image/webp", ".webp"},
	}
	for _, tc := range cases {
		ct, ext, body, err := SniffImage(strings.NewReader(tc.payload))
		require.NoError(t, err, tc.ct)
		assert.Equal(t, tc.ct, ct)
		assert.Equal(t, tc.ext, ext)

		replayed, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, tc.payload, string(replayed), "sniffed bytes are replayed")
	}
}

func TestSniffImage_ReplaysPastSniffWindow(t *testing.T) {
	payload := pngHeader + strings.Repeat("x", 2*imageSniffLen)
	_, _, body, err := SniffImage(strings.NewReader(payload))
	require.NoError(t, err)

	replayed, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(replayed))
}

func TestSniffImage_RejectsOtherContent(t *testing.T) {
	for _, payload := range []string{
		"<html><script>fetch('/api/auth/user-info')</script></html>",
		"<svg xmlns=\"http://www.w3.org/2000/svg\"><script>alert(1)</script></svg>",
		"plain text",
		"",
	} {
		_, _, body, err := SniffImage(strings.NewReader(payload))
		assert.ErrorIs(t, err, ErrUnsupportedImage, payload)
		assert.Nil(t, body)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestSniffImage_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	_, _, _, err := SniffImage(failingReader{err: boom})
	assert.ErrorIs(t, err, boom)
}
