package utils

import (
	"bytes"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned when uploaded bytes are not an allowed image
var ErrUnsupportedImage = errors.New("unsupported image type")

const imageSniffLen = 512

// imageExtensions maps the accepted image types to the extension stored
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SniffImage detects the type of r from its leading bytes. Only png, jpeg,
// gif and webp pass. The returned body replays the sniffed bytes followed by
// the rest of r.
func SniffImage(r io.Reader) (contentType, ext string, body io.Reader, err error) {
	head := make([]byte, imageSniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", nil, err
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for ct, e := range imageExtensions {
		if detected.Is(ct) {
			return ct, e, io.MultiReader(bytes.NewReader(head), r), nil
		}
	}
	return "", "", nil, ErrUnsupportedImage
}
