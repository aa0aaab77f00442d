package domain

import (
	"bytes"
	"fmt"
	"image"

	// Register decoders for the upload formats we accept.
	_ "image/jpeg"
	_ "image/png"
)

// Image is an encoded image payload, either uploaded by the user or
// produced by the generation backend. The bytes are treated as immutable
// once the Image is constructed.
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// NewImage wraps backend-produced bytes without re-decoding them.
// Dimensions are filled in when the bytes parse as a known format and
// left zero otherwise; backend payloads are trusted as-is.
func NewImage(data []byte, mimeType string) *Image {
	img := &Image{Data: data, MIMEType: mimeType}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img
}

// DecodeUpload validates user-uploaded bytes and returns an Image.
// Unreadable or empty data is rejected here so that no work item is ever
// created for an upload the backend could not process.
func DecodeUpload(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadableImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	return &Image{
		Data:     data,
		MIMEType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Size returns the encoded payload size in bytes.
func (i *Image) Size() int {
	return len(i.Data)
}
