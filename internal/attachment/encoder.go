// Package attachment normalizes user-selected images into a small inline
// payload: 100x100, cover-scaled, center-cropped, re-encoded as JPEG and
// wrapped in a data reference so the result travels inside message content.
package attachment

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// TargetSize is the square edge length of the encoded thumbnail.
const TargetSize = 100

// jpegQuality matches the fixed 0.8 re-encode quality.
const jpegQuality = 80

var (
	// ErrUnsupportedType is returned for anything but PNG or JPEG input.
	// Surfaced as a user-visible rejection, never fatal.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrEncoding is returned when decoding or re-encoding fails. The
	// caller surfaces a notice and leaves the compose state unchanged.
	ErrEncoding = errors.New("image encoding failed")
)

// allowedTypes are the accepted MIME types.
var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Encode reads an image of the declared MIME type and returns the inline
// payload for the message body.
func Encode(r io.Reader, mimeType string) (string, error) {
	if !allowedTypes[mimeType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	thumb := normalize(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// normalize scales the source so it covers the square target without
// letterboxing (scale = max(target/w, target/h)), then center-crops to
// exactly TargetSize x TargetSize.
func normalize(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := float64(TargetSize) / float64(w)
	if s := float64(TargetSize) / float64(h); s > scale {
		scale = s
	}

	scaledW := int(float64(w)*scale + 0.5)
	scaledH := int(float64(h)*scale + 0.5)
	if scaledW < TargetSize {
		scaledW = TargetSize
	}
	if scaledH < TargetSize {
		scaledH = TargetSize
	}

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Src, nil)

	offsetX := (scaledW - TargetSize) / 2
	offsetY := (scaledH - TargetSize) / 2
	crop := image.Rect(offsetX, offsetY, offsetX+TargetSize, offsetY+TargetSize)

	return scaled.SubImage(crop)
}
