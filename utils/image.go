package utils

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

// ErrNotAnImage is returned when an upload cannot be decoded as a supported image format.
var ErrNotAnImage = errors.New("file is not a decodable image")

// ValidateImage checks that r contains a decodable jpeg, png or gif and
// returns the detected format. Non-image uploads are rejected at write time
// rather than silently stored.
func ValidateImage(r io.Reader) (string, error) {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", ErrNotAnImage
	}
	switch format {
	case "jpeg", "png", "gif":
		return format, nil
	default:
		return "", ErrNotAnImage
	}
}
