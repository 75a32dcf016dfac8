package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImagePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	format, err := ValidateImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestValidateImageRejectsGarbage(t *testing.T) {
	_, err := ValidateImage(strings.NewReader("definitely not pixels"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}
