package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-blastracer/pkg/core"
)

// ErrUnsupportedFormat is returned for an output extension with no encoder
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Formats lists the formats EncodeImage and WriteImage accept
var Formats = []string{"png", "bmp", "tiff"}

// PixelsToImage converts a row-major buffer of presentation words to an
// opaque RGBA image
func PixelsToImage(pixels []uint32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, core.ColorFromPixel(pixels[y*width+x]).ToRGBA())
		}
	}
	return img
}

// encoderFor returns the encoder for a format name or file extension
func encoderFor(format string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "png":
		return png.Encode, nil
	case "bmp":
		return bmp.Encode, nil
	case "tif", "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
}

// ValidateFormat reports whether EncodeImage can encode format
func ValidateFormat(format string) error {
	_, err := encoderFor(format)
	return err
}

// EncodeImage writes img to w in the named format
func EncodeImage(w io.Writer, img image.Image, format string) error {
	encode, err := encoderFor(format)
	if err != nil {
		return err
	}
	if err := encode(w, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// WriteImage encodes img to path in the format named by its extension,
// creating parent directories as needed
func WriteImage(path string, img image.Image) error {
	format := filepath.Ext(path)
	if err := ValidateFormat(format); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := EncodeImage(file, img, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
