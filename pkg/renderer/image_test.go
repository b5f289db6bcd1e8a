package renderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	_ "golang.org/x/image/tiff"
)

func TestPixelsToImage(t *testing.T) {
	pixels := []uint32{
		0x000000FF, 0x0000FF00,
		0x00FF0000, 0x00000000,
	}
	img := PixelsToImage(pixels, 2, 2)

	tests := []struct {
		x, y     int
		expected color.RGBA
	}{
		{0, 0, color.RGBA{R: 255, A: 255}},
		{1, 0, color.RGBA{G: 255, A: 255}},
		{0, 1, color.RGBA{B: 255, A: 255}},
		{1, 1, color.RGBA{A: 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.expected {
			t.Errorf("Pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestWriteImage_Formats(t *testing.T) {
	img := PixelsToImage([]uint32{0x00102030, 0x00405060}, 2, 1)

	tests := []struct {
		file           string
		expectedFormat string
	}{
		{"out.png", "png"},
		{"out.bmp", "bmp"},
		{"out.tiff", "tiff"},
		{"OUT.TIF", "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "dir", tt.file)
			if err := WriteImage(path, img); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			file, err := os.Open(path)
			if err != nil {
				t.Fatalf("Expected file to exist: %v", err)
			}
			defer file.Close()

			decoded, format, err := image.Decode(file)
			if err != nil {
				t.Fatalf("Failed to decode image: %v", err)
			}
			if format != tt.expectedFormat {
				t.Errorf("Expected format %s, got %s", tt.expectedFormat, format)
			}
			if decoded.Bounds() != img.Bounds() {
				t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
			}
			r, g, b, _ := decoded.At(1, 0).RGBA()
			if r>>8 != 0x60 || g>>8 != 0x50 || b>>8 != 0x40 {
				t.Errorf("Unexpected decoded pixel %d,%d,%d", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestWriteImage_UnsupportedFormat(t *testing.T) {
	img := PixelsToImage([]uint32{0}, 1, 1)
	dir := t.TempDir()

	if err := WriteImage(filepath.Join(dir, "out.jpg"), img); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if err := EncodeImage(io.Discard, img, "gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat from EncodeImage, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.jpg")); !os.IsNotExist(err) {
		t.Error("Expected no file for an unsupported format")
	}
}

func TestEncodeImage(t *testing.T) {
	img := PixelsToImage([]uint32{0x00405060, 0x00010203}, 2, 1)

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeImage(&buf, img, format); err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			decoded, _, err := image.Decode(&buf)
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if decoded.Bounds() != img.Bounds() {
				t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, format := range Formats {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("Expected %s to be supported: %v", format, err)
		}
	}
	if err := ValidateFormat("gif"); err == nil {
		t.Error("Expected gif to be rejected")
	}
}
