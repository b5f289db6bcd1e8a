package core

import (
	"fmt"
	"image/color"
	"math"
)

// Color is an 8-bit per channel color with alpha
type Color struct {
	A, R, G, B uint8
}

// Packed channel offsets. The presentation word carries red in the low byte
// and leaves bits 31:24 empty; Uint32 additionally stores alpha there.
const (
	redShift   = 0
	greenShift = 8
	blueShift  = 16
	alphaShift = 24

	pixelMask = 0x00FFFFFF
)

// NewColor creates a color from byte channels
func NewColor(r, g, b, a uint8) Color {
	return Color{A: a, R: r, G: g, B: b}
}

// Opaque creates a fully opaque color from byte channels
func Opaque(r, g, b uint8) Color {
	return Color{A: 255, R: r, G: g, B: b}
}

// FromNormalized converts linear [0,1] channel intensities to bytes.
// Values outside [0,1] saturate; NaN maps to 0.
func FromNormalized(r, g, b, a float64) Color {
	return Color{
		A: normalizedToByte(a),
		R: normalizedToByte(r),
		G: normalizedToByte(g),
		B: normalizedToByte(b),
	}
}

func normalizedToByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Normalized returns the color channels as [0,1] intensities
func (c Color) Normalized() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// Uint32 packs all four channels: alpha 31:24, blue 23:16, green 15:8, red 7:0
func (c Color) Uint32() uint32 {
	return uint32(c.A)<<alphaShift | c.Pixel()
}

// ColorFromUint32 is the exact inverse of Color.Uint32
func ColorFromUint32(v uint32) Color {
	return Color{
		A: uint8(v >> alphaShift),
		R: uint8(v >> redShift),
		G: uint8(v >> greenShift),
		B: uint8(v >> blueShift),
	}
}

// Pixel returns the word written to the frame buffer: blue 23:16, green 15:8,
// red 7:0. Alpha is not encoded.
func (c Color) Pixel() uint32 {
	return uint32(c.B)<<blueShift | uint32(c.G)<<greenShift | uint32(c.R)<<redShift
}

// ColorFromPixel decodes a frame buffer word as an opaque color
func ColorFromPixel(p uint32) Color {
	c := ColorFromUint32(p & pixelMask)
	c.A = 255
	return c
}

// ToRGBA converts to the standard library color type for image encoding
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// String formats the color as #AARRGGBB
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}
