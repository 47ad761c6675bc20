package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Hex returns an opaque color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// White is the default light and line color.
var White = Hex(0xffffff)

// namedColors covers the names models tend to write instead of hex values.
var namedColors = map[string]uint32{
	"white":   0xffffff,
	"black":   0x000000,
	"red":     0xff0000,
	"green":   0x00ff00,
	"blue":    0x0000ff,
	"yellow":  0xffff00,
	"cyan":    0x00ffff,
	"magenta": 0xff00ff,
	"orange":  0xffa500,
	"purple":  0x800080,
	"pink":    0xffc0cb,
	"gray":    0x808080,
	"grey":    0x808080,
	"brown":   0x8b4513,
	"gold":    0xffd700,
	"silver":  0xc0c0c0,
	"skyblue": 0x87ceeb,
	"navy":    0x000080,
}

// ParseColor accepts #rrggbb, #rgb, 0xrrggbb or a color name.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := namedColors[s]; ok {
		return Hex(v), nil
	}
	digits := s
	switch {
	case strings.HasPrefix(s, "#"):
		digits = s[1:]
	case strings.HasPrefix(s, "0x"):
		digits = s[2:]
	default:
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return Hex(uint32(v)), nil
}

// String returns the color as 0xrrggbb.
func (c Color) String() string {
	return fmt.Sprintf("0x%02x%02x%02x", c.R, c.G, c.B)
}
