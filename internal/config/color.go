package config

import (
	"errors"
	"fmt"
)

// ErrInvalidColor is returned for hex strings that are not 6 or 8 hex
// digits with an optional leading '#'.
var ErrInvalidColor = errors.New("invalid color")

// Color is an RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGBA8 converts the colour to 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return uint8(c.R*255 + 0.5), uint8(c.G*255 + 0.5), uint8(c.B*255 + 0.5), uint8(c.A*255 + 0.5)
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (the '#' is optional).
// Any other length or a non-hex digit is rejected.
func ParseHexColor(s string) (Color, error) {
	orig := s
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("%w: %q must be 6 or 8 hex digits", ErrInvalidColor, orig)
	}

	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(s)/2; i++ {
		hi, ok1 := hexDigit(s[i*2])
		lo, ok2 := hexDigit(s[i*2+1])
		if !ok1 || !ok2 {
			return Color{}, fmt.Errorf("%w: %q contains a non-hex digit", ErrInvalidColor, orig)
		}
		ch[i] = hi<<4 | lo
	}

	return Color{
		R: float64(ch[0]) / 255,
		G: float64(ch[1]) / 255,
		B: float64(ch[2]) / 255,
		A: float64(ch[3]) / 255,
	}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
