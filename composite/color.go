package composite

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// namedColors are the color names accepted by ParseColor
var namedColors = map[string]color.RGBA{
	"black":  {R: 0, G: 0, B: 0, A: 255},
	"white":  {R: 255, G: 255, B: 255, A: 255},
	"yellow": {R: 255, G: 255, B: 50, A: 255},
	"pink":   {R: 255, G: 0, B: 255, A: 255},
	"cyan":   {R: 0, G: 255, B: 255, A: 255},
	"green":  {R: 0, G: 255, B: 0, A: 255},
}

// ParseColor parses a color name or a #RRGGBB hex value
func ParseColor(s string) (color.RGBA, error) {

	s = strings.ToLower(strings.TrimSpace(s))

	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")

	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)

	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
