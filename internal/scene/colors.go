package scene

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

var nameByColor map[rl.Color]string

func init() {
	nameByColor = make(map[rl.Color]string, len(colorByName))
	for name, c := range colorByName {
		nameByColor[c] = name
	}
}

// ColorNames lists the named colors in sorted order.
func ColorNames() []string {
	return slices.Sorted(maps.Keys(colorByName))
}

// ParseColor accepts a color name (case-insensitive) or #rrggbb / #rrggbbaa.
func ParseColor(s string) (rl.Color, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 && len(hex) != 8 {
			return rl.Color{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
		}
		if len(hex) == 6 {
			hex += "ff"
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return rl.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		return rl.NewColor(uint8(n>>24), uint8(n>>16), uint8(n>>8), uint8(n)), nil
	}
	for name, c := range colorByName {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}
	return rl.Color{}, fmt.Errorf("unknown color %q", s)
}

// LookupColor is ParseColor that falls back to white.
func LookupColor(name string) rl.Color {
	c, err := ParseColor(name)
	if err != nil {
		return rl.White
	}
	return c
}

func LookupColorName(c rl.Color) string {
	if name, ok := nameByColor[c]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
