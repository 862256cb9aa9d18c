package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette/brewer"
)

// DefaultPalette is the colour-blind safe palette used unless another one is
// requested.
const DefaultPalette = "colorblind"

var colorblind = []color.Color{
	color.RGBA{R: 0x01, G: 0x73, B: 0xB2, A: 0xFF},
	color.RGBA{R: 0xDE, G: 0x8F, B: 0x05, A: 0xFF},
	color.RGBA{R: 0x02, G: 0x9E, B: 0x73, A: 0xFF},
	color.RGBA{R: 0xD5, G: 0x5E, B: 0x00, A: 0xFF},
	color.RGBA{R: 0xCC, G: 0x78, B: 0xBC, A: 0xFF},
	color.RGBA{R: 0xCA, G: 0x91, B: 0x61, A: 0xFF},
	color.RGBA{R: 0xFB, G: 0xAF, B: 0xE4, A: 0xFF},
	color.RGBA{R: 0x94, G: 0x94, B: 0x94, A: 0xFF},
	color.RGBA{R: 0xEC, G: 0xE1, B: 0x33, A: 0xFF},
	color.RGBA{R: 0x56, G: 0xB4, B: 0xE9, A: 0xFF},
}

// Palette returns n colours from the named palette: "colorblind" or any
// ColorBrewer qualitative palette such as "Dark2" or "Set1".
func Palette(name string, n int) ([]color.Color, error) {
	if n <= 0 {
		return nil, fmt.Errorf("palette %s: need at least one colour", name)
	}
	if name == "" || name == DefaultPalette {
		if n > len(colorblind) {
			return nil, fmt.Errorf("palette %s has %d colours, %d requested", DefaultPalette, len(colorblind), n)
		}
		return append([]color.Color(nil), colorblind[:n]...), nil
	}
	p, err := brewer.GetPalette(brewer.TypeQualitative, name, n)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", name, err)
	}
	return p.Colors(), nil
}
