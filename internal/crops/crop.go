// Package crops derives crop identity from geometry, classifies aspect
// ratios, and drives crop submission through a small state machine.
package crops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/kahuna/internal/images"
)

// KeySeparator joins the bound components of a crop key.
const KeySeparator = "_"

// Rect is a crop rectangle in source image pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether every component is non-negative.
func (r Rect) Valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.Width >= 0 && r.Height >= 0
}

// Selection is a crop expressed as two corners.
type Selection struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// DefaultSelection fills any reasonably sized image; the cropper clamps it.
var DefaultSelection = Selection{X1: 0, Y1: 0, X2: 10000, Y2: 10000}

// Rect converts the selection to origin and size.
func (s Selection) Rect() Rect {
	return Rect{
		X:      s.X1,
		Y:      s.Y1,
		Width:  s.X2 - s.X1,
		Height: s.Y2 - s.Y1,
	}
}

// Specification describes what was cropped.
type Specification struct {
	URI         string `json:"uri"`
	Bounds      Rect   `json:"bounds"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// Crop is a crop record returned by the cropper service.
type Crop struct {
	ID            string         `json:"id"`
	Specification Specification  `json:"specification"`
	Assets        []images.Asset `json:"assets,omitempty"`
}

// Key returns the crop key derived from the crop's bounds.
func (c Crop) Key() string {
	return KeyOf(c.Specification.Bounds)
}

// KeyOf returns the stable key for a rect: x, y, width and height joined by "_".
// Equal rects always produce equal keys.
func KeyOf(r Rect) string {
	return strings.Join([]string{
		strconv.Itoa(r.X),
		strconv.Itoa(r.Y),
		strconv.Itoa(r.Width),
		strconv.Itoa(r.Height),
	}, KeySeparator)
}

// ParseKey is the inverse of KeyOf.
func ParseKey(key string) (Rect, error) {
	parts := strings.Split(key, KeySeparator)
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Rect{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		vals[i] = n
	}

	return Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Select returns the crop whose key matches key.
func Select(crops []Crop, key string) (Crop, bool) {
	for _, c := range crops {
		if c.Key() == key {
			return c, true
		}
	}
	return Crop{}, false
}
