// Package color holds the canonical multi-format color value used by
// profiles, scenes and favorite-color lists.
//
// A Value carries exactly one of the light color formats Home Assistant
// knows. Conversions are exhaustive switches over the format tag, so a new
// format cannot be added without the compiler pointing at every place that
// has to learn about it.
package color

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/arnvid/scenery-go/internal/models"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/mapstructure"
)

// Home Assistant light attribute names carrying a color.
const (
	AttrKelvin = "color_temp_kelvin"
	AttrHS     = "hs_color"
	AttrRGB    = "rgb_color"
	AttrRGBW   = "rgbw_color"
	AttrRGBWW  = "rgbww_color"
	AttrXY     = "xy_color"
	AttrWhite  = "white"
	AttrName   = "color_name"
)

// FavoriteAttrs are the color attributes the frontend accepts as favorite colors.
var FavoriteAttrs = []string{AttrKelvin, AttrHS, AttrRGB, AttrRGBW, AttrRGBWW}

// AnyColorAttrs are all color attributes the backend supports.
var AnyColorAttrs = []string{AttrKelvin, AttrHS, AttrRGB, AttrRGBW, AttrRGBWW, AttrXY, AttrWhite, AttrName}

type Format string

const (
	FormatKelvin Format = AttrKelvin
	FormatHS     Format = AttrHS
	FormatRGB    Format = AttrRGB
	FormatRGBW   Format = AttrRGBW
	FormatRGBWW  Format = AttrRGBWW
	FormatXY     Format = AttrXY
	FormatWhite  Format = AttrWhite
	FormatName   Format = AttrName
)

// Value is a color in exactly one format.
type Value struct {
	format Format

	kelvin   int
	hue, sat float64
	comps    [5]uint8 // r, g, b (+ w | cw, ww)
	x, y     float64
	white    int
	name     string
}

func Kelvin(kelvin int) Value { return Value{format: FormatKelvin, kelvin: kelvin} }

func HS(hue, sat float64) Value { return Value{format: FormatHS, hue: hue, sat: sat} }

func RGB(r, g, b uint8) Value { return Value{format: FormatRGB, comps: [5]uint8{r, g, b}} }

func RGBW(r, g, b, w uint8) Value { return Value{format: FormatRGBW, comps: [5]uint8{r, g, b, w}} }

func RGBWW(r, g, b, cw, ww uint8) Value {
	return Value{format: FormatRGBWW, comps: [5]uint8{r, g, b, cw, ww}}
}

func XY(x, y float64) Value { return Value{format: FormatXY, x: x, y: y} }

func White(white int) Value { return Value{format: FormatWhite, white: white} }

func Name(name string) Value { return Value{format: FormatName, name: name} }

func (v Value) Format() Format { return v.format }

// IsZero reports whether the value carries no color at all.
func (v Value) IsZero() bool { return v.format == "" }

// Kelvin returns the color temperature for kelvin values.
func (v Value) Kelvin() int { return v.kelvin }

// HS returns hue (0..360) and saturation (0..100) for hs values.
func (v Value) HS() (float64, float64) { return v.hue, v.sat }

// Components returns the primary channels for rgb/rgbw/rgbww values.
func (v Value) Components() []uint8 {
	switch v.format {
	case FormatRGB:
		return v.comps[:3]
	case FormatRGBW:
		return v.comps[:4]
	case FormatRGBWW:
		return v.comps[:5]
	case FormatKelvin, FormatHS, FormatXY, FormatWhite, FormatName:
		return nil
	}

	return nil
}

// XY returns the chromaticity coordinates for xy values.
func (v Value) XY() (float64, float64) { return v.x, v.y }

// White returns the white channel value for white values.
func (v Value) White() int { return v.white }

// Name returns the color name for named values.
func (v Value) Name() string { return v.name }

// ServiceAttrs returns the single service data attribute commanding a light
// into this color. Never more than one color attribute.
func (v Value) ServiceAttrs() map[string]interface{} {
	switch v.format {
	case FormatKelvin:
		return map[string]interface{}{AttrKelvin: v.kelvin}
	case FormatHS:
		return map[string]interface{}{AttrHS: []float64{v.hue, v.sat}}
	case FormatRGB:
		return map[string]interface{}{AttrRGB: []uint8{v.comps[0], v.comps[1], v.comps[2]}}
	case FormatRGBW:
		return map[string]interface{}{AttrRGBW: []uint8{v.comps[0], v.comps[1], v.comps[2], v.comps[3]}}
	case FormatRGBWW:
		return map[string]interface{}{AttrRGBWW: []uint8{v.comps[0], v.comps[1], v.comps[2], v.comps[3], v.comps[4]}}
	case FormatXY:
		return map[string]interface{}{AttrXY: []float64{v.x, v.y}}
	case FormatWhite:
		return map[string]interface{}{AttrWhite: v.white}
	case FormatName:
		return map[string]interface{}{AttrName: v.name}
	}

	return map[string]interface{}{}
}

// Favorite projects the value into a favorite-color representable value.
// kelvin, hs, rgb, rgbw and rgbww survive unchanged; xy, white and named
// colors have no favorite representation.
func (v Value) Favorite() (Value, bool) {
	switch v.format {
	case FormatKelvin, FormatHS, FormatRGB, FormatRGBW, FormatRGBWW:
		return v, true
	case FormatXY, FormatWhite, FormatName:
		return Value{}, false
	}

	return Value{}, false
}

// RGBColor resolves the value to an sRGB color where a faithful conversion
// exists. Used for comparison (named colors) and display swatches only,
// never for storage - favorite colors keep their declared format.
func (v Value) RGBColor() (colorful.Color, bool) {
	switch v.format {
	case FormatRGB, FormatRGBW, FormatRGBWW:
		return colorful.Color{R: float64(v.comps[0]) / 255, G: float64(v.comps[1]) / 255, B: float64(v.comps[2]) / 255}, true

	case FormatHS:
		return colorful.Hsv(v.hue, v.sat/100, 1), true

	case FormatName:
		if strings.HasPrefix(v.name, "#") {
			c, err := colorful.Hex(v.name)

			return c, err == nil
		}

		if hex, ok := cssColors[strings.ToLower(strings.ReplaceAll(v.name, " ", ""))]; ok {
			return colorful.Color{R: float64(hex>>16&0xff) / 255, G: float64(hex>>8&0xff) / 255, B: float64(hex&0xff) / 255}, true
		}

		return colorful.Color{}, false

	case FormatXY:
		// CIE xy without brightness, assume Y=1
		if v.y == 0 {
			return colorful.Color{}, false
		}

		return colorful.Xyy(v.x, v.y, 1).Clamped(), true

	case FormatKelvin, FormatWhite:
		return colorful.Color{}, false
	}

	return colorful.Color{}, false
}

// DisplayHex returns an approximate hex string for log swatches.
func (v Value) DisplayHex() (string, bool) {
	if c, ok := v.RGBColor(); ok {
		return c.Hex(), true
	}

	return "", false
}

// Equal reports exact equality of format and declared components.
func (v Value) Equal(other Value) bool {
	if v.format != other.format {
		return false
	}

	switch v.format {
	case FormatKelvin:
		return v.kelvin == other.kelvin
	case FormatHS:
		return v.hue == other.hue && v.sat == other.sat
	case FormatRGB, FormatRGBW, FormatRGBWW:
		return v.comps == other.comps
	case FormatXY:
		return v.x == other.x && v.y == other.y
	case FormatWhite:
		return v.white == other.white
	case FormatName:
		return v.name == other.name
	}

	return false
}

func (v Value) String() string {
	attrs := v.ServiceAttrs()
	for attr, value := range attrs {
		return fmt.Sprintf("%s=%v", attr, value)
	}

	return "none"
}

// MarshalJSON renders the value as its single-attribute mapping, the shape
// the get_favorite_colors response uses.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ServiceAttrs())
}

// UniqueFavorites drops duplicates while preserving declaration order.
func UniqueFavorites(colors []Value) []Value {
	result := make([]Value, 0, len(colors))

	for _, c := range colors {
		seen := false

		for _, r := range result {
			if r.Equal(c) {
				seen = true

				break
			}
		}

		if !seen {
			result = append(result, c)
		}
	}

	return result
}

// Decode parses a one-attribute color mapping as found in config files and
// service payloads. Exactly one color attribute must be present and its
// value must be in range.
func Decode(raw map[string]interface{}) (Value, error) {
	found := Value{}
	count := 0

	for attr, rawValue := range raw {
		value, err := decodeAttr(attr, rawValue)
		if err != nil {
			return Value{}, err
		}

		if value.IsZero() {
			// not a color attribute, callers pass mixed maps
			continue
		}

		found = value
		count++
	}

	switch {
	case count == 0:
		return Value{}, fmt.Errorf("%w: no color attribute in %v", models.ErrInvalidColor, raw)
	case count > 1:
		return Value{}, fmt.Errorf("%w: %v", models.ErrMultipleColors, raw)
	}

	return found, nil
}

// HasColorAttr reports whether the mapping mentions any color attribute.
func HasColorAttr(raw map[string]interface{}) bool {
	for _, attr := range AnyColorAttrs {
		if _, ok := raw[attr]; ok {
			return true
		}
	}

	return false
}

func decodeAttr(attr string, rawValue interface{}) (Value, error) {
	switch attr {
	case AttrKelvin:
		kelvin, err := toInt(rawValue)
		if err != nil || kelvin <= 0 {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return Kelvin(kelvin), nil

	case AttrHS:
		pair, err := toFloats(rawValue, 2)
		if err != nil || pair[0] < 0 || pair[0] > 360 || pair[1] < 0 || pair[1] > 100 {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return HS(pair[0], pair[1]), nil

	case AttrRGB:
		b, err := toBytes(rawValue, 3)
		if err != nil {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return RGB(b[0], b[1], b[2]), nil

	case AttrRGBW:
		b, err := toBytes(rawValue, 4)
		if err != nil {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return RGBW(b[0], b[1], b[2], b[3]), nil

	case AttrRGBWW:
		b, err := toBytes(rawValue, 5)
		if err != nil {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return RGBWW(b[0], b[1], b[2], b[3], b[4]), nil

	case AttrXY:
		pair, err := toFloats(rawValue, 2)
		if err != nil || pair[0] < 0 || pair[0] > 1 || pair[1] < 0 || pair[1] > 1 {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return XY(pair[0], pair[1]), nil

	case AttrWhite:
		white, err := toInt(rawValue)
		if err != nil || white < 0 || white > 255 {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return White(white), nil

	case AttrName:
		name, ok := rawValue.(string)
		if !ok || name == "" {
			return Value{}, invalidColorErr(attr, rawValue)
		}

		return Name(name), nil
	}

	// not a color attribute
	return Value{}, nil
}

func invalidColorErr(attr string, value interface{}) error {
	return fmt.Errorf("%w: %s=%v", models.ErrInvalidColor, attr, value)
}

func toInt(raw interface{}) (int, error) {
	var value float64
	if err := mapstructure.WeakDecode(raw, &value); err != nil {
		return 0, err
	}

	if value != math.Trunc(value) {
		return 0, fmt.Errorf("%w: not an integer: %v", models.ErrInvalidColor, raw)
	}

	return int(value), nil
}

func toFloats(raw interface{}, want int) ([]float64, error) {
	var values []float64
	if err := mapstructure.WeakDecode(raw, &values); err != nil {
		return nil, err
	}

	if len(values) != want {
		return nil, fmt.Errorf("%w: want %d components, got %d", models.ErrInvalidColor, want, len(values))
	}

	return values, nil
}

func toBytes(raw interface{}, want int) ([]uint8, error) {
	values, err := toFloats(raw, want)
	if err != nil {
		return nil, err
	}

	bytes := make([]uint8, want)

	for i, value := range values {
		if value < 0 || value > 255 || value != math.Trunc(value) {
			return nil, fmt.Errorf("%w: byte out of range: %v", models.ErrInvalidColor, value)
		}

		bytes[i] = uint8(value)
	}

	return bytes, nil
}
