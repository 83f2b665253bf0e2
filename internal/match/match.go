// Package match decides whether a live light state matches a declared
// preset within tolerance, and picks the best match among candidates.
//
// The comparison is asymmetric: an observed snapshot may carry several
// equivalent color representations (whatever formats the device natively
// exposes), while a preset declares exactly one. A preset matches when the
// observed representation in the preset's format agrees within the
// per-field tolerance. Attributes a preset does not declare never
// contribute - they cannot cause a mismatch and do not affect the score.
package match

import (
	"math"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/profile"
	"github.com/mitchellh/mapstructure"
)

// ColorModeWhite is the color mode a light reports when commanded into
// white mode; a declared white color matches only that mode.
const ColorModeWhite = "white"

// Snapshot is the observed state of one light, normalized from the device
// boundary's native attributes. Missing attributes stay nil and simply
// cannot satisfy a preset that declares them.
type Snapshot struct {
	On        bool
	Available bool

	Brightness *int
	ColorMode  string

	Kelvin *int
	HS     *[2]float64
	RGB    *[3]uint8
	RGBW   *[4]uint8
	RGBWW  *[5]uint8
	XY     *[2]float64
}

// EffectiveBrightness is the observed brightness, falling back to the white
// channel when the light is in white mode without a brightness attribute.
func (s Snapshot) EffectiveBrightness() *int {
	if s.Brightness != nil {
		return s.Brightness
	}

	if s.ColorMode == ColorModeWhite && s.RGBW != nil {
		white := int(s.RGBW[3])

		return &white
	}

	return nil
}

// snapshotAttrs is the subset of state attributes the matcher cares about.
// Decoding is weak on purpose: devices report ints, floats and json numbers
// interchangeably, and a malformed attribute must degrade to "absent", not
// to an error.
type snapshotAttrs struct {
	Brightness *float64   `mapstructure:"brightness"`
	ColorMode  string     `mapstructure:"color_mode"`
	Kelvin     *float64   `mapstructure:"color_temp_kelvin"`
	HS         *[]float64 `mapstructure:"hs_color"`
	RGB        *[]float64 `mapstructure:"rgb_color"`
	RGBW       *[]float64 `mapstructure:"rgbw_color"`
	RGBWW      *[]float64 `mapstructure:"rgbww_color"`
	XY         *[]float64 `mapstructure:"xy_color"`
}

// SnapshotFromAttrs builds a snapshot from a raw state string and attribute
// map as reported by the device boundary.
func SnapshotFromAttrs(state string, attrs map[string]interface{}) Snapshot {
	snap := Snapshot{
		On:        state == "on",
		Available: state != "" && state != "unavailable" && state != "unknown",
	}

	var decoded snapshotAttrs
	if err := mapstructure.WeakDecode(attrs, &decoded); err != nil {
		// malformed attributes degrade to an attributeless snapshot
		return snap
	}

	snap.ColorMode = decoded.ColorMode

	if decoded.Brightness != nil {
		brightness := int(*decoded.Brightness)
		snap.Brightness = &brightness
	}

	if decoded.Kelvin != nil {
		kelvin := int(*decoded.Kelvin)
		snap.Kelvin = &kelvin
	}

	if pair, ok := floatPair(decoded.HS); ok {
		snap.HS = &pair
	}

	if bytes, ok := byteChannels(decoded.RGB, 3); ok {
		snap.RGB = &[3]uint8{bytes[0], bytes[1], bytes[2]}
	}

	if bytes, ok := byteChannels(decoded.RGBW, 4); ok {
		snap.RGBW = &[4]uint8{bytes[0], bytes[1], bytes[2], bytes[3]}
	}

	if bytes, ok := byteChannels(decoded.RGBWW, 5); ok {
		snap.RGBWW = &[5]uint8{bytes[0], bytes[1], bytes[2], bytes[3], bytes[4]}
	}

	if pair, ok := floatPair(decoded.XY); ok {
		snap.XY = &pair
	}

	return snap
}

func floatPair(values *[]float64) ([2]float64, bool) {
	if values == nil || len(*values) != 2 {
		return [2]float64{}, false
	}

	return [2]float64{(*values)[0], (*values)[1]}, true
}

func byteChannels(values *[]float64, want int) ([]uint8, bool) {
	if values == nil || len(*values) != want {
		return nil, false
	}

	out := make([]uint8, want)

	for i, value := range *values {
		if value < 0 || value > 255 {
			return nil, false
		}

		out[i] = uint8(value)
	}

	return out, true
}

// Tolerances are the per-field epsilons deciding whether an observed value
// agrees with a declared one. The defaults are wide enough that the values
// a device echoes right after a dispatched change still match the preset
// just applied - narrowing them risks the selection flapping to "none"
// after every legitimate selection.
type Tolerances struct {
	Hue          float64 // degrees, range 0..360, wraps
	Saturation   float64 // percent, range 0..100
	Primary      float64 // per channel, range 0..255
	Chromaticity float64 // CIE xy, range 0..1
	Kelvin       float64 // kelvin
	Brightness   float64 // range 0..255
}

// DefaultTolerances returns the stock epsilons.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Hue:          2,
		Saturation:   2,
		Primary:      2,
		Chromaticity: 0.05,
		Kelvin:       100,
		Brightness:   2,
	}
}

// deviation returns |a-b| normalized by the tolerance: <= 1 means within.
func deviation(a, b, tolerance float64) float64 {
	if tolerance <= 0 {
		if a == b {
			return 0
		}

		return math.Inf(1)
	}

	return math.Abs(a-b) / tolerance
}

// hueDeviation wraps around the color circle: 359.5 and 0.5 are one degree apart.
func hueDeviation(a, b, tolerance float64) float64 {
	delta := math.Mod(math.Abs(a-b), 360)
	if delta > 180 {
		delta = 360 - delta
	}

	if tolerance <= 0 {
		if delta == 0 {
			return 0
		}

		return math.Inf(1)
	}

	return delta / tolerance
}

func channelsDeviation(observed, declared []uint8, tolerance float64) (float64, bool) {
	sum := 0.0

	for i := range declared {
		dev := deviation(float64(observed[i]), float64(declared[i]), tolerance)
		if dev > 1 {
			return 0, false
		}

		sum += dev
	}

	return sum / float64(len(declared)), true
}

// CompareColor scores the observed snapshot against one declared color.
// The returned score is the mean normalized component deviation in 0..1;
// ok is false when the declared color is outside tolerance or the snapshot
// does not expose the declared format at all.
func (t Tolerances) CompareColor(snap Snapshot, declared color.Value) (float64, bool) {
	// named colors are resolved to rgb before comparing
	if declared.Format() == color.FormatName {
		rgb, ok := declared.RGBColor()
		if !ok {
			return 0, false
		}

		r, g, b := rgb.RGB255()
		declared = color.RGB(r, g, b)
	}

	switch declared.Format() {
	case color.FormatWhite:
		// a white preset matches any light sitting in white mode
		return 0, snap.ColorMode == ColorModeWhite

	case color.FormatKelvin:
		if snap.Kelvin == nil {
			return 0, false
		}

		dev := deviation(float64(*snap.Kelvin), float64(declared.Kelvin()), t.Kelvin)

		return dev, dev <= 1

	case color.FormatRGBWW:
		if snap.RGBWW == nil {
			return 0, false
		}

		return channelsDeviation(snap.RGBWW[:], declared.Components(), t.Primary)

	case color.FormatRGBW:
		if snap.RGBW == nil {
			return 0, false
		}

		return channelsDeviation(snap.RGBW[:], declared.Components(), t.Primary)

	case color.FormatRGB:
		if snap.RGB == nil {
			return 0, false
		}

		return channelsDeviation(snap.RGB[:], declared.Components(), t.Primary)

	case color.FormatHS:
		if snap.HS == nil {
			return 0, false
		}

		hue, sat := declared.HS()

		hueDev := hueDeviation(snap.HS[0], hue, t.Hue)
		satDev := deviation(snap.HS[1], sat, t.Saturation)

		if hueDev > 1 || satDev > 1 {
			return 0, false
		}

		return (hueDev + satDev) / 2, true

	case color.FormatXY:
		if snap.XY == nil {
			return 0, false
		}

		x, y := declared.XY()

		xDev := deviation(snap.XY[0], x, t.Chromaticity)
		yDev := deviation(snap.XY[1], y, t.Chromaticity)

		if xDev > 1 || yDev > 1 {
			return 0, false
		}

		return (xDev + yDev) / 2, true

	case color.FormatName:
		// resolved above
		return 0, false
	}

	return 0, false
}

// Distance scores the snapshot against a profile. Only fields the profile
// declares are compared; each contributes its normalized deviation with
// equal weight. Lower is better; ok is false when any declared field is
// outside tolerance or missing from the snapshot.
func (t Tolerances) Distance(snap Snapshot, p *profile.Profile) (float64, bool) {
	score := 0.0

	if p.Color != nil {
		colorScore, ok := t.CompareColor(snap, *p.Color)
		if !ok {
			return 0, false
		}

		score += colorScore
	}

	if p.Brightness != nil {
		brightness := snap.EffectiveBrightness()
		if brightness == nil {
			return 0, false
		}

		dev := deviation(float64(*brightness), float64(*p.Brightness), t.Brightness)
		if dev > 1 {
			return 0, false
		}

		score += dev
	}

	return score, true
}

// BestProfile returns the index of the minimum-distance candidate, ties
// broken by declaration order, or -1 when no candidate is within tolerance.
// Callers handle the off short-circuit before evaluating candidates.
func (t Tolerances) BestProfile(snap Snapshot, candidates []*profile.Profile) int {
	best := -1
	bestScore := math.Inf(1)

	for i, candidate := range candidates {
		score, ok := t.Distance(snap, candidate)
		if !ok {
			continue
		}

		if score < bestScore {
			best = i
			bestScore = score
		}
	}

	return best
}
