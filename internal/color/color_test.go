package color

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/arnvid/scenery-go/internal/models"
)

func Test_Decode(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		want    Value
		wantErr error
	}{
		{
			name: "kelvin",
			raw:  map[string]interface{}{"color_temp_kelvin": 2700},
			want: Kelvin(2700),
		},
		{
			name: "hs",
			raw:  map[string]interface{}{"hs_color": []interface{}{340.0, 59.0}},
			want: HS(340, 59),
		},
		{
			name: "rgb",
			raw:  map[string]interface{}{"rgb_color": []interface{}{255, 0, 128}},
			want: RGB(255, 0, 128),
		},
		{
			name: "rgbww",
			raw:  map[string]interface{}{"rgbww_color": []interface{}{255, 0, 128, 10, 20}},
			want: RGBWW(255, 0, 128, 10, 20),
		},
		{
			name: "xy",
			raw:  map[string]interface{}{"xy_color": []interface{}{0.59, 0.25}},
			want: XY(0.59, 0.25),
		},
		{
			name: "white",
			raw:  map[string]interface{}{"white": 200},
			want: White(200),
		},
		{
			name: "named color",
			raw:  map[string]interface{}{"color_name": "rebeccapurple"},
			want: Name("rebeccapurple"),
		},
		{
			name: "non-color keys are ignored",
			raw:  map[string]interface{}{"rgb_color": []interface{}{1, 2, 3}, "friendly_name": "couch"},
			want: RGB(1, 2, 3),
		},
		{
			name:    "no color attribute",
			raw:     map[string]interface{}{"friendly_name": "couch"},
			wantErr: models.ErrInvalidColor,
		},
		{
			name:    "two color attributes",
			raw:     map[string]interface{}{"rgb_color": []interface{}{1, 2, 3}, "white": 10},
			wantErr: models.ErrMultipleColors,
		},
		{
			name:    "hue out of range",
			raw:     map[string]interface{}{"hs_color": []interface{}{361.0, 10.0}},
			wantErr: models.ErrInvalidColor,
		},
		{
			name:    "rgb channel out of range",
			raw:     map[string]interface{}{"rgb_color": []interface{}{256, 0, 0}},
			wantErr: models.ErrInvalidColor,
		},
		{
			name:    "rgb wrong arity",
			raw:     map[string]interface{}{"rgb_color": []interface{}{255, 0}},
			wantErr: models.ErrInvalidColor,
		},
		{
			name:    "kelvin zero",
			raw:     map[string]interface{}{"color_temp_kelvin": 0},
			wantErr: models.ErrInvalidColor,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_ServiceAttrs(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  map[string]interface{}
	}{
		{
			name:  "kelvin",
			value: Kelvin(4000),
			want:  map[string]interface{}{"color_temp_kelvin": 4000},
		},
		{
			name:  "hs",
			value: HS(12.5, 70),
			want:  map[string]interface{}{"hs_color": []float64{12.5, 70}},
		},
		{
			name:  "rgbw",
			value: RGBW(1, 2, 3, 4),
			want:  map[string]interface{}{"rgbw_color": []uint8{1, 2, 3, 4}},
		},
		{
			name:  "white",
			value: White(128),
			want:  map[string]interface{}{"white": 128},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.value.ServiceAttrs()

			if len(got) != 1 {
				t.Fatalf("ServiceAttrs() returned %d attributes, want exactly 1", len(got))
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ServiceAttrs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Favorite(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{name: "kelvin is representable", value: Kelvin(2700), want: true},
		{name: "hs is representable", value: HS(10, 20), want: true},
		{name: "rgb is representable", value: RGB(1, 2, 3), want: true},
		{name: "rgbw is representable", value: RGBW(1, 2, 3, 4), want: true},
		{name: "rgbww is representable", value: RGBWW(1, 2, 3, 4, 5), want: true},
		{name: "xy is not", value: XY(0.3, 0.3), want: false},
		{name: "white is not", value: White(100), want: false},
		{name: "named color is not", value: Name("red"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favorite, ok := tt.value.Favorite()
			if ok != tt.want {
				t.Fatalf("Favorite() ok = %v, want %v", ok, tt.want)
			}

			if ok && !favorite.Equal(tt.value) {
				t.Errorf("Favorite() = %v, want identity %v", favorite, tt.value)
			}
		})
	}
}

func Test_RGBColor_Name(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		wantHex string
		wantOK  bool
	}{
		{name: "css name", value: Name("red"), wantHex: "#ff0000", wantOK: true},
		{name: "name with spaces", value: Name("Rebecca Purple"), wantHex: "#663399", wantOK: true},
		{name: "homeassistant brand color", value: Name("homeassistant"), wantHex: "#18bcf2", wantOK: true},
		{name: "hex passthrough", value: Name("#a1b2c3"), wantHex: "#a1b2c3", wantOK: true},
		{name: "unknown name", value: Name("notacolor"), wantOK: false},
		{name: "kelvin has no rgb projection", value: Kelvin(2700), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := tt.value.RGBColor()
			if ok != tt.wantOK {
				t.Fatalf("RGBColor() ok = %v, want %v", ok, tt.wantOK)
			}

			if ok && c.Hex() != tt.wantHex {
				t.Errorf("RGBColor().Hex() = %v, want %v", c.Hex(), tt.wantHex)
			}
		})
	}
}

func Test_UniqueFavorites(t *testing.T) {
	colors := []Value{
		Kelvin(2700),
		RGB(255, 0, 0),
		Kelvin(2700),
		HS(10, 20),
		RGB(255, 0, 0),
	}

	got := UniqueFavorites(colors)
	want := []Value{Kelvin(2700), RGB(255, 0, 0), HS(10, 20)}

	if len(got) != len(want) {
		t.Fatalf("UniqueFavorites() returned %d values, want %d", len(got), len(want))
	}

	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("UniqueFavorites()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func Test_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Kelvin(2700))
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	if string(raw) != `{"color_temp_kelvin":2700}` {
		t.Errorf("Marshal() = %s", raw)
	}
}
