package homeassistant

import (
	"testing"

	"github.com/arnvid/scenery-go/internal/models/domain"
)

func mustEntityID(t *testing.T, raw string) EntityID {
	t.Helper()

	entityID, err := NewEntityID(raw)
	if err != nil {
		t.Fatalf("NewEntityID(%q) failed: %v", raw, err)
	}

	return *entityID
}

func Test_Domain(t *testing.T) {
	tests := []struct {
		name string
		eID  string
		want domain.Domain
	}{
		{
			name: "light entity id",
			eID:  "light.living_room",
			want: domain.Light,
		},
		{
			name: "select entity id",
			eID:  "select.living_room_scene",
			want: domain.Select,
		},
		{
			name: "input select entity id",
			eID:  "input_select.living_room_scene",
			want: domain.InputSelect,
		},
		{
			name: "entity id with 'subdomain'",
			eID:  "light.living_room.hue",
			want: domain.Light,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustEntityID(t, tt.eID).Domain(); got != tt.want {
				t.Errorf("homeassistant.EntityID.Domain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_NewEntityID_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "no domain", raw: "living_room"},
		{name: "empty domain", raw: ".living_room"},
		{name: "empty name", raw: "light."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEntityID(tt.raw); err == nil {
				t.Errorf("NewEntityID(%q) expected error, got none", tt.raw)
			}
		})
	}
}

func Test_StateAvailable(t *testing.T) {
	tests := []struct {
		name  string
		state *State
		want  bool
	}{
		{name: "nil state", state: nil, want: false},
		{name: "empty state", state: &State{}, want: false},
		{name: "unavailable", state: &State{State: StateUnavailable}, want: false},
		{name: "unknown", state: &State{State: StateUnknown}, want: false},
		{name: "on", state: &State{State: StateOn}, want: true},
		{name: "off", state: &State{State: StateOff}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Available(); got != tt.want {
				t.Errorf("State.Available() = %v, want %v", got, tt.want)
			}
		})
	}
}
