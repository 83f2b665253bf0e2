package scene

import (
	"errors"
	"reflect"
	"testing"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/match"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/profile"
)

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func colorPtr(v color.Value) *color.Value { return &v }

func entity(t *testing.T, raw string) homeassistant.EntityID {
	t.Helper()

	entityID, err := homeassistant.NewEntityID(raw)
	if err != nil {
		t.Fatalf("NewEntityID(%q) failed: %v", raw, err)
	}

	return *entityID
}

func testStore(t *testing.T) *profile.Store {
	t.Helper()

	store, err := profile.NewStore([]*profile.Profile{
		{Name: "relax", Color: colorPtr(color.Kelvin(2700)), Brightness: intPtr(144), Transition: floatPtr(0.5)},
		{Name: "concentrate", Color: colorPtr(color.Kelvin(4000)), Brightness: intPtr(254)},
	})
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	return store
}

func onSnapshot(kelvin, brightness int) match.Snapshot {
	return match.Snapshot{On: true, Available: true, Kelvin: intPtr(kelvin), Brightness: intPtr(brightness)}
}

func Test_Match(t *testing.T) {
	store := testStore(t)
	tolerances := match.DefaultTolerances()

	couch := entity(t, "light.couch")
	spots := entity(t, "light.spots")
	shelf := entity(t, "light.shelf")

	movie := &Scene{
		Name: "Movie",
		Entities: map[homeassistant.EntityID]EntityState{
			couch: {On: true, Profile: "relax"},
			spots: {On: false},
		},
	}

	tests := []struct {
		name      string
		snapshots map[homeassistant.EntityID]match.Snapshot
		wantOK    bool
	}{
		{
			name: "every mentioned entity agrees",
			snapshots: map[homeassistant.EntityID]match.Snapshot{
				couch: onSnapshot(2700, 144),
				spots: {Available: true},
			},
			wantOK: true,
		},
		{
			name: "unmentioned entities are unconstrained",
			snapshots: map[homeassistant.EntityID]match.Snapshot{
				couch: onSnapshot(2700, 144),
				spots: {Available: true},
				shelf: onSnapshot(6500, 255),
			},
			wantOK: true,
		},
		{
			name: "off entity is on",
			snapshots: map[homeassistant.EntityID]match.Snapshot{
				couch: onSnapshot(2700, 144),
				spots: onSnapshot(2700, 144),
			},
			wantOK: false,
		},
		{
			name: "on entity is off",
			snapshots: map[homeassistant.EntityID]match.Snapshot{
				couch: {Available: true},
				spots: {Available: true},
			},
			wantOK: false,
		},
		{
			name: "on entity outside tolerance",
			snapshots: map[homeassistant.EntityID]match.Snapshot{
				couch: onSnapshot(4000, 144),
				spots: {Available: true},
			},
			wantOK: false,
		},
		{
			name: "mentioned entity unavailable",
			snapshots: map[homeassistant.EntityID]match.Snapshot{
				couch: onSnapshot(2700, 144),
			},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Match(tt.snapshots, movie, tolerances, store)
			if ok != tt.wantOK {
				t.Errorf("Match() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func Test_Match_AggregateIsWorstEntity(t *testing.T) {
	store := testStore(t)
	tolerances := match.DefaultTolerances()

	couch := entity(t, "light.couch")
	spots := entity(t, "light.spots")

	scene := &Scene{
		Name: "Evening",
		Entities: map[homeassistant.EntityID]EntityState{
			couch: {On: true, Profile: "relax"},
			spots: {On: true, Profile: "relax"},
		},
	}

	snapshots := map[homeassistant.EntityID]match.Snapshot{
		couch: onSnapshot(2700, 144), // perfect
		spots: onSnapshot(2780, 144), // kelvin off by 80 of 100
	}

	score, ok := Match(snapshots, scene, tolerances, store)
	if !ok {
		t.Fatal("Match() should succeed")
	}

	if score < 0.7 {
		t.Errorf("Match() score = %v, want the worst entity's deviation to dominate", score)
	}
}

func Test_BestScene(t *testing.T) {
	store := testStore(t)
	tolerances := match.DefaultTolerances()

	couch := entity(t, "light.couch")

	evening := &Scene{
		Name:     "Evening",
		Entities: map[homeassistant.EntityID]EntityState{couch: {On: true, Profile: "relax"}},
	}
	work := &Scene{
		Name:     "Work",
		Entities: map[homeassistant.EntityID]EntityState{couch: {On: true, Profile: "concentrate"}},
	}
	eveningAgain := &Scene{
		Name:     "Evening again",
		Entities: map[homeassistant.EntityID]EntityState{couch: {On: true, Profile: "relax"}},
	}

	scenes := []*Scene{evening, work, eveningAgain}

	tests := []struct {
		name      string
		snapshots map[homeassistant.EntityID]match.Snapshot
		want      int
	}{
		{
			name:      "closest scene wins",
			snapshots: map[homeassistant.EntityID]match.Snapshot{couch: onSnapshot(4000, 254)},
			want:      1,
		},
		{
			name:      "tie broken by declaration order",
			snapshots: map[homeassistant.EntityID]match.Snapshot{couch: onSnapshot(2700, 144)},
			want:      0,
		},
		{
			name:      "no scene matches",
			snapshots: map[homeassistant.EntityID]match.Snapshot{couch: onSnapshot(3300, 30)},
			want:      -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestScene(tt.snapshots, scenes, tolerances, store); got != tt.want {
				t.Errorf("BestScene() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_EntityStateServiceAttrs(t *testing.T) {
	store := testStore(t)

	tests := []struct {
		name     string
		state    EntityState
		fallback *float64
		want     map[string]interface{}
		wantErr  error
	}{
		{
			name:  "profile expansion",
			state: EntityState{On: true, Profile: "relax"},
			want: map[string]interface{}{
				"brightness":        144,
				"transition":        0.5,
				"color_temp_kelvin": 2700,
			},
		},
		{
			name:  "explicit fields win over profile",
			state: EntityState{On: true, Profile: "relax", Brightness: intPtr(42), Color: colorPtr(color.HS(120, 50))},
			want: map[string]interface{}{
				"brightness": 42,
				"transition": 0.5,
				"hs_color":   []float64{120, 50},
			},
		},
		{
			name:     "fallback transition fills in",
			state:    EntityState{On: true, Brightness: intPtr(42)},
			fallback: floatPtr(2),
			want: map[string]interface{}{
				"brightness": 42,
				"transition": 2.0,
			},
		},
		{
			name:     "own transition beats fallback",
			state:    EntityState{On: true, Transition: floatPtr(6)},
			fallback: floatPtr(2),
			want: map[string]interface{}{
				"transition": 6.0,
			},
		},
		{
			name:    "unknown profile",
			state:   EntityState{On: true, Profile: "party"},
			wantErr: models.ErrUnknownProfile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.state.ServiceAttrs(store, tt.fallback)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ServiceAttrs() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("ServiceAttrs() unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ServiceAttrs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_NewGroup(t *testing.T) {
	store := testStore(t)
	couch := entity(t, "light.couch")

	valid := &Scene{Name: "Evening", Entities: map[homeassistant.EntityID]EntityState{couch: {On: true}}}
	empty := &Scene{Name: "Empty", Entities: map[homeassistant.EntityID]EntityState{}}
	unknownProfile := &Scene{Name: "Party", Entities: map[homeassistant.EntityID]EntityState{couch: {On: true, Profile: "party"}}}
	brightnessRange := &Scene{Name: "Glare", Entities: map[homeassistant.EntityID]EntityState{couch: {On: true, Brightness: intPtr(999)}}}
	transitionRange := &Scene{Name: "Rewind", Entities: map[homeassistant.EntityID]EntityState{couch: {On: true, Transition: floatPtr(-3)}}}
	sceneTransitionRange := &Scene{Name: "Rush", Transition: floatPtr(-1), Entities: map[homeassistant.EntityID]EntityState{couch: {On: true}}}

	if _, err := NewGroup("living room", "", []*Scene{valid}, store); err != nil {
		t.Errorf("NewGroup() unexpected error: %v", err)
	}

	if _, err := NewGroup("living room", "", []*Scene{valid, empty}, store); !errors.Is(err, models.ErrEmptySceneEntites) {
		t.Errorf("NewGroup() error = %v, want %v", err, models.ErrEmptySceneEntites)
	}

	if _, err := NewGroup("living room", "", []*Scene{unknownProfile}, store); !errors.Is(err, models.ErrUnknownProfile) {
		t.Errorf("NewGroup() error = %v, want %v", err, models.ErrUnknownProfile)
	}

	if _, err := NewGroup("living room", "", []*Scene{brightnessRange}, store); !errors.Is(err, models.ErrBrightnessRange) {
		t.Errorf("NewGroup() error = %v, want %v", err, models.ErrBrightnessRange)
	}

	if _, err := NewGroup("living room", "", []*Scene{transitionRange}, store); !errors.Is(err, models.ErrTransitionRange) {
		t.Errorf("NewGroup() error = %v, want %v", err, models.ErrTransitionRange)
	}

	if _, err := NewGroup("living room", "", []*Scene{sceneTransitionRange}, store); !errors.Is(err, models.ErrTransitionRange) {
		t.Errorf("NewGroup() error = %v, want %v", err, models.ErrTransitionRange)
	}
}

func Test_GroupScene(t *testing.T) {
	store := testStore(t)
	couch := entity(t, "light.couch")

	group, err := NewGroup("living room", "", []*Scene{
		{Name: "Evening", Entities: map[homeassistant.EntityID]EntityState{couch: {On: true}}},
	}, store)
	if err != nil {
		t.Fatalf("NewGroup() failed: %v", err)
	}

	if _, err := group.Scene("Evening"); err != nil {
		t.Errorf("Scene(Evening) failed: %v", err)
	}

	if _, err := group.Scene("Morning"); !errors.Is(err, models.ErrUnknownScene) {
		t.Errorf("Scene(Morning) error = %v, want %v", err, models.ErrUnknownScene)
	}
}
