// Package scene aggregates per-light matching into whole-scene matching: a
// scene names a set of entities and the state each must be in, and matches
// only when every mentioned entity agrees. Entities a scene does not
// mention are unconstrained.
package scene

import (
	"fmt"
	"math"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/match"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/profile"
	mapset "github.com/deckarep/golang-set/v2"
)

const attrTransition = "transition"

// EntityState declares the state one entity must be in for a scene to
// match. Off means exactly that; On may additionally pin a profile,
// brightness, color and transition. Declared fields constrain the match,
// undeclared fields do not.
type EntityState struct {
	On         bool
	Profile    string
	Brightness *int
	Color      *color.Value
	Transition *float64
}

// ServiceAttrs builds the dispatch attribute map for this entity state.
// A referenced profile is expanded through the store with the explicit
// fields winning per-field; the fallback transition fills in last.
func (es EntityState) ServiceAttrs(store *profile.Store, fallbackTransition *float64) (map[string]interface{}, error) {
	override := make(map[string]interface{})

	if es.Brightness != nil {
		override["brightness"] = *es.Brightness
	}

	if es.Transition != nil {
		override[attrTransition] = *es.Transition
	}

	if es.Color != nil {
		for attr, value := range es.Color.ServiceAttrs() {
			override[attr] = value
		}
	}

	attrs := override

	if es.Profile != "" {
		expanded, err := profile.ApplyProfile(es.Profile, store, override)
		if err != nil {
			return nil, err
		}

		attrs = expanded
	}

	if fallbackTransition != nil {
		if _, ok := attrs[attrTransition]; !ok {
			attrs[attrTransition] = *fallbackTransition
		}
	}

	return attrs, nil
}

// declared flattens the entity state into a comparable profile: the
// referenced profile's fields with the explicit fields layered on top.
// Transition is dispatch-only and never constrains a match.
func (es EntityState) declared(store *profile.Store) (*profile.Profile, error) {
	flat := &profile.Profile{}

	if es.Profile != "" {
		p, err := store.Get(es.Profile)
		if err != nil {
			return nil, err
		}

		flat.Color = p.Color
		flat.Brightness = p.Brightness
	}

	if es.Brightness != nil {
		flat.Brightness = es.Brightness
	}

	if es.Color != nil {
		flat.Color = es.Color
	}

	return flat, nil
}

// Scene is a named set of entity states. The transition applies to every
// entity that does not declare its own.
type Scene struct {
	Name       string
	UniqueID   string
	Entities   map[homeassistant.EntityID]EntityState
	Transition *float64
}

func (s *Scene) validate(store *profile.Store) error {
	if len(s.Entities) == 0 {
		return fmt.Errorf("%w: %s", models.ErrEmptySceneEntites, s.Name)
	}

	if s.Transition != nil && (*s.Transition < 0 || *s.Transition > profile.MaxTransition) {
		return fmt.Errorf("%w: scene %s: %f", models.ErrTransitionRange, s.Name, *s.Transition)
	}

	for entityID, state := range s.Entities {
		if state.Profile != "" {
			if _, err := store.Get(state.Profile); err != nil {
				return fmt.Errorf("scene %s entity %s: %w", s.Name, entityID.ID, err)
			}
		}

		if state.Brightness != nil && (*state.Brightness < 0 || *state.Brightness > profile.MaxBrightness) {
			return fmt.Errorf("%w: scene %s entity %s: %d", models.ErrBrightnessRange, s.Name, entityID.ID, *state.Brightness)
		}

		if state.Transition != nil && (*state.Transition < 0 || *state.Transition > profile.MaxTransition) {
			return fmt.Errorf("%w: scene %s entity %s: %f", models.ErrTransitionRange, s.Name, entityID.ID, *state.Transition)
		}
	}

	return nil
}

// Group is an ordered collection of scenes driving one scene select.
type Group struct {
	Name     string
	UniqueID string
	Scenes   []*Scene
}

// NewGroup validates the scenes against the profile store.
func NewGroup(name, uniqueID string, scenes []*Scene, store *profile.Store) (*Group, error) {
	group := &Group{Name: name, UniqueID: uniqueID, Scenes: scenes}

	for _, scene := range scenes {
		if err := scene.validate(store); err != nil {
			return nil, err
		}
	}

	return group, nil
}

// Scene looks up a scene of the group by name.
func (g *Group) Scene(name string) (*Scene, error) {
	for _, scene := range g.Scenes {
		if scene.Name == name {
			return scene, nil
		}
	}

	return nil, fmt.Errorf("%w: %s in group %s", models.ErrUnknownScene, name, g.Name)
}

// EntityIDs returns the set of all entities referenced by any scene of the
// group.
func (g *Group) EntityIDs() mapset.Set[homeassistant.EntityID] {
	entities := mapset.NewSet[homeassistant.EntityID]()

	for _, scene := range g.Scenes {
		for entityID := range scene.Entities {
			entities.Add(entityID)
		}
	}

	return entities
}

// Match scores the scene against the observed snapshots. Every mentioned
// entity must agree with its declared state within tolerance; the aggregate
// score is the worst per-entity score. A scene mentioning an unavailable
// entity cannot match.
func Match(snapshots map[homeassistant.EntityID]match.Snapshot, scene *Scene, tolerances match.Tolerances, store *profile.Store) (float64, bool) {
	worst := 0.0

	for entityID, declared := range scene.Entities {
		snap, ok := snapshots[entityID]
		if !ok || !snap.Available {
			return 0, false
		}

		if !declared.On {
			if snap.On {
				return 0, false
			}

			continue
		}

		if !snap.On {
			return 0, false
		}

		flat, err := declared.declared(store)
		if err != nil {
			return 0, false
		}

		score, ok := tolerances.Distance(snap, flat)
		if !ok {
			return 0, false
		}

		worst = math.Max(worst, score)
	}

	return worst, true
}

// BestScene returns the index of the matching scene with the lowest
// aggregate score, ties broken by declaration order, or -1 when no scene
// matches.
func BestScene(snapshots map[homeassistant.EntityID]match.Snapshot, scenes []*Scene, tolerances match.Tolerances, store *profile.Store) int {
	best := -1
	bestScore := math.Inf(1)

	for i, scene := range scenes {
		score, ok := Match(snapshots, scene, tolerances, store)
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
