// Package profile holds the named light presets and their merge rules.
package profile

import (
	"fmt"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/models"
)

const (
	attrBrightness = "brightness"
	attrTransition = "transition"
)

// valid ranges for declared brightness and transition values, shared with
// scene entity states.
const (
	MaxBrightness = 255
	MaxTransition = 6553
)

// Profile is a named preset of color, brightness and transition for one light.
// At most one color format is declared, enforced at load time.
type Profile struct {
	Name       string
	Color      *color.Value
	Brightness *int
	Transition *float64
}

// ServiceAttrs returns the full attribute map declared by the profile.
func (p *Profile) ServiceAttrs() map[string]interface{} {
	attrs := make(map[string]interface{})

	if p.Color != nil {
		for attr, value := range p.Color.ServiceAttrs() {
			attrs[attr] = value
		}
	}

	if p.Brightness != nil {
		attrs[attrBrightness] = *p.Brightness
	}

	if p.Transition != nil {
		attrs[attrTransition] = *p.Transition
	}

	return attrs
}

// ApplyDefaults merges the profile into params the way a turn-on default is
// applied: the transition is always defaulted in, brightness and color only
// when the light is currently off or the caller passed no attributes of its
// own. Explicit params always win; an explicit color attribute suppresses
// the profile color entirely.
func (p *Profile) ApplyDefaults(stateOn bool, params map[string]interface{}) {
	hadParams := len(params) > 0

	if p.Transition != nil {
		setDefault(params, attrTransition, *p.Transition)
	}

	if stateOn && hadParams {
		return
	}

	if p.Brightness != nil {
		setDefault(params, attrBrightness, *p.Brightness)
	}

	if p.Color != nil && !color.HasColorAttr(params) {
		for attr, value := range p.Color.ServiceAttrs() {
			params[attr] = value
		}
	}
}

func setDefault(params map[string]interface{}, key string, value interface{}) {
	if _, ok := params[key]; !ok {
		params[key] = value
	}
}

func (p *Profile) validate() error {
	if p.Brightness != nil && (*p.Brightness < 0 || *p.Brightness > MaxBrightness) {
		return fmt.Errorf("%w: profile %s: %d", models.ErrBrightnessRange, p.Name, *p.Brightness)
	}

	if p.Transition != nil && (*p.Transition < 0 || *p.Transition > MaxTransition) {
		return fmt.Errorf("%w: profile %s: %f", models.ErrTransitionRange, p.Name, *p.Transition)
	}

	return nil
}

// Store is the immutable, ordered collection of profiles. Names are unique;
// a duplicate is a load error, not a silent overwrite.
type Store struct {
	ordered []*Profile
	byName  map[string]*Profile
}

func NewStore(profiles []*Profile) (*Store, error) {
	store := &Store{
		ordered: make([]*Profile, 0, len(profiles)),
		byName:  make(map[string]*Profile, len(profiles)),
	}

	for _, p := range profiles {
		if _, ok := store.byName[p.Name]; ok {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateProfile, p.Name)
		}

		if err := p.validate(); err != nil {
			return nil, err
		}

		store.ordered = append(store.ordered, p)
		store.byName[p.Name] = p
	}

	return store, nil
}

// Get looks up a profile by name.
func (s *Store) Get(name string) (*Profile, error) {
	p, ok := s.byName[name]
	if !ok {
		return nil, models.UnknownProfileErr(name)
	}

	return p, nil
}

// All returns the profiles in declaration order.
func (s *Store) All() []*Profile {
	return s.ordered
}

func (s *Store) Len() int {
	return len(s.ordered)
}

// ApplyProfile builds the dispatch attribute map for a named profile merged
// with override attributes. Override fields win per-field; an override color
// attribute fully replaces the profile's color rather than merging
// component-wise.
func ApplyProfile(name string, store *Store, override map[string]interface{}) (map[string]interface{}, error) {
	p, err := store.Get(name)
	if err != nil {
		return nil, err
	}

	attrs := make(map[string]interface{}, len(override)+3)
	for key, value := range override {
		attrs[key] = value
	}

	if p.Brightness != nil {
		setDefault(attrs, attrBrightness, *p.Brightness)
	}

	if p.Transition != nil {
		setDefault(attrs, attrTransition, *p.Transition)
	}

	if p.Color != nil && !color.HasColorAttr(attrs) {
		for attr, value := range p.Color.ServiceAttrs() {
			attrs[attr] = value
		}
	}

	return attrs, nil
}

// DefaultAttrs returns the turn-on defaults of a binding: the first
// profile's attributes, or an empty map when the binding has no profiles.
func DefaultAttrs(profiles []*Profile) map[string]interface{} {
	if len(profiles) == 0 {
		return map[string]interface{}{}
	}

	return profiles[0].ServiceAttrs()
}

// FavoriteColors assembles the favorite-color list of a binding: the
// favorite-representable profile colors in declaration order, followed by
// the explicit favorites, de-duplicated. Non-representable colors are
// silently skipped.
func FavoriteColors(profiles []*Profile, explicit []color.Value) []color.Value {
	favorites := make([]color.Value, 0, len(profiles)+len(explicit))

	for _, p := range profiles {
		if p.Color == nil {
			continue
		}

		if favorite, ok := p.Color.Favorite(); ok {
			favorites = append(favorites, favorite)
		}
	}

	favorites = append(favorites, explicit...)

	return color.UniqueFavorites(favorites)
}
