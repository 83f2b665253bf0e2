package scenery

import (
	"fmt"
	"sync"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/models"
)

// Favorites holds the favorite color lists per light. Each light has a
// seeded default list assembled from its configuration and an optional
// explicit list set at runtime. The never-set state stays observable: Get
// returns nil until an explicit list exists, and again after a reset, so a
// caller can tell "defaults apply" from an explicitly cleared (empty) list.
type Favorites struct {
	mu       sync.RWMutex
	defaults map[homeassistant.EntityID][]color.Value
	explicit map[homeassistant.EntityID][]color.Value
}

func NewFavorites() *Favorites {
	return &Favorites{
		defaults: make(map[homeassistant.EntityID][]color.Value),
		explicit: make(map[homeassistant.EntityID][]color.Value),
	}
}

// Seed registers a light with its assembled default favorites. Only seeded
// lights are known to the registry.
func (f *Favorites) Seed(entityID homeassistant.EntityID, colors []color.Value) {
	f.mu.Lock()
	f.defaults[entityID] = colors
	f.mu.Unlock()
}

// Get returns the explicitly set favorite colors of a light. A nil slice
// means no explicit list was ever set (or the last Set reset it) and the
// caller should fall back to Defaults; a cleared list comes back empty,
// never nil, and must not be replaced with defaults.
func (f *Favorites) Get(entityID homeassistant.EntityID) ([]color.Value, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, ok := f.defaults[entityID]; !ok {
		return nil, models.EntityNotFoundErr(entityID.ID)
	}

	if colors, ok := f.explicit[entityID]; ok {
		return colors, nil
	}

	return nil, nil
}

// Defaults returns the seeded default list of a light, the one callers
// show while Get reports the never-set state.
func (f *Favorites) Defaults(entityID homeassistant.EntityID) ([]color.Value, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	colors, ok := f.defaults[entityID]
	if !ok {
		return nil, models.EntityNotFoundErr(entityID.ID)
	}

	return colors, nil
}

// Set stores an explicit favorite list. An empty list clears the favorites,
// nil resets the light back to its seeded defaults. Every value must be
// favorite-representable.
func (f *Favorites) Set(entityID homeassistant.EntityID, colors *[]color.Value) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.defaults[entityID]; !ok {
		return models.EntityNotFoundErr(entityID.ID)
	}

	if colors == nil {
		delete(f.explicit, entityID)

		return nil
	}

	for _, value := range *colors {
		if _, ok := value.Favorite(); !ok {
			return fmt.Errorf("%w: %s", models.ErrNotFavoriteColor, value)
		}
	}

	f.explicit[entityID] = color.UniqueFavorites(*colors)

	return nil
}
