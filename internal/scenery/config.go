package scenery

import (
	"fmt"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/profile"
	"github.com/arnvid/scenery-go/internal/scene"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// LightBinding binds one light entity to its profiles and select settings.
type LightBinding struct {
	Entity   homeassistant.EntityID
	Name     string
	UniqueID string

	Profiles       []*profile.Profile
	OffOption      *string
	FavoriteColors []color.Value

	// Mirror is an optional input_select entity kept in sync with the
	// published option.
	Mirror *homeassistant.EntityID
}

// SceneGroupBinding binds one scene group to its select settings.
type SceneGroupBinding struct {
	Name     string
	UniqueID string
	Group    *scene.Group
	Mirror   *homeassistant.EntityID
}

// Config is the validated scenery configuration.
type Config struct {
	Profiles    *profile.Store
	Lights      []*LightBinding
	SceneGroups []*SceneGroupBinding
}

type rawProfile struct {
	Name       string                 `mapstructure:"name"`
	Brightness *int                   `mapstructure:"brightness"`
	Transition *float64               `mapstructure:"transition"`
	Color      map[string]interface{} `mapstructure:",remain"`
}

type rawLight struct {
	Entity         homeassistant.EntityID   `mapstructure:"entity"`
	Name           string                   `mapstructure:"name"`
	UniqueID       string                   `mapstructure:"unique_id"`
	Profiles       []string                 `mapstructure:"profiles"`
	OffOption      *string                  `mapstructure:"off_option"`
	FavoriteColors []map[string]interface{} `mapstructure:"favorite_colors"`
	Mirror         *homeassistant.EntityID  `mapstructure:"mirror"`
}

type rawEntityState struct {
	State      string                 `mapstructure:"state"`
	Profile    string                 `mapstructure:"profile"`
	Brightness *int                   `mapstructure:"brightness"`
	Transition *float64               `mapstructure:"transition"`
	Color      map[string]interface{} `mapstructure:",remain"`
}

type rawScene struct {
	Name       string                    `mapstructure:"name"`
	UniqueID   string                    `mapstructure:"unique_id"`
	Transition *float64                  `mapstructure:"transition"`
	Entities   map[string]rawEntityState `mapstructure:"entities"`
}

type rawSceneGroup struct {
	Name       string                  `mapstructure:"name"`
	UniqueID   string                  `mapstructure:"unique_id"`
	Transition *float64                `mapstructure:"transition"`
	Mirror     *homeassistant.EntityID `mapstructure:"mirror"`
	Scenes     []rawScene              `mapstructure:"scenes"`
}

// loadConfig decodes and validates the scenery section of the viper
// configuration. Any invalid block fails the whole load.
func loadConfig() (*Config, error) {
	store, err := loadProfiles()
	if err != nil {
		return nil, err
	}

	lights, err := loadLights(store)
	if err != nil {
		return nil, err
	}

	groups, err := loadSceneGroups(store)
	if err != nil {
		return nil, err
	}

	return &Config{Profiles: store, Lights: lights, SceneGroups: groups}, nil
}

func loadProfiles() (*profile.Store, error) {
	var rawProfiles []rawProfile
	if err := decodeSection("scenery.profiles", &rawProfiles); err != nil {
		return nil, err
	}

	profiles := make([]*profile.Profile, 0, len(rawProfiles))

	for _, raw := range rawProfiles {
		p := &profile.Profile{
			Name:       raw.Name,
			Brightness: raw.Brightness,
			Transition: raw.Transition,
		}

		if len(raw.Color) > 0 {
			value, err := color.Decode(raw.Color)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", raw.Name, err)
			}

			p.Color = &value
		}

		profiles = append(profiles, p)
	}

	return profile.NewStore(profiles)
}

func loadLights(store *profile.Store) ([]*LightBinding, error) {
	var rawLights []rawLight
	if err := decodeSection("scenery.lights", &rawLights); err != nil {
		return nil, err
	}

	lights := make([]*LightBinding, 0, len(rawLights))
	seen := mapset.NewSet[homeassistant.EntityID]()

	for _, raw := range rawLights {
		if raw.Entity.ID == "" {
			return nil, models.EmptyEntityIDErr()
		}

		if !seen.Add(raw.Entity) {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateEntity, raw.Entity.ID)
		}

		binding := &LightBinding{
			Entity:    raw.Entity,
			Name:      raw.Name,
			UniqueID:  raw.UniqueID,
			OffOption: raw.OffOption,
			Mirror:    raw.Mirror,
		}

		if binding.Name == "" {
			binding.Name = raw.Entity.EntityName()
		}

		for _, name := range raw.Profiles {
			p, err := store.Get(name)
			if err != nil {
				return nil, fmt.Errorf("light %s: %w", raw.Entity.ID, err)
			}

			binding.Profiles = append(binding.Profiles, p)
		}

		for _, rawColor := range raw.FavoriteColors {
			value, err := color.Decode(rawColor)
			if err != nil {
				return nil, fmt.Errorf("light %s: %w", raw.Entity.ID, err)
			}

			if _, ok := value.Favorite(); !ok {
				return nil, fmt.Errorf("%w: light %s: %s", models.ErrNotFavoriteColor, raw.Entity.ID, value)
			}

			binding.FavoriteColors = append(binding.FavoriteColors, value)
		}

		lights = append(lights, binding)
	}

	return lights, nil
}

func loadSceneGroups(store *profile.Store) ([]*SceneGroupBinding, error) {
	var rawGroups []rawSceneGroup
	if err := decodeSection("scenery.scene_groups", &rawGroups); err != nil {
		return nil, err
	}

	groups := make([]*SceneGroupBinding, 0, len(rawGroups))

	for _, raw := range rawGroups {
		scenes := make([]*scene.Scene, 0, len(raw.Scenes))

		for _, rawSc := range raw.Scenes {
			sc, err := parseScene(rawSc, raw.Transition)
			if err != nil {
				return nil, fmt.Errorf("scene group %s: %w", raw.Name, err)
			}

			scenes = append(scenes, sc)
		}

		group, err := scene.NewGroup(raw.Name, raw.UniqueID, scenes, store)
		if err != nil {
			return nil, err
		}

		groups = append(groups, &SceneGroupBinding{
			Name:     raw.Name,
			UniqueID: raw.UniqueID,
			Group:    group,
			Mirror:   raw.Mirror,
		})
	}

	return groups, nil
}

func parseScene(raw rawScene, groupTransition *float64) (*scene.Scene, error) {
	sc := &scene.Scene{
		Name:       raw.Name,
		UniqueID:   raw.UniqueID,
		Transition: raw.Transition,
		Entities:   make(map[homeassistant.EntityID]scene.EntityState, len(raw.Entities)),
	}

	// scenes without their own transition inherit the group's
	if sc.Transition == nil {
		sc.Transition = groupTransition
	}

	for rawEntityID, rawState := range raw.Entities {
		entityID, err := homeassistant.NewEntityID(rawEntityID)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", raw.Name, err)
		}

		state := scene.EntityState{
			// a missing state means on, like a bare attribute block
			On:         rawState.State != homeassistant.StateOff,
			Profile:    rawState.Profile,
			Brightness: rawState.Brightness,
			Transition: rawState.Transition,
		}

		if len(rawState.Color) > 0 {
			value, err := color.Decode(rawState.Color)
			if err != nil {
				return nil, fmt.Errorf("scene %s entity %s: %w", raw.Name, rawEntityID, err)
			}

			state.Color = &value
		}

		sc.Entities[*entityID] = state
	}

	return sc, nil
}

func decodeSection(key string, result interface{}) error {
	raw := viper.Get(key)
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			homeassistant.StringToEntityIDHookFunc(),
		),
		Result: result,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding %s failed: %w", key, err)
	}

	return nil
}
