package scenery

import (
	"testing"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfiles() []interface{} {
	return []interface{}{
		map[string]interface{}{
			"name":              "relax",
			"color_temp_kelvin": 2700,
			"brightness":        144,
			"transition":        0.5,
		},
		map[string]interface{}{
			"name":       "pink",
			"rgb_color":  []interface{}{255, 105, 180},
			"brightness": 200,
		},
	}
}

func setTestConfig(t *testing.T, profiles, lights, groups interface{}) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("scenery.profiles", profiles)

	if lights != nil {
		viper.Set("scenery.lights", lights)
	}

	if groups != nil {
		viper.Set("scenery.scene_groups", groups)
	}
}

func Test_LoadConfig(t *testing.T) {
	setTestConfig(t, validProfiles(),
		[]interface{}{
			map[string]interface{}{
				"entity":     "light.couch",
				"profiles":   []interface{}{"relax", "pink"},
				"off_option": "Off",
				"favorite_colors": []interface{}{
					map[string]interface{}{"hs_color": []interface{}{12.0, 34.0}},
				},
				"mirror": "input_select.couch_profile",
			},
		},
		[]interface{}{
			map[string]interface{}{
				"name":       "living room",
				"transition": 1.5,
				"scenes": []interface{}{
					map[string]interface{}{
						"name": "Movie",
						"entities": map[string]interface{}{
							"light.couch": map[string]interface{}{"state": "on", "profile": "relax"},
							"light.spots": map[string]interface{}{"state": "off"},
						},
					},
				},
			},
		})

	config, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2, config.Profiles.Len())

	require.Len(t, config.Lights, 1)
	binding := config.Lights[0]
	assert.Equal(t, "light.couch", binding.Entity.ID)
	assert.Equal(t, "couch", binding.Name)
	require.NotNil(t, binding.OffOption)
	assert.Equal(t, "Off", *binding.OffOption)
	require.Len(t, binding.Profiles, 2)
	assert.Equal(t, "relax", binding.Profiles[0].Name)
	require.Len(t, binding.FavoriteColors, 1)
	assert.True(t, binding.FavoriteColors[0].Equal(color.HS(12, 34)))
	require.NotNil(t, binding.Mirror)
	assert.Equal(t, "input_select.couch_profile", binding.Mirror.ID)

	require.Len(t, config.SceneGroups, 1)
	group := config.SceneGroups[0].Group
	require.Len(t, group.Scenes, 1)

	movie := group.Scenes[0]
	require.NotNil(t, movie.Transition)
	// scene without its own transition inherits the group's
	assert.Equal(t, 1.5, *movie.Transition)
	assert.Len(t, movie.Entities, 2)
}

func Test_LoadConfig_Failures(t *testing.T) {
	tests := []struct {
		name     string
		profiles interface{}
		lights   interface{}
		groups   interface{}
		wantErr  error
	}{
		{
			name: "duplicate profile name",
			profiles: []interface{}{
				map[string]interface{}{"name": "relax", "brightness": 100},
				map[string]interface{}{"name": "relax", "brightness": 200},
			},
			wantErr: models.ErrDuplicateProfile,
		},
		{
			name: "profile with two colors",
			profiles: []interface{}{
				map[string]interface{}{"name": "broken", "color_temp_kelvin": 2700, "white": 100},
			},
			wantErr: models.ErrMultipleColors,
		},
		{
			name: "profile brightness out of range",
			profiles: []interface{}{
				map[string]interface{}{"name": "broken", "brightness": 300},
			},
			wantErr: models.ErrBrightnessRange,
		},
		{
			name:     "duplicate light entity",
			profiles: validProfiles(),
			lights: []interface{}{
				map[string]interface{}{"entity": "light.couch", "profiles": []interface{}{"relax"}},
				map[string]interface{}{"entity": "light.couch", "profiles": []interface{}{"pink"}},
			},
			wantErr: models.ErrDuplicateEntity,
		},
		{
			name:     "unknown profile reference",
			profiles: validProfiles(),
			lights: []interface{}{
				map[string]interface{}{"entity": "light.couch", "profiles": []interface{}{"party"}},
			},
			wantErr: models.ErrUnknownProfile,
		},
		{
			name:     "non-representable favorite color",
			profiles: validProfiles(),
			lights: []interface{}{
				map[string]interface{}{
					"entity": "light.couch",
					"favorite_colors": []interface{}{
						map[string]interface{}{"xy_color": []interface{}{0.3, 0.3}},
					},
				},
			},
			wantErr: models.ErrNotFavoriteColor,
		},
		{
			name:     "scene without entities",
			profiles: validProfiles(),
			groups: []interface{}{
				map[string]interface{}{
					"name": "living room",
					"scenes": []interface{}{
						map[string]interface{}{"name": "Empty", "entities": map[string]interface{}{}},
					},
				},
			},
			wantErr: models.ErrEmptySceneEntites,
		},
		{
			name:     "scene entity brightness out of range",
			profiles: validProfiles(),
			groups: []interface{}{
				map[string]interface{}{
					"name": "living room",
					"scenes": []interface{}{
						map[string]interface{}{
							"name": "Movie",
							"entities": map[string]interface{}{
								"light.couch": map[string]interface{}{"brightness": 999},
							},
						},
					},
				},
			},
			wantErr: models.ErrBrightnessRange,
		},
		{
			name:     "scene entity negative transition",
			profiles: validProfiles(),
			groups: []interface{}{
				map[string]interface{}{
					"name": "living room",
					"scenes": []interface{}{
						map[string]interface{}{
							"name": "Movie",
							"entities": map[string]interface{}{
								"light.couch": map[string]interface{}{"transition": -3.0},
							},
						},
					},
				},
			},
			wantErr: models.ErrTransitionRange,
		},
		{
			name:     "scene with unknown profile",
			profiles: validProfiles(),
			groups: []interface{}{
				map[string]interface{}{
					"name": "living room",
					"scenes": []interface{}{
						map[string]interface{}{
							"name": "Movie",
							"entities": map[string]interface{}{
								"light.couch": map[string]interface{}{"profile": "party"},
							},
						},
					},
				},
			},
			wantErr: models.ErrUnknownProfile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTestConfig(t, tt.profiles, tt.lights, tt.groups)

			_, err := loadConfig()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
