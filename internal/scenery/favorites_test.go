package scenery

import (
	"testing"

	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Favorites(t *testing.T) {
	couch := entity(t, "light.couch")
	unknown := entity(t, "light.attic")

	defaults := []color.Value{color.Kelvin(2700), color.RGB(255, 105, 180)}

	favorites := NewFavorites()
	favorites.Seed(couch, defaults)

	t.Run("never set reports nil, defaults separately", func(t *testing.T) {
		got, err := favorites.Get(couch)
		require.NoError(t, err)
		assert.Nil(t, got)

		seeded, err := favorites.Defaults(couch)
		require.NoError(t, err)
		assert.Equal(t, defaults, seeded)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := favorites.Get(unknown)
		assert.ErrorIs(t, err, models.ErrEntityNotFound)

		_, err = favorites.Defaults(unknown)
		assert.ErrorIs(t, err, models.ErrEntityNotFound)

		err = favorites.Set(unknown, &[]color.Value{color.Kelvin(4000)})
		assert.ErrorIs(t, err, models.ErrEntityNotFound)
	})

	t.Run("explicit list returned verbatim", func(t *testing.T) {
		explicit := []color.Value{color.HS(12, 34)}
		require.NoError(t, favorites.Set(couch, &explicit))

		got, err := favorites.Get(couch)
		require.NoError(t, err)
		assert.Equal(t, explicit, got)
	})

	t.Run("empty list clears, it does not reset", func(t *testing.T) {
		require.NoError(t, favorites.Set(couch, &[]color.Value{}))

		got, err := favorites.Get(couch)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("nil resets back to never-set", func(t *testing.T) {
		require.NoError(t, favorites.Set(couch, nil))

		got, err := favorites.Get(couch)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("non-representable colors rejected", func(t *testing.T) {
		err := favorites.Set(couch, &[]color.Value{color.XY(0.3, 0.3)})
		assert.ErrorIs(t, err, models.ErrNotFavoriteColor)

		err = favorites.Set(couch, &[]color.Value{color.Name("red")})
		assert.ErrorIs(t, err, models.ErrNotFavoriteColor)
	})

	t.Run("explicit duplicates are dropped", func(t *testing.T) {
		require.NoError(t, favorites.Set(couch, &[]color.Value{color.Kelvin(2700), color.Kelvin(2700)}))

		got, err := favorites.Get(couch)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
