package tours

import (
	"errors"
	"testing"

	"campusexplorer/errs"
	"campusexplorer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tourOf(keys ...string) *models.Tour {
	return &models.Tour{BuildingKeys: keys}
}

func TestMoveStop(t *testing.T) {
	tour := tourOf("carver", "coover")
	require.NoError(t, MoveStop(tour, 0, 1))
	assert.Equal(t, []string{"coover", "carver"}, tour.BuildingKeys)

	tour = tourOf("a", "b", "c", "d")
	require.NoError(t, MoveStop(tour, 3, 1))
	assert.Equal(t, []string{"a", "d", "b", "c"}, tour.BuildingKeys)

	require.NoError(t, MoveStop(tour, 0, 2))
	assert.Equal(t, []string{"d", "b", "a", "c"}, tour.BuildingKeys)

	require.NoError(t, MoveStop(tour, 2, 2))
	assert.Equal(t, []string{"d", "b", "a", "c"}, tour.BuildingKeys)
}

func TestMoveStopOutOfRange(t *testing.T) {
	tour := tourOf("a", "b")
	for _, idx := range [][2]int{{-1, 0}, {0, 2}, {2, 2}, {5, 0}} {
		err := MoveStop(tour, idx[0], idx[1])
		assert.True(t, errors.Is(err, errs.ErrIndexOutOfRange), idx)
	}
	assert.Equal(t, []string{"a", "b"}, tour.BuildingKeys)
}

func TestRemoveStopKeepsOne(t *testing.T) {
	tour := tourOf("library")
	err := RemoveStop(tour, 0)
	assert.True(t, errors.Is(err, errs.ErrInvalidOperation))
	assert.Equal(t, 1, StopCount(tour))

	tour = tourOf("a", "b", "a")
	require.NoError(t, RemoveStop(tour, 1))
	assert.Equal(t, []string{"a", "a"}, tour.BuildingKeys)
	assert.Equal(t, 2, StopCount(tour))

	assert.True(t, errors.Is(RemoveStop(tour, 2), errs.ErrIndexOutOfRange))
}

func TestAddStopAllowsDuplicates(t *testing.T) {
	tour := tourOf("library")
	require.NoError(t, AddStop(tour, " Library "))
	assert.Equal(t, []string{"library", "library"}, tour.BuildingKeys)
	assert.Equal(t, 2, tour.StopCount())

	assert.True(t, errors.Is(AddStop(tour, "  "), errs.ErrValidation))
}

func TestNormalizeKeys(t *testing.T) {
	keys, err := NormalizeKeys([]string{" Carver", "COOVER "})
	require.NoError(t, err)
	assert.Equal(t, []string{"carver", "coover"}, keys)

	_, err = NormalizeKeys(nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = NormalizeKeys([]string{"a", ""})
	assert.True(t, errors.Is(err, errs.ErrValidation))
}
