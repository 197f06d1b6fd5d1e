package tours

import (
	"strings"

	"campusexplorer/errs"
	"campusexplorer/models"
)

// NormalizeKey trims and lowercases a building key the way the catalog does.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// NormalizeKeys normalizes a stop sequence. The result must hold at least one
// key and none may be blank. Keys are not checked against the catalog.
func NormalizeKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, errs.Validation("buildingIds", "must contain at least one building")
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = NormalizeKey(k)
		if out[i] == "" {
			return nil, errs.Validation("buildingIds", "must not contain blank ids")
		}
	}
	return out, nil
}

// StopCount is always the current length of the sequence.
func StopCount(t *models.Tour) int {
	return len(t.BuildingKeys)
}

// AddStop appends a stop. The same building may appear more than once.
func AddStop(t *models.Tour, key string) error {
	key = NormalizeKey(key)
	if key == "" {
		return errs.Validation("buildingId", "is required")
	}
	t.BuildingKeys = append(t.BuildingKeys, key)
	return nil
}

// RemoveStop drops the stop at index. A tour's last stop cannot be removed.
func RemoveStop(t *models.Tour, index int) error {
	n := len(t.BuildingKeys)
	if index < 0 || index >= n {
		return errs.IndexOutOfRange(index, n)
	}
	if n == 1 {
		return errs.InvalidOperation("a tour must keep at least one stop")
	}
	keys := make([]string, 0, n-1)
	keys = append(keys, t.BuildingKeys[:index]...)
	t.BuildingKeys = append(keys, t.BuildingKeys[index+1:]...)
	return nil
}

// MoveStop takes the stop at from and reinserts it at to, shifting the stops
// in between.
func MoveStop(t *models.Tour, from, to int) error {
	n := len(t.BuildingKeys)
	if from < 0 || from >= n {
		return errs.IndexOutOfRange(from, n)
	}
	if to < 0 || to >= n {
		return errs.IndexOutOfRange(to, n)
	}
	if from == to {
		return nil
	}
	keys := t.BuildingKeys
	moved := keys[from]
	if from < to {
		copy(keys[from:to], keys[from+1:to+1])
	} else {
		copy(keys[to+1:from+1], keys[to:from])
	}
	keys[to] = moved
	return nil
}
