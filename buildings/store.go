package buildings

import (
	"context"
	"sort"
	"strings"
	"time"

	"campusexplorer/models"
)

// Store persists building records keyed by their slug. Implementations
// return *errs.Error values for missing and duplicate keys.
type Store interface {
	Find(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
	FindOne(ctx context.Context, key string) (models.Building, error)
	Insert(ctx context.Context, b models.Building) error
	UpdateFields(ctx context.Context, key string, patch models.BuildingPatch, at time.Time) (models.Building, error)
	Delete(ctx context.Context, key string) error
}

// Matches reports whether b passes filter. Text is matched case-insensitively
// against name, description, code and department names.
func Matches(b models.Building, filter models.BuildingFilter) bool {
	if filter.Category != "" && b.Category != filter.Category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(filter.Text))
	if q == "" {
		return true
	}
	for _, field := range []string{b.Name, b.Description, b.Code} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, dept := range b.Departments {
		if strings.Contains(strings.ToLower(dept), q) {
			return true
		}
	}
	return false
}

// SortByName orders buildings by name, then key, so listings are stable.
func SortByName(list []models.Building) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].Key < list[j].Key
	})
}
