package tours

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"campusexplorer/errs"
	"campusexplorer/models"
	"campusexplorer/users"
	"campusexplorer/utils"
	"campusexplorer/validation"

	"go.uber.org/zap"
)

// BuildingSource is the part of the catalog tours read from.
type BuildingSource interface {
	Get(ctx context.Context, key string) (models.Building, error)
}

// Owners resolves owner emails to accounts.
type Owners interface {
	EnsureOwner(ctx context.Context, email string) (models.User, error)
	Lookup(ctx context.Context, email string) (models.User, error)
}

var _ Owners = (*users.Directory)(nil)

type Service struct {
	store       Store
	owners      Owners
	buildings   BuildingSource
	validate    *validation.Validator
	placeholder string
	log         *zap.Logger
	now         func() time.Time

	mu    sync.Mutex
	locks map[string]*tourLock
}

// tourLock serializes writers of one tour. The entry is dropped once no
// caller holds or waits on it.
type tourLock struct {
	sync.Mutex
	refs int
}

func NewService(store Store, owners Owners, buildings BuildingSource, placeholderImage string, log *zap.Logger) *Service {
	return &Service{
		store:       store,
		owners:      owners,
		buildings:   buildings,
		validate:    validation.New(),
		placeholder: placeholderImage,
		log:         log,
		now:         time.Now,
		locks:       make(map[string]*tourLock),
	}
}

type CreateRequest struct {
	Name              string   `json:"name" validate:"required,max=200"`
	Description       string   `json:"description" validate:"max=1000"`
	BuildingKeys      []string `json:"buildingIds" validate:"required,min=1"`
	OwnerEmail        string   `json:"ownerEmail"`
	EstimatedDuration *int     `json:"estimatedDuration" validate:"omitempty,min=0"`
	Tags              []string `json:"tags"`
}

// Create stores a new tour. When the request names no owner, the caller's own
// email is used. Non-admins may only create tours for themselves; anonymous
// callers must name an owner.
func (s *Service) Create(ctx context.Context, caller models.Capability, req CreateRequest) (models.Tour, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.OwnerEmail = strings.TrimSpace(req.OwnerEmail)
	if req.OwnerEmail == "" {
		req.OwnerEmail = caller.Email
	}
	if err := s.validate.Validate(req); err != nil {
		return models.Tour{}, err
	}
	keys, err := NormalizeKeys(req.BuildingKeys)
	if err != nil {
		return models.Tour{}, err
	}
	if caller.Authenticated() && !caller.IsAdmin() && !caller.Owns(req.OwnerEmail) {
		return models.Tour{}, errs.Permission("tours can only be created for your own account")
	}

	owner, err := s.owners.EnsureOwner(ctx, req.OwnerEmail)
	if err != nil {
		return models.Tour{}, err
	}

	now := s.now()
	t := models.Tour{
		TourID:            utils.GetUUID(),
		Name:              req.Name,
		Description:       req.Description,
		OwnerID:           owner.UserID,
		OwnerEmail:        owner.Email,
		BuildingKeys:      keys,
		EstimatedDuration: req.EstimatedDuration,
		Tags:              trimTags(req.Tags),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return models.Tour{}, err
	}

	s.log.Info("tour created", zap.String("tourid", t.TourID), zap.String("owner", t.OwnerEmail), zap.Int("stops", t.StopCount()))
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Tour, error) {
	return s.store.FindOne(ctx, strings.TrimSpace(id))
}

// ListByOwner returns the owner's tours, newest first. An email without an
// account simply has no tours.
func (s *Service) ListByOwner(ctx context.Context, email string) ([]models.Tour, error) {
	owner, err := s.owners.Lookup(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		return []models.Tour{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.FindByOwner(ctx, owner.UserID)
}

// Update applies the fields present in patch. A replacement stop sequence
// must still hold at least one stop.
func (s *Service) Update(ctx context.Context, caller models.Capability, id string, patch models.TourPatch) (models.Tour, error) {
	return s.mutate(ctx, caller, id, func(t *models.Tour) error {
		if patch.Name.Set {
			name := strings.TrimSpace(patch.Name.Value)
			if name == "" {
				return errs.Validation("name", "is required")
			}
			if len(name) > 200 {
				return errs.Validation("name", "must not exceed 200")
			}
			t.Name = name
		}
		if patch.Description.Set {
			desc := strings.TrimSpace(patch.Description.Value)
			if len(desc) > 1000 {
				return errs.Validation("description", "must not exceed 1000")
			}
			t.Description = desc
		}
		if patch.BuildingKeys.Set {
			keys, err := NormalizeKeys(patch.BuildingKeys.Value)
			if err != nil {
				return err
			}
			t.BuildingKeys = keys
		}
		if patch.EstimatedDuration.Set {
			if d := patch.EstimatedDuration.Value; d != nil && *d < 0 {
				return errs.Validation("estimatedDuration", "must be at least 0")
			}
			t.EstimatedDuration = patch.EstimatedDuration.Value
		}
		if patch.Tags.Set {
			t.Tags = trimTags(patch.Tags.Value)
		}
		return nil
	})
}

func (s *Service) AddStop(ctx context.Context, caller models.Capability, id, key string) (models.Tour, error) {
	return s.mutate(ctx, caller, id, func(t *models.Tour) error {
		return AddStop(t, key)
	})
}

func (s *Service) RemoveStop(ctx context.Context, caller models.Capability, id string, index int) (models.Tour, error) {
	return s.mutate(ctx, caller, id, func(t *models.Tour) error {
		return RemoveStop(t, index)
	})
}

func (s *Service) MoveStop(ctx context.Context, caller models.Capability, id string, from, to int) (models.Tour, error) {
	return s.mutate(ctx, caller, id, func(t *models.Tour) error {
		return MoveStop(t, from, to)
	})
}

// Delete removes the tour. Buildings it names are untouched.
func (s *Service) Delete(ctx context.Context, caller models.Capability, id string) error {
	id = strings.TrimSpace(id)
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("tour deleted", zap.String("tourid", id))
	return nil
}

// ResolveStops joins every stop with its building. A stop whose building is
// gone resolves to a placeholder marked Missing instead of failing.
func (s *Service) ResolveStops(ctx context.Context, id string) (models.Tour, []models.ResolvedStop, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return models.Tour{}, nil, err
	}

	stops := make([]models.ResolvedStop, len(t.BuildingKeys))
	for i, key := range t.BuildingKeys {
		b, err := s.buildings.Get(ctx, key)
		switch {
		case err == nil:
			stops[i] = models.ResolvedStop{Index: i, Key: key, Building: b}
		case errors.Is(err, errs.ErrNotFound):
			stops[i] = models.ResolvedStop{Index: i, Key: key, Missing: true, Building: s.placeholderFor(key)}
		default:
			return models.Tour{}, nil, err
		}
	}
	return t, stops, nil
}

func (s *Service) placeholderFor(key string) models.Building {
	return models.Building{
		Key:         key,
		Name:        key,
		Departments: []string{},
		Tags:        []string{},
		Image:       s.placeholder,
		Gallery:     []string{},
		FloorPlans:  []string{},
	}
}

// mutate runs fn on a private copy of the tour and stores it only when fn
// succeeds, so a failed edit never changes what is persisted.
func (s *Service) mutate(ctx context.Context, caller models.Capability, id string, fn func(*models.Tour) error) (models.Tour, error) {
	id = strings.TrimSpace(id)
	unlock := s.lock(id)
	defer unlock()

	t, err := s.owned(ctx, caller, id)
	if err != nil {
		return models.Tour{}, err
	}
	if err := fn(&t); err != nil {
		return models.Tour{}, err
	}
	t.UpdatedAt = s.now()
	if err := s.store.Replace(ctx, t); err != nil {
		return models.Tour{}, err
	}
	s.log.Debug("tour updated", zap.String("tourid", id), zap.Int("stops", t.StopCount()))
	return t, nil
}

// owned loads a tour the caller may change. Tours owned by someone else look
// exactly like missing ones.
func (s *Service) owned(ctx context.Context, caller models.Capability, id string) (models.Tour, error) {
	t, err := s.store.FindOne(ctx, id)
	if err != nil {
		return models.Tour{}, err
	}
	if !caller.IsAdmin() && !caller.Owns(t.OwnerEmail) {
		return models.Tour{}, errs.NotFound("tour", id)
	}
	return t, nil
}

func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &tourLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()
	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
