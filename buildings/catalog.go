package buildings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusexplorer/errs"
	"campusexplorer/maps"
	"campusexplorer/models"
	"campusexplorer/validation"

	"go.uber.org/zap"
)

// ListCache caches List results. Any mutation invalidates every entry.
// GetList returns the cache generation it observed; SetList must be given
// that same generation so a listing read before a mutation can never be
// stored as current after it. A negative generation disables the write.
type ListCache interface {
	GetList(ctx context.Context, filter models.BuildingFilter) ([]models.Building, int64, bool)
	SetList(ctx context.Context, gen int64, filter models.BuildingFilter, list []models.Building)
	Invalidate(ctx context.Context)
}

// Notifier is told about every committed catalog change.
type Notifier interface {
	Notify(ctx context.Context, event models.CatalogEvent)
}

type Options struct {
	PlaceholderImage     string
	PlaceholderFloorPlan string
}

// Catalog is the sole owner of building records.
type Catalog struct {
	store    Store
	cache    ListCache
	notifier Notifier
	validate *validation.Validator
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

func NewCatalog(store Store, opts Options, log *zap.Logger) *Catalog {
	return &Catalog{
		store:    store,
		validate: validation.New(),
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// WithCache attaches a list cache.
func (c *Catalog) WithCache(cache ListCache) *Catalog {
	c.cache = cache
	return c
}

// WithNotifier attaches the sink for catalog events.
func (c *Catalog) WithNotifier(n Notifier) *Catalog {
	c.notifier = n
	return c
}

// CreateRequest carries a new building. Media fields are optional and fall
// back to the placeholders.
type CreateRequest struct {
	Key         string              `json:"id" validate:"required,slug"`
	Name        string              `json:"name" validate:"required"`
	Code        string              `json:"code" validate:"required"`
	Category    models.Category     `json:"type" validate:"required,category"`
	Departments []string            `json:"departments"`
	Description string              `json:"description" validate:"required"`
	Hours       string              `json:"hours" validate:"required"`
	Capacity    string              `json:"capacity" validate:"required"`
	YearBuilt   string              `json:"yearBuilt" validate:"required"`
	Floors      int                 `json:"floors" validate:"required,min=1"`
	Tags        []string            `json:"tags"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Image       string              `json:"image"`
	Gallery     []string            `json:"gallery"`
	Video       *string             `json:"video"`
	FloorPlans  []string            `json:"floorPlans"`
}

func (r *CreateRequest) normalize() {
	r.Key = NormalizeKey(r.Key)
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Category = models.Category(strings.TrimSpace(string(r.Category)))
	r.Description = strings.TrimSpace(r.Description)
	r.Hours = strings.TrimSpace(r.Hours)
	r.Capacity = strings.TrimSpace(r.Capacity)
	r.YearBuilt = strings.TrimSpace(r.YearBuilt)
	r.Image = strings.TrimSpace(r.Image)
}

// NormalizeKey trims and lowercases a building key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func checkCoordinates(c *models.Coordinates) error {
	if c == nil {
		return nil
	}
	if c.X < 0 || c.X > 100 {
		return errs.Validation("coordinates.x", "must be between 0 and 100")
	}
	if c.Y < 0 || c.Y > 100 {
		return errs.Validation("coordinates.y", "must be between 0 and 100")
	}
	return nil
}

// Create stores a new building. The key must be unused.
func (c *Catalog) Create(ctx context.Context, req CreateRequest) (models.Building, error) {
	req.normalize()
	if err := c.validate.Validate(req); err != nil {
		return models.Building{}, err
	}
	if err := checkCoordinates(req.Coordinates); err != nil {
		return models.Building{}, err
	}
	if err := checkFloorPlans(req.FloorPlans, req.Floors); err != nil {
		return models.Building{}, err
	}

	if _, err := c.store.FindOne(ctx, req.Key); err == nil {
		return models.Building{}, errs.DuplicateKey(req.Key)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return models.Building{}, err
	}

	now := c.now()
	b := models.Building{
		Key:         req.Key,
		Name:        req.Name,
		Code:        req.Code,
		Category:    req.Category,
		Departments: nonNil(req.Departments),
		Description: req.Description,
		Hours:       req.Hours,
		Capacity:    req.Capacity,
		YearBuilt:   req.YearBuilt,
		Floors:      req.Floors,
		Tags:        nonNil(req.Tags),
		Coordinates: req.Coordinates,
		Image:       req.Image,
		Gallery:     nonNil(req.Gallery),
		Video:       req.Video,
		FloorPlans:  req.FloorPlans,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.Image == "" {
		b.Image = c.opts.PlaceholderImage
	}
	if len(b.FloorPlans) == 0 {
		b.FloorPlans = c.fitFloorPlans(nil, b.Floors)
	}

	if err := c.store.Insert(ctx, b); err != nil {
		return models.Building{}, err
	}

	c.log.Info("building created", zap.String("id", b.Key), zap.String("name", b.Name))
	c.changed(ctx, models.ActionCreated, b.Key, &b)
	return b, nil
}

func (c *Catalog) Get(ctx context.Context, key string) (models.Building, error) {
	return c.store.FindOne(ctx, NormalizeKey(key))
}

// List returns the buildings matching filter, ordered by name then key.
func (c *Catalog) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	filter.Text = strings.TrimSpace(filter.Text)
	gen := int64(-1)
	if c.cache != nil {
		list, seen, ok := c.cache.GetList(ctx, filter)
		if ok {
			return list, nil
		}
		gen = seen
	}

	list, err := c.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.SetList(ctx, gen, filter, list)
	}
	return list, nil
}

// Update applies only the fields present in patch. An empty patch is a read.
func (c *Catalog) Update(ctx context.Context, key string, patch models.BuildingPatch) (models.Building, error) {
	key = NormalizeKey(key)
	if patch.Empty() {
		return c.store.FindOne(ctx, key)
	}
	if err := c.checkPatch(&patch); err != nil {
		return models.Building{}, err
	}
	if patch.Floors.Set || patch.FloorPlans.Set {
		if err := c.patchFloorPlans(ctx, key, &patch); err != nil {
			return models.Building{}, err
		}
	}

	b, err := c.store.UpdateFields(ctx, key, patch, c.now())
	if err != nil {
		return models.Building{}, err
	}

	c.log.Info("building updated", zap.String("id", key), zap.Int("fields", len(patch.Fields())))
	c.changed(ctx, models.ActionUpdated, key, &b)
	return b, nil
}

// UpdatePosition moves a building on the map. Both percentages are clamped
// into the map margin before they are stored.
func (c *Catalog) UpdatePosition(ctx context.Context, key string, x, y float64) (models.Building, error) {
	key = NormalizeKey(key)
	pos := &models.Coordinates{X: maps.ClampPercent(x), Y: maps.ClampPercent(y)}
	patch := models.BuildingPatch{Coordinates: models.Some(pos)}

	b, err := c.store.UpdateFields(ctx, key, patch, c.now())
	if err != nil {
		return models.Building{}, err
	}

	c.log.Debug("building moved", zap.String("id", key), zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	c.changed(ctx, models.ActionMoved, key, &b)
	return b, nil
}

// Delete removes a building. Tours naming it are left alone.
func (c *Catalog) Delete(ctx context.Context, key string) error {
	key = NormalizeKey(key)
	if err := c.store.Delete(ctx, key); err != nil {
		return err
	}

	c.log.Info("building deleted", zap.String("id", key))
	c.changed(ctx, models.ActionDeleted, key, nil)
	return nil
}

func (c *Catalog) checkPatch(p *models.BuildingPatch) error {
	required := []struct {
		field string
		opt   *models.Optional[string]
	}{
		{"name", &p.Name},
		{"code", &p.Code},
		{"description", &p.Description},
		{"hours", &p.Hours},
		{"capacity", &p.Capacity},
		{"yearBuilt", &p.YearBuilt},
	}
	for _, r := range required {
		if !r.opt.Set {
			continue
		}
		r.opt.Value = strings.TrimSpace(r.opt.Value)
		if r.opt.Value == "" {
			return errs.Validation(r.field, "is required")
		}
	}
	if p.Code.Set {
		p.Code.Value = strings.ToUpper(p.Code.Value)
	}
	if p.Category.Set && !p.Category.Value.Valid() {
		return errs.Validation("type", "must be one of Academic, Administration, Student Life, Athletics, Residence, Landmark")
	}
	if p.Floors.Set && p.Floors.Value < 1 {
		return errs.Validation("floors", "must be at least 1")
	}
	if p.Coordinates.Set {
		if err := checkCoordinates(p.Coordinates.Value); err != nil {
			return err
		}
	}
	if p.Image.Set {
		p.Image.Value = strings.TrimSpace(p.Image.Value)
	}
	for _, list := range []*models.Optional[[]string]{&p.Departments, &p.Tags, &p.Gallery, &p.FloorPlans} {
		if list.Set {
			list.Value = nonNil(list.Value)
		}
	}
	return nil
}

// patchFloorPlans keeps one plan per floor. A floor count change without
// plans trims the stored list or pads it with the placeholder; an empty plan
// list resets every floor to the placeholder.
func (c *Catalog) patchFloorPlans(ctx context.Context, key string, p *models.BuildingPatch) error {
	floors := p.Floors.Value
	var stored []string
	if !p.Floors.Set || !p.FloorPlans.Set {
		cur, err := c.store.FindOne(ctx, key)
		if err != nil {
			return err
		}
		if !p.Floors.Set {
			floors = cur.Floors
		}
		stored = cur.FloorPlans
	}

	if !p.FloorPlans.Set {
		p.FloorPlans = models.Some(c.fitFloorPlans(stored, floors))
		return nil
	}
	if len(p.FloorPlans.Value) == 0 {
		p.FloorPlans.Value = c.fitFloorPlans(nil, floors)
		return nil
	}
	return checkFloorPlans(p.FloorPlans.Value, floors)
}

func (c *Catalog) fitFloorPlans(plans []string, floors int) []string {
	out := make([]string, floors)
	n := copy(out, plans)
	for i := n; i < floors; i++ {
		out[i] = c.opts.PlaceholderFloorPlan
	}
	return out
}

// checkFloorPlans accepts no plans or exactly one per floor.
func checkFloorPlans(plans []string, floors int) error {
	if len(plans) == 0 || len(plans) == floors {
		return nil
	}
	return errs.Validation("floorPlans", fmt.Sprintf("must have %d entries, one per floor", floors))
}

func (c *Catalog) changed(ctx context.Context, action models.CatalogAction, key string, b *models.Building) {
	if c.cache != nil {
		c.cache.Invalidate(ctx)
	}
	if c.notifier != nil {
		c.notifier.Notify(ctx, models.NewCatalogEvent(action, key, b))
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
