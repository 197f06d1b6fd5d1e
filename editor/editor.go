// Package editor runs the administrator's drag-to-place workflow for
// building markers.
//
// A gesture moves Idle -> Dragging -> Committing -> Idle. If the commit
// fails the gesture passes through RollingBack, where the full catalog is
// re-read to restore last-known-good positions, and the commit error is
// still returned to the caller. At most one gesture per building is live at
// a time; gestures on different buildings are independent.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campusexplorer/errs"
	"campusexplorer/maps"
	"campusexplorer/models"

	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Dragging
	Committing
	RollingBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committing:
		return "committing"
	case RollingBack:
		return "rolling_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrCancelled is returned by Run when the gesture ends without a release.
var ErrCancelled = errors.New("editor: gesture cancelled")

// Catalog is what the editor needs from the building catalog.
type Catalog interface {
	Get(ctx context.Context, key string) (models.Building, error)
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
	UpdatePosition(ctx context.Context, key string, x, y float64) (models.Building, error)
}

// version stamps a view entry with the record it came from. at is the
// record's UpdatedAt; seq orders writes to the view itself.
type version struct {
	at  time.Time
	seq uint64
}

type Editor struct {
	catalog       Catalog
	surface       maps.Surface
	commitTimeout time.Duration
	log           *zap.Logger

	mu        sync.Mutex
	gestures  map[string]*Gesture
	positions map[string]models.Coordinates
	versions  map[string]version
	seq       uint64
}

func New(catalog Catalog, surface maps.Surface, commitTimeout time.Duration, log *zap.Logger) *Editor {
	return &Editor{
		catalog:       catalog,
		surface:       surface,
		commitTimeout: commitTimeout,
		log:           log,
		gestures:      make(map[string]*Gesture),
		positions:     make(map[string]models.Coordinates),
		versions:      make(map[string]version),
	}
}

// Load brings the view in line with the catalog. Entries written after the
// snapshot was requested are newer than it and are kept, as are the
// positions of buildings being dragged.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	mark := e.seq
	e.mu.Unlock()

	list, err := e.catalog.List(ctx, models.BuildingFilter{})
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	seen := make(map[string]bool, len(list))
	for i := range list {
		b := &list[i]
		seen[b.Key] = true
		if e.versions[b.Key].seq > mark {
			continue
		}
		e.recordLocked(b.Key, b)
	}
	for k := range e.positions {
		if seen[k] || e.versions[k].seq > mark || e.liveLocked(k) != nil {
			continue
		}
		delete(e.positions, k)
	}
	return nil
}

// liveLocked returns the gesture still holding key's optimistic position.
func (e *Editor) liveLocked(key string) *Gesture {
	g := e.gestures[key]
	if g == nil || (g.state != Dragging && g.state != Committing) {
		return nil
	}
	return g
}

// recordLocked applies a committed record to the view unless the view
// already reflects a newer one. While a gesture is live the record becomes
// its origin instead, so a cancel puts back the latest committed position.
// b == nil records a deletion.
func (e *Editor) recordLocked(key string, b *models.Building) {
	at := time.Now()
	if b != nil {
		at = b.UpdatedAt
		if v, ok := e.versions[key]; ok && at.Before(v.at) {
			return
		}
	}
	e.seq++
	e.versions[key] = version{at: at, seq: e.seq}

	var pos *models.Coordinates
	if b != nil {
		pos = b.Coordinates
	}
	if g := e.liveLocked(key); g != nil {
		g.placed = pos != nil
		if pos != nil {
			g.origin = *pos
		}
		return
	}
	if pos == nil {
		delete(e.positions, key)
	} else {
		e.positions[key] = *pos
	}
}

// Positions returns a copy of the view the map renders, including the
// optimistic position of any building being dragged.
func (e *Editor) Positions() map[string]models.Coordinates {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]models.Coordinates, len(e.positions))
	for k, v := range e.positions {
		out[k] = v
	}
	return out
}

func (e *Editor) Position(key string) (models.Coordinates, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.positions[key]
	return c, ok
}

// Busy reports whether key has a live gesture.
func (e *Editor) Busy(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.gestures[key]
	return ok
}

// Notify keeps the view in step with changes committed elsewhere. Events
// older than what the view holds are ignored. A building with a live gesture
// keeps its local position; the event becomes the gesture's origin.
func (e *Editor) Notify(_ context.Context, event models.CatalogEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if event.Action == models.ActionDeleted {
		e.recordLocked(event.Key, nil)
		return
	}
	if event.Building == nil {
		return
	}
	e.recordLocked(event.Key, event.Building)
}

// Begin starts dragging key. Only administrators may drag; that check runs
// before the building is looked up.
func (e *Editor) Begin(ctx context.Context, caller models.Capability, key string) (*Gesture, error) {
	if !caller.IsAdmin() {
		return nil, errs.Permission("only administrators can move buildings")
	}
	if !e.surface.Valid() {
		return nil, errs.InvalidSurface(e.surface.Width, e.surface.Height)
	}

	b, err := e.catalog.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	key = b.Key

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.gestures[key]; busy {
		return nil, errs.InvalidOperation(fmt.Sprintf("building %s is already being moved", key))
	}
	e.recordLocked(key, &b)
	origin, placed := e.positions[key]
	g := &Gesture{
		editor:  e,
		key:     key,
		by:      caller.Email,
		surface: e.surface,
		state:   Dragging,
		origin:  origin,
		placed:  placed,
	}
	e.gestures[key] = g
	e.log.Debug("drag started", zap.String("id", key), zap.String("by", caller.Email))
	return g, nil
}

// Run drives one gesture from events until a release commits it, the stream
// ends, or ctx is done. Whatever happens the building is left Idle.
func (e *Editor) Run(ctx context.Context, caller models.Capability, key string, events <-chan Event) (models.Building, error) {
	g, err := e.Begin(ctx, caller, key)
	if err != nil {
		return models.Building{}, err
	}
	return g.Drive(ctx, events)
}

// rollback re-reads the whole catalog. It runs detached from the commit's
// context, which may be the very thing that expired.
func (e *Editor) rollback(ctx context.Context, g *Gesture) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.rollbackTimeout())
	defer cancel()

	e.mu.Lock()
	mark := e.seq
	e.mu.Unlock()

	if err := e.Load(ctx); err != nil {
		e.log.Error("rollback reload failed; restoring drag origin", zap.String("id", g.key), zap.Error(err))
		e.mu.Lock()
		// a record that arrived during the reload is newer than the origin
		if e.versions[g.key].seq <= mark {
			g.restoreLocked()
		}
		e.mu.Unlock()
	}
}

func (e *Editor) rollbackTimeout() time.Duration {
	if e.commitTimeout > 0 {
		return e.commitTimeout
	}
	return 5 * time.Second
}
