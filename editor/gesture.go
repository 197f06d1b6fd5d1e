package editor

import (
	"context"

	"campusexplorer/errs"
	"campusexplorer/maps"
	"campusexplorer/models"

	"go.uber.org/zap"
)

type EventType string

const (
	EventMove    EventType = "move"
	EventRelease EventType = "release"
	EventCancel  EventType = "cancel"
	EventResize  EventType = "resize"
)

// Event is one pointer event in surface units. Resize carries the surface's
// new Width and Height instead of a point.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
}

// Gesture is one drag of one building. Its state is guarded by the owning
// editor's mutex.
type Gesture struct {
	editor  *Editor
	key     string
	by      string
	surface maps.Surface
	state   State
	origin  models.Coordinates
	placed  bool
	onMove  func(models.Coordinates)
}

// OnMove registers fn to be called by Drive after every accepted move.
func (g *Gesture) OnMove(fn func(models.Coordinates)) { g.onMove = fn }

func (g *Gesture) Key() string { return g.key }

func (g *Gesture) State() State {
	g.editor.mu.Lock()
	defer g.editor.mu.Unlock()
	return g.state
}

// Resize changes the surface later points are measured against.
func (g *Gesture) Resize(s maps.Surface) error {
	if !s.Valid() {
		return errs.InvalidSurface(s.Width, s.Height)
	}
	g.editor.mu.Lock()
	defer g.editor.mu.Unlock()
	g.surface = s
	return nil
}

// Move updates the optimistic position. Nothing is persisted.
func (g *Gesture) Move(sx, sy float64) (models.Coordinates, error) {
	g.editor.mu.Lock()
	defer g.editor.mu.Unlock()
	return g.moveLocked(sx, sy)
}

func (g *Gesture) moveLocked(sx, sy float64) (models.Coordinates, error) {
	if g.state != Dragging {
		return models.Coordinates{}, errs.InvalidOperation("gesture is " + g.state.String())
	}
	x, y, err := maps.ToPercent(sx, sy, g.surface)
	if err != nil {
		return models.Coordinates{}, err
	}
	pos := models.Coordinates{X: x, Y: y}
	g.editor.positions[g.key] = pos
	return pos, nil
}

// Release commits the final point. On failure the catalog is re-read so the
// view shows last-known-good positions, then the commit error is returned
// as is.
func (g *Gesture) Release(ctx context.Context, sx, sy float64) (models.Building, error) {
	e := g.editor

	e.mu.Lock()
	pos, err := g.moveLocked(sx, sy)
	if err != nil {
		e.mu.Unlock()
		return models.Building{}, err
	}
	g.state = Committing
	e.mu.Unlock()

	commitCtx, cancel := ctx, context.CancelFunc(func() {})
	if e.commitTimeout > 0 {
		commitCtx, cancel = context.WithTimeout(ctx, e.commitTimeout)
	}
	b, err := e.catalog.UpdatePosition(commitCtx, g.key, pos.X, pos.Y)
	cancel()

	if err != nil {
		e.mu.Lock()
		g.state = RollingBack
		e.mu.Unlock()

		e.log.Warn("position commit failed; rolling back", zap.String("id", g.key), zap.Error(err))
		e.rollback(ctx, g)

		e.mu.Lock()
		g.finishLocked()
		e.mu.Unlock()
		return models.Building{}, err
	}

	e.mu.Lock()
	g.finishLocked()
	e.recordLocked(g.key, &b)
	e.mu.Unlock()

	e.log.Info("building placed", zap.String("id", g.key), zap.String("by", g.by),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	return b, nil
}

// Cancel abandons a drag without committing and puts the marker back. It is
// safe to call in any state; once the commit has started it does nothing,
// because an in-flight update cannot be recalled.
func (g *Gesture) Cancel() {
	e := g.editor
	e.mu.Lock()
	defer e.mu.Unlock()
	if g.state != Dragging {
		return
	}
	g.restoreLocked()
	g.finishLocked()
	e.log.Debug("drag cancelled", zap.String("id", g.key))
}

// Drive feeds events into the gesture until it is released, cancelled, the
// stream closes or ctx is done. The deferred Cancel guarantees the gesture
// never stays in Dragging.
func (g *Gesture) Drive(ctx context.Context, events <-chan Event) (models.Building, error) {
	defer g.Cancel()

	for {
		select {
		case <-ctx.Done():
			return models.Building{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return models.Building{}, ErrCancelled
			}
			switch ev.Type {
			case EventMove:
				pos, err := g.Move(ev.X, ev.Y)
				if err != nil {
					return models.Building{}, err
				}
				if g.onMove != nil {
					g.onMove(pos)
				}
			case EventResize:
				if err := g.Resize(maps.Surface{Width: ev.Width, Height: ev.Height}); err != nil {
					return models.Building{}, err
				}
			case EventRelease:
				return g.Release(ctx, ev.X, ev.Y)
			case EventCancel:
				return models.Building{}, ErrCancelled
			default:
				return models.Building{}, errs.Validation("type", "unknown event "+string(ev.Type))
			}
		}
	}
}

func (g *Gesture) restoreLocked() {
	if g.placed {
		g.editor.positions[g.key] = g.origin
	} else {
		delete(g.editor.positions, g.key)
	}
}

func (g *Gesture) finishLocked() {
	g.state = Idle
	if g.editor.gestures[g.key] == g {
		delete(g.editor.gestures, g.key)
	}
}
