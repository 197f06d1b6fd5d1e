package maps

import (
	"context"
	"net/http"
	"strings"

	"campusexplorer/models"
	"campusexplorer/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// TypeLabels are the legend entries the map shows for each category.
var TypeLabels = map[models.Category]string{
	models.CategoryAcademic:       "🎓 Academic",
	models.CategoryAdministration: "🏛️ Administration",
	models.CategoryStudentLife:    "☕ Student Life",
	models.CategoryAthletics:      "🏟️ Athletics",
	models.CategoryResidence:      "🏠 Residence",
	models.CategoryLandmark:       "📍 Landmark",
}

type Config struct {
	MapImage   string                     `json:"mapImage"`
	Surface    Surface                    `json:"surface"`
	Categories []models.Category          `json:"categories"`
	TypeLabels map[models.Category]string `json:"typeLabels"`
}

// Marker is a building projected onto the map surface. Order is the 1-based
// stop number when markers are drawn for a tour.
type Marker struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Type    models.Category    `json:"type"`
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	Percent models.Coordinates `json:"percent"`
	Order   int                `json:"order,omitempty"`
}

// BuildingLister is the part of the catalog markers are drawn from.
type BuildingLister interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
}

// TourResolver resolves a tour's stops in order.
type TourResolver interface {
	ResolveStops(ctx context.Context, id string) (models.Tour, []models.ResolvedStop, error)
}

type Handlers struct {
	config Config
	list   BuildingLister
	tours  TourResolver
	log    *zap.Logger
}

func NewHandlers(image string, surface Surface, list BuildingLister, tours TourResolver, log *zap.Logger) *Handlers {
	return &Handlers{
		config: Config{
			MapImage:   image,
			Surface:    surface,
			Categories: models.Categories,
			TypeLabels: TypeLabels,
		},
		list:  list,
		tours: tours,
		log:   log,
	}
}

func (h *Handlers) GetMapConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondOK(w, http.StatusOK, "config", h.config)
}

// GetMapMarkers returns every placed building, or with ?tour= only that
// tour's stops in visiting order. Unplaced and dangling stops are skipped
// but keep their stop numbers.
func (h *Handlers) GetMapMarkers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	var (
		markers []Marker
		err     error
	)
	if id := strings.TrimSpace(q.Get("tour")); id != "" {
		markers, err = TourMarkers(r.Context(), h.tours, id, h.config.Surface)
	} else {
		filter := models.BuildingFilter{Category: models.Category(q.Get("type")), Text: q.Get("q")}
		markers, err = BuildingMarkers(r.Context(), h.list, filter, h.config.Surface)
	}
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(markers),
		"markers": markers,
	})
}

func project(b models.Building, s Surface) (Marker, bool, error) {
	if b.Coordinates == nil {
		return Marker{}, false, nil
	}
	x, y, err := ToSurface(b.Coordinates.X, b.Coordinates.Y, s)
	if err != nil {
		return Marker{}, false, err
	}
	return Marker{
		ID:      b.Key,
		Name:    b.Name,
		Type:    b.Category,
		X:       x,
		Y:       y,
		Percent: *b.Coordinates,
	}, true, nil
}

// BuildingMarkers projects the placed buildings matching filter.
func BuildingMarkers(ctx context.Context, list BuildingLister, filter models.BuildingFilter, s Surface) ([]Marker, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	buildings, err := list.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Marker, 0, len(buildings))
	for _, b := range buildings {
		m, ok, err := project(b, s)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// TourMarkers projects a tour's stops in order.
func TourMarkers(ctx context.Context, tours TourResolver, id string, s Surface) ([]Marker, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	_, stops, err := tours.ResolveStops(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]Marker, 0, len(stops))
	for _, stop := range stops {
		if stop.Missing {
			continue
		}
		m, ok, err := project(stop.Building, s)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		m.Order = stop.Index + 1
		out = append(out, m)
	}
	return out, nil
}
