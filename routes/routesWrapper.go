package routes

import (
	"campusexplorer/buildings"
	"campusexplorer/editor"
	"campusexplorer/live"
	"campusexplorer/maps"
	"campusexplorer/ratelim"
	"campusexplorer/tours"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Deps is everything the routes hand requests to.
type Deps struct {
	Buildings *buildings.Handlers
	Tours     *tours.Handlers
	Maps      *maps.Handlers
	Hub       *live.Hub
	Editor    *editor.Editor
	Log       *zap.Logger
}

func RoutesWrapper(router *httprouter.Router, d Deps, rateLimiter *ratelim.RateLimiter) {
	AddBuildingRoutes(router, d.Buildings, rateLimiter)
	AddTourRoutes(router, d.Tours, rateLimiter)
	AddMapRoutes(router, d.Maps)
	AddLiveRoutes(router, d.Hub, d.Editor, d.Log)
}
