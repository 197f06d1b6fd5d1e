package routes

import (
	"campusexplorer/buildings"
	"campusexplorer/editor"
	"campusexplorer/live"
	"campusexplorer/maps"
	"campusexplorer/middleware"
	"campusexplorer/ratelim"
	"campusexplorer/tours"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Catalog reads are public. Every write is admin only, and the role check
// runs before the handler resolves the building.
func AddBuildingRoutes(router *httprouter.Router, h *buildings.Handlers, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/buildings", h.ListBuildings)
	router.GET("/api/buildings/:id", h.GetBuilding)
	router.GET("/api/buildings/:id/floor", h.LocateRoom)

	admin := middleware.Chain(rateLimiter.Limit, middleware.RequireAdmin)
	router.POST("/api/buildings", admin(h.CreateBuilding))
	router.PUT("/api/buildings/:id", admin(h.UpdateBuilding))
	router.PUT("/api/buildings/:id/position", admin(h.UpdatePosition))
	router.DELETE("/api/buildings/:id", admin(h.DeleteBuilding))
}

func AddTourRoutes(router *httprouter.Router, h *tours.Handlers, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/tours", middleware.OptionalAuth(h.ListTours))
	router.GET("/api/tours/:id", h.GetTour)
	router.GET("/api/tours/:id/stops", h.GetStops)
	router.GET("/api/tours/:id/sheet.pdf", h.GetSheet)
	router.GET("/api/tours/:id/qr.png", h.GetQR)

	router.POST("/api/tours", middleware.Chain(rateLimiter.Limit, middleware.OptionalAuth)(h.CreateTour))

	owner := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)
	router.PUT("/api/tours/:id", owner(h.UpdateTour))
	router.POST("/api/tours/:id/stops", owner(h.AddStop))
	router.POST("/api/tours/:id/stops/move", owner(h.MoveStop))
	router.DELETE("/api/tours/:id/stops/:index", owner(h.RemoveStop))
	router.DELETE("/api/tours/:id", owner(h.DeleteTour))
}

func AddMapRoutes(router *httprouter.Router, h *maps.Handlers) {
	router.GET("/api/map/config", h.GetMapConfig)
	router.GET("/api/map/markers", h.GetMapMarkers)
}

// The editor socket only reads the capability here; the editor itself
// refuses non-admins before it looks the building up.
func AddLiveRoutes(router *httprouter.Router, hub *live.Hub, ed *editor.Editor, log *zap.Logger) {
	router.GET("/ws/map", live.MapFeedHandler(hub, log))
	router.GET("/ws/editor/:id", middleware.OptionalAuth(editor.Handler(ed, log)))
}
