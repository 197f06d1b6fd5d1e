package buildings

import (
	"net/http"

	"campusexplorer/models"
	"campusexplorer/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Handlers struct {
	catalog *Catalog
	log     *zap.Logger
}

func NewHandlers(catalog *Catalog, log *zap.Logger) *Handlers {
	return &Handlers{catalog: catalog, log: log}
}

// GET /api/buildings?type=&q=
func (h *Handlers) ListBuildings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := models.BuildingFilter{Category: models.Category(q.Get("type")), Text: q.Get("q")}

	list, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "count": len(list), "buildings": list})
}

// GET /api/buildings/:id
func (h *Handlers) GetBuilding(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.catalog.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "building", b)
}

// GET /api/buildings/:id/floor?room=
func (h *Handlers) LocateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plan, err := h.catalog.LocateRoom(r.Context(), ps.ByName("id"), r.URL.Query().Get("room"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "floor", plan)
}

// POST /api/buildings
func (h *Handlers) CreateBuilding(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	b, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusCreated, "building", b)
}

// PUT /api/buildings/:id
func (h *Handlers) UpdateBuilding(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch models.BuildingPatch
	if err := utils.DecodeJSON(w, r, &patch); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	b, err := h.catalog.Update(r.Context(), ps.ByName("id"), patch)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "building", b)
}

// PUT /api/buildings/:id/position
func (h *Handlers) UpdatePosition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var pos models.Coordinates
	if err := utils.DecodeJSON(w, r, &pos); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	b, err := h.catalog.UpdatePosition(r.Context(), ps.ByName("id"), pos.X, pos.Y)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "building", b)
}

// DELETE /api/buildings/:id
func (h *Handlers) DeleteBuilding(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.catalog.Delete(r.Context(), ps.ByName("id")); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Building deleted successfully"})
}
