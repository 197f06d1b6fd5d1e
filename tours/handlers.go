package tours

import (
	"bytes"
	"net/http"
	"strings"

	"campusexplorer/middleware"
	"campusexplorer/models"
	"campusexplorer/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Handlers struct {
	service *Service
	log     *zap.Logger
}

func NewHandlers(service *Service, log *zap.Logger) *Handlers {
	return &Handlers{service: service, log: log}
}

// shareLink is the public page for a tour on the host that served r.
func shareLink(r *http.Request, id string) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/tours/" + id
}

// GET /api/tours?ownerEmail=
func (h *Handlers) ListTours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := r.URL.Query().Get("ownerEmail")
	if email == "" {
		email = middleware.CapabilityFrom(r.Context()).Email
	}
	if strings.TrimSpace(email) == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
			"success": false,
			"message": "ownerEmail query parameter is required",
			"field":   "ownerEmail",
		})
		return
	}

	list, err := h.service.ListByOwner(r.Context(), email)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "tours", list)
}

// GET /api/tours/:id
func (h *Handlers) GetTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	t, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "tour", t)
}

// GET /api/tours/:id/stops
func (h *Handlers) GetStops(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	t, stops, err := h.service.ResolveStops(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "tour": t, "stops": stops})
}

// GET /api/tours/:id/sheet.pdf
func (h *Handlers) GetSheet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	t, stops, err := h.service.ResolveStops(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := RenderSheet(&buf, t, stops, shareLink(r, t.TourID)); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=tour-"+t.TourID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GET /api/tours/:id/qr.png
func (h *Handlers) GetQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	t, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	png, err := ShareQR(shareLink(r, t.TourID))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// POST /api/tours
func (h *Handlers) CreateTour(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	t, err := h.service.Create(r.Context(), middleware.CapabilityFrom(r.Context()), req)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusCreated, "tour", t)
}

// PUT /api/tours/:id
func (h *Handlers) UpdateTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch models.TourPatch
	if err := utils.DecodeJSON(w, r, &patch); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	t, err := h.service.Update(r.Context(), middleware.CapabilityFrom(r.Context()), ps.ByName("id"), patch)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "tour", t)
}

// POST /api/tours/:id/stops
func (h *Handlers) AddStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		BuildingKey string `json:"buildingId"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	t, err := h.service.AddStop(r.Context(), middleware.CapabilityFrom(r.Context()), ps.ByName("id"), body.BuildingKey)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "tour", t)
}

// DELETE /api/tours/:id/stops/:index
func (h *Handlers) RemoveStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, err := utils.IntParam("index", ps.ByName("index"))
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	t, err := h.service.RemoveStop(r.Context(), middleware.CapabilityFrom(r.Context()), ps.ByName("id"), index)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "tour", t)
}

// POST /api/tours/:id/stops/move
func (h *Handlers) MoveStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	if body.From == nil || body.To == nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{
			"success": false,
			"message": "from and to are required",
			"field":   "from",
		})
		return
	}
	t, err := h.service.MoveStop(r.Context(), middleware.CapabilityFrom(r.Context()), ps.ByName("id"), *body.From, *body.To)
	if err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondOK(w, http.StatusOK, "tour", t)
}

// DELETE /api/tours/:id
func (h *Handlers) DeleteTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), middleware.CapabilityFrom(r.Context()), ps.ByName("id")); err != nil {
		utils.RespondWithErr(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Tour deleted successfully"})
}
