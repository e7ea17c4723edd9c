package handlers

import (
	"net/http"
	"strconv"

	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/services"
)

// GET /api/aid?family_id=
func (h *Handlers) ListAid(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseUint(r.URL.Query().Get("family_id"), 10, 64)
	if err != nil || v == 0 {
		writeError(w, &services.ValidationError{Field: "family_id", Message: "family_id is required"})
		return
	}
	familyID := uint(v)
	if _, err := h.familyCamp(r, familyID); err != nil {
		writeError(w, err)
		return
	}
	all, err := h.Store.ListAidDeliveries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]models.AidDelivery, 0)
	for _, a := range all {
		if a.FamilyID == familyID {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/aid
func (h *Handlers) CreateAid(w http.ResponseWriter, r *http.Request) {
	var a models.AidDelivery
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, a.FamilyID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.CreateAidDelivery(r.Context(), &a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
