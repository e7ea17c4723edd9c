package handlers

import (
	"net/http"

	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/roles"
)

type individualView struct {
	models.Individual
	RoleLabel string `json:"role_label"`
}

// GET /api/camps/{id}/individuals
func (h *Handlers) ListIndividuals(w http.ResponseWriter, r *http.Request) {
	campID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := visibleCamp(r, campID); err != nil {
		writeError(w, err)
		return
	}
	members, err := h.Store.ListIndividuals(r.Context(), campID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]individualView, 0, len(members))
	for _, m := range members {
		out = append(out, individualView{Individual: m, RoleLabel: roles.Label(m.Role, m.RoleDescription)})
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/individuals
func (h *Handlers) CreateIndividual(w http.ResponseWriter, r *http.Request) {
	var m models.Individual
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, m.FamilyID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.CreateIndividual(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// PUT /api/individuals/{id}
func (h *Handlers) UpdateIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	cur, err := h.Registry.GetIndividual(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, cur.FamilyID); err != nil {
		writeError(w, err)
		return
	}
	var m models.Individual
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, err)
		return
	}
	m.ID = id
	if _, err := h.familyCamp(r, m.FamilyID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.UpdateIndividual(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DELETE /api/individuals/{id}
func (h *Handlers) DeleteIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.Registry.GetIndividual(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.familyCamp(r, m.FamilyID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.DeleteIndividual(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
