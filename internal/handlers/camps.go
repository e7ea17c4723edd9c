package handlers

import (
	"net/http"

	"github.com/lojf/campreg/internal/camps"
	"github.com/lojf/campreg/internal/models"
)

// GET /api/camps
func (h *Handlers) ListCamps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).Snapshot())
}

type selectionBody struct {
	CampID *uint `json:"camp_id"`
}

// PUT /api/camps/selection
// A null camp_id clears the selection.
func (h *Handlers) SelectCamp(w http.ResponseWriter, r *http.Request) {
	var body selectionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	var camp *models.Camp
	if body.CampID != nil {
		camp = &models.Camp{ID: *body.CampID}
	}
	st := session(r)
	if err := st.ChangeCamp(r.Context(), camp); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

// POST /api/camps/refresh
func (h *Handlers) RefreshCamps(w http.ResponseWriter, r *http.Request) {
	st := session(r)
	if err := st.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

// POST /api/admin/camps
func (h *Handlers) CreateCamp(w http.ResponseWriter, r *http.Request) {
	var c models.Camp
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.CreateCamp(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	h.Sessions.RefreshAll(r.Context())
	writeJSON(w, http.StatusCreated, c)
}

// PUT /api/admin/camps/{id}
func (h *Handlers) UpdateCamp(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var c models.Camp
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, err)
		return
	}
	c.ID = id
	if err := h.Registry.UpdateCamp(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	h.Sessions.RefreshAll(r.Context())
	writeJSON(w, http.StatusOK, c)
}

// DELETE /api/admin/camps/{id}
func (h *Handlers) DeleteCamp(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.DeleteCamp(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.Sessions.RefreshAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// selectedOrVisible resolves the camps a request is scoped to: the explicit
// list (each must be visible), else the selected camp, else every visible camp.
func selectedOrVisible(r *http.Request, explicit []uint) ([]uint, error) {
	snap := session(r).Snapshot()
	if len(explicit) > 0 {
		for _, id := range explicit {
			if !camps.CanAccess(snap.Camps, id) {
				return nil, camps.ErrCampNotVisible
			}
		}
		return explicit, nil
	}
	if snap.Selected != nil {
		return []uint{snap.Selected.ID}, nil
	}
	ids := make([]uint, 0, len(snap.Camps))
	for _, c := range snap.Camps {
		ids = append(ids, c.ID)
	}
	return ids, nil
}
