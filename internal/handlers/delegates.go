package handlers

import (
	"net/http"
	"strconv"

	"github.com/lojf/campreg/internal/camps"
	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/services"
)

// GET /api/delegates?camp_id=
// Admins may omit camp_id to see every delegate, including unassigned ones.
// Everyone else gets the selected camp's delegates.
func (h *Handlers) ListDelegates(w http.ResponseWriter, r *http.Request) {
	u, _ := sessionUser(r)
	var campID *uint
	if raw := r.URL.Query().Get("camp_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, &services.ValidationError{Field: "camp_id", Message: "invalid camp_id"})
			return
		}
		id := uint(v)
		if err := visibleCamp(r, id); err != nil {
			writeError(w, err)
			return
		}
		campID = &id
	} else if !camps.IsAdmin(&u) {
		sel := session(r).Snapshot().Selected
		if sel == nil {
			writeErrorMsg(w, http.StatusBadRequest, errText["no_camp"])
			return
		}
		campID = &sel.ID
	}
	list, err := h.Store.ListDelegates(r.Context(), campID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// delegateScope lets admins manage unassigned delegates; everyone else needs
// a visible camp.
func delegateScope(r *http.Request, campID *uint) error {
	if campID == nil {
		if u, ok := sessionUser(r); ok && camps.IsAdmin(&u) {
			return nil
		}
		return camps.ErrCampNotVisible
	}
	return visibleCamp(r, *campID)
}

// POST /api/delegates
func (h *Handlers) CreateDelegate(w http.ResponseWriter, r *http.Request) {
	var d models.Delegate
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, err)
		return
	}
	if err := delegateScope(r, d.CampID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.CreateDelegate(r.Context(), &d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// PUT /api/delegates/{id}
func (h *Handlers) UpdateDelegate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	cur, err := h.Registry.GetDelegate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := delegateScope(r, cur.CampID); err != nil {
		writeError(w, err)
		return
	}
	var d models.Delegate
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, err)
		return
	}
	d.ID = id
	if err := delegateScope(r, d.CampID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.UpdateDelegate(r.Context(), &d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DELETE /api/delegates/{id}
func (h *Handlers) DeleteDelegate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	cur, err := h.Registry.GetDelegate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := delegateScope(r, cur.CampID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.DeleteDelegate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type migrateBody struct {
	CampID uint `json:"camp_id"`
}

// POST /api/admin/delegates/migrate
func (h *Handlers) MigrateDelegates(w http.ResponseWriter, r *http.Request) {
	var body migrateBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	n, err := h.Registry.MigrateDelegates(r.Context(), body.CampID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"camp_id": body.CampID, "migrated": n})
}
