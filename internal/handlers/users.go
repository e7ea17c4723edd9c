package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/models"
)

// GET /api/admin/users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registry.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /api/admin/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.CreateUser(r.Context(), &u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// PUT /api/admin/users/{id}
// A signed-in user whose role or camps change is reloaded in place.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var u models.User
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, err)
		return
	}
	u.ID = id
	if err := h.Registry.UpdateUser(r.Context(), &u); err != nil {
		writeError(w, err)
		return
	}
	if _, ok := h.Sessions.Get(id); ok {
		if _, err := h.Sessions.Login(r.Context(), &u); err != nil {
			h.Log.Warn("reload session after user update", zap.Uint("user_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, u)
}

// DELETE /api/admin/users/{id}
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Registry.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Sessions.Logout(r.Context(), id); err != nil {
		h.Log.Warn("close session of deleted user", zap.Uint("user_id", id), zap.Error(err))
	}
	h.dropLoader(id)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/sessions
func (h *Handlers) SessionCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"sessions": h.Sessions.Len()})
}
