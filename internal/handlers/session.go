package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/auth"
	"github.com/lojf/campreg/internal/services"
)

// GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/session
// The principal became available: bind the user's camp store and load camps.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	u, err := h.Registry.GetUser(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeErrorMsg(w, http.StatusUnauthorized, errText["unknown_user"])
			return
		}
		writeError(w, err)
		return
	}
	st, err := h.Sessions.Login(r.Context(), &u)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Log.Info("session opened", zap.Uint("user_id", u.ID), zap.String("role", u.Role))
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "camps": st.Snapshot()})
}

// DELETE /api/session
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := h.Sessions.Logout(r.Context(), p.UserID); err != nil {
		writeError(w, err)
		return
	}
	h.dropLoader(p.UserID)
	w.WriteHeader(http.StatusNoContent)
}
