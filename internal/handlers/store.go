package handlers

import (
	"net/http"
	"strconv"

	"github.com/lojf/campreg/internal/auth"
	"github.com/lojf/campreg/internal/camps"
	"github.com/lojf/campreg/internal/services"
)

// Raw list endpoints under /api/store serve another instance's remote client.
// They read the local registry and are admin-only.

func (h *Handlers) StoreCamps(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registry.ListCamps(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) StoreFamilies(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Registry.ListFamilies(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) StoreIndividuals(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Registry.ListIndividuals(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) StoreDelegates(w http.ResponseWriter, r *http.Request) {
	var campID *uint
	if raw := r.URL.Query().Get("camp_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, &services.ValidationError{Field: "camp_id", Message: "invalid camp_id"})
			return
		}
		id := uint(v)
		campID = &id
	}
	list, err := h.Registry.ListDelegates(r.Context(), campID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) StoreAid(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registry.ListAidDeliveries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// RequireAdminUser gates /api/store without a session: the token's user is
// looked up directly.
func (h *Handlers) RequireAdminUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			writeErrorMsg(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		u, err := h.Registry.GetUser(r.Context(), p.UserID)
		if err != nil {
			writeErrorMsg(w, http.StatusUnauthorized, errText["unknown_user"])
			return
		}
		if !camps.IsAdmin(&u) {
			writeErrorMsg(w, http.StatusForbidden, errText["admin_only"])
			return
		}
		next.ServeHTTP(w, r)
	})
}
