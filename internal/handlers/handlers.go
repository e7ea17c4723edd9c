// Package handlers is the JSON HTTP surface over sessions, the registry and
// the report engine.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/auth"
	"github.com/lojf/campreg/internal/camps"
	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/report"
	"github.com/lojf/campreg/internal/services"
)

// Store is the list collaborator: the local registry or a remote instance.
type Store interface {
	camps.CampLister
	report.Source
	ListDelegates(ctx context.Context, campID *uint) ([]models.Delegate, error)
}

type Handlers struct {
	Registry *services.Registry
	Store    Store
	Sessions *camps.Sessions
	Engine   *report.Engine
	Log      *zap.Logger
	// ReadOnly disables mutators when Store is a remote mirror.
	ReadOnly bool

	mu      sync.Mutex
	loaders map[uint]*report.Loader
}

func New(reg *services.Registry, store Store, sessions *camps.Sessions, engine *report.Engine, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		Registry: reg,
		Store:    store,
		Sessions: sessions,
		Engine:   engine,
		Log:      log,
		loaders:  map[uint]*report.Loader{},
	}
}

// loader returns the user's report loader. Generations are per user, so one
// user's newer report never invalidates another's.
func (h *Handlers) loader(userID uint) *report.Loader {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.loaders[userID]
	if !ok {
		l = report.NewLoader(h.Store, h.Log)
		h.loaders[userID] = l
	}
	return l
}

func (h *Handlers) dropLoader(userID uint) {
	h.mu.Lock()
	delete(h.loaders, userID)
	h.mu.Unlock()
}

type sessionKey struct{}

// RequireSession resolves the caller's camp store. Callers must have opened a
// session with POST /api/session first.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			writeErrorMsg(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		st, ok := h.Sessions.Get(p.UserID)
		if !ok {
			writeErrorMsg(w, http.StatusUnauthorized, errText["no_session"])
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, st)))
	})
}

// RequireAdmin only lets admin-tier sessions through.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := sessionUser(r)
		if !ok || !camps.IsAdmin(&u) {
			writeErrorMsg(w, http.StatusForbidden, errText["admin_only"])
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireWritable blocks mutators on read-only mirrors.
func (h *Handlers) RequireWritable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ReadOnly || h.Registry == nil {
			writeErrorMsg(w, http.StatusServiceUnavailable, errText["read_only"])
			return
		}
		next.ServeHTTP(w, r)
	})
}

func session(r *http.Request) *camps.Store {
	st, _ := r.Context().Value(sessionKey{}).(*camps.Store)
	return st
}

func sessionUser(r *http.Request) (models.User, bool) {
	st := session(r)
	if st == nil {
		return models.User{}, false
	}
	return st.Principal()
}

func urlID(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		return 0, &services.ValidationError{Field: name, Message: "invalid " + name}
	}
	return uint(v), nil
}

// visibleCamp fails with camps.ErrCampNotVisible unless campID is in the
// session's effective camp set.
func visibleCamp(r *http.Request, campID uint) error {
	st := session(r)
	if st == nil || !camps.CanAccess(st.Snapshot().Camps, campID) {
		return camps.ErrCampNotVisible
	}
	return nil
}

// familyCamp checks that the family exists and its camp is visible.
func (h *Handlers) familyCamp(r *http.Request, familyID uint) (models.Family, error) {
	f, err := h.Registry.GetFamily(r.Context(), familyID)
	if err != nil {
		return models.Family{}, err
	}
	if err := visibleCamp(r, f.CampID); err != nil {
		return models.Family{}, err
	}
	return f, nil
}
