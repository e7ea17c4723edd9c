package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/auth"
	"github.com/lojf/campreg/internal/handlers"
)

func Router(h *handlers.Handlers, secret string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware(secret))

		api.Post("/session", h.CreateSession)
		api.Delete("/session", h.DeleteSession)

		// Raw lists for remote mirrors
		api.Route("/store", func(st chi.Router) {
			st.Use(h.RequireAdminUser)
			st.Get("/camps", h.StoreCamps)
			st.Get("/camps/{id}/families", h.StoreFamilies)
			st.Get("/camps/{id}/individuals", h.StoreIndividuals)
			st.Get("/delegates", h.StoreDelegates)
			st.Get("/aid", h.StoreAid)
		})

		api.Group(func(s chi.Router) {
			s.Use(h.RequireSession)

			// Camps
			s.Get("/camps", h.ListCamps)
			s.Put("/camps/selection", h.SelectCamp)
			s.Post("/camps/refresh", h.RefreshCamps)
			s.Get("/camps/{id}/families", h.ListFamilies)
			s.Get("/camps/{id}/individuals", h.ListIndividuals)

			// Families
			s.Get("/families/{id}", h.GetFamily)
			s.Get("/families/{id}/card.png", h.FamilyCard)

			s.Get("/delegates", h.ListDelegates)
			s.Get("/aid", h.ListAid)

			// Reports
			s.Get("/reports/presets", h.ListPresets)
			s.Post("/reports", h.Report)
			s.Post("/reports/export", h.ExportReport)

			s.Group(func(wr chi.Router) {
				wr.Use(h.RequireWritable)

				wr.Post("/families", h.CreateFamily)
				wr.Put("/families/{id}", h.UpdateFamily)
				wr.Delete("/families/{id}", h.DeleteFamily)
				wr.Post("/families/{id}/departed", h.SetFamilyDeparted)

				wr.Post("/individuals", h.CreateIndividual)
				wr.Put("/individuals/{id}", h.UpdateIndividual)
				wr.Delete("/individuals/{id}", h.DeleteIndividual)

				wr.Post("/delegates", h.CreateDelegate)
				wr.Put("/delegates/{id}", h.UpdateDelegate)
				wr.Delete("/delegates/{id}", h.DeleteDelegate)

				wr.Post("/aid", h.CreateAid)
			})

			s.Route("/admin", func(ad chi.Router) {
				ad.Use(h.RequireAdmin)

				ad.Get("/users", h.ListUsers)
				ad.Get("/sessions", h.SessionCount)
				ad.With(h.RequireWritable).Post("/users", h.CreateUser)
				ad.With(h.RequireWritable).Put("/users/{id}", h.UpdateUser)
				ad.With(h.RequireWritable).Delete("/users/{id}", h.DeleteUser)

				ad.With(h.RequireWritable).Post("/camps", h.CreateCamp)
				ad.With(h.RequireWritable).Put("/camps/{id}", h.UpdateCamp)
				ad.With(h.RequireWritable).Delete("/camps/{id}", h.DeleteCamp)

				ad.With(h.RequireWritable).Post("/delegates/migrate", h.MigrateDelegates)
			})
		})
	})

	return r
}

// requestLogger writes one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
