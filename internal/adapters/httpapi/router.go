package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: handlers decode/encode JSON and
// translate application errors into the shared envelope; all rules live in
// the app layer.
func NewRouter(s *Server, v TokenValidator) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Unauthenticated, used by infra health checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Session entry points carry no bearer token yet.
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/logout", s.handleLogout)
	r.Get("/auth/session", s.handleGetSession)

	r.Group(func(pr chi.Router) {
		pr.Use(NewAuthMiddleware(v))

		pr.Post("/auth/password", s.handleChangePassword)
		pr.Post("/admin/users", s.handleCreateUser)

		pr.Route("/members", func(mr chi.Router) {
			mr.Get("/", s.handleListMembers)
			mr.Post("/", s.handleCreateMember)
			mr.Get("/{memberId}", s.handleGetMember)
			mr.Patch("/{memberId}", s.handleUpdateMember)
			mr.Put("/{memberId}/status", s.handleUpdateMemberStatus)
			mr.Delete("/{memberId}", s.handleDeleteMember)
		})

		pr.Route("/events", func(er chi.Router) {
			er.Get("/", s.handleListEvents)
			er.Post("/", s.handleCreateEvent)
			er.Get("/{eventId}", s.handleGetEvent)
			er.Patch("/{eventId}", s.handleUpdateEvent)
			er.Put("/{eventId}/attendees/{memberId}", s.handleJoinEvent)
			er.Delete("/{eventId}/attendees/{memberId}", s.handleLeaveEvent)
		})

		pr.Route("/cars", func(gr chi.Router) {
			gr.Get("/", s.handleListCars)
			gr.Post("/", s.handleAddCar)
			gr.Patch("/{carId}", s.handleUpdateCar)
			gr.Delete("/{carId}", s.handleDeleteCar)
		})

		pr.Route("/contributions", func(cr chi.Router) {
			cr.Get("/", s.handleListContributions)
			cr.Post("/", s.handleAddContribution)
			cr.Delete("/{contributionId}", s.handleRemoveContribution)
		})

		pr.Route("/expenses", func(xr chi.Router) {
			xr.Get("/", s.handleListExpenses)
			xr.Post("/", s.handleAddExpense)
		})
	})

	return r
}
