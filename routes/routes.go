package routes

import (
	"net/http"
	"time"

	"github.com/arenaops/esports-platform/handlers"
	"github.com/arenaops/esports-platform/middleware"
	"github.com/arenaops/esports-platform/models"
	"github.com/arenaops/esports-platform/repositories"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Wallet       *handlers.WalletHandler
	Team         *handlers.TeamHandler
	Invitation   *handlers.InvitationHandler
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Leaderboard  *handlers.LeaderboardHandler
	Referral     *handlers.ReferralHandler
	Schedule     *handlers.ScheduleHandler
	Lookup       *handlers.LookupHandler
	Notification *handlers.NotificationHandler
	Upload       *handlers.UploadHandler
	WebSocket    *handlers.WebSocketHandler
}

// SetupRoutes builds the chi router: public catalog endpoints, an
// authenticated user surface, and staff surfaces gated by role.
func SetupRoutes(h Handlers, userRepo repositories.UserRepository, jwtSecret, frontendURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret, userRepo)
	staffOnly := middleware.RequireRole(models.RoleAccountant, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, time.Minute))
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// Public catalog
		r.Get("/tournaments", h.Tournament.List)
		r.Get("/tournaments/{id}", h.Tournament.GetByID)
		r.Get("/tournaments/{id}/leaderboard", h.Leaderboard.ListByTournament)
		r.Get("/tournaments/{id}/schedules", h.Schedule.ListByTournament)
		r.Get("/leaderboard/top-teams", h.Leaderboard.TopTeams)
		r.Get("/games", h.Lookup.ListGames)
		r.Get("/tournament-types", h.Lookup.ListTournamentTypes)
		r.Get("/mode-types", h.Lookup.ListModeTypes)
		r.Get("/teams/{id}", h.Team.GetByID)

		// Authenticated users
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/users/me", h.User.Me)
			r.Put("/users/me", h.User.UpdateMe)

			r.Get("/wallet", h.Wallet.GetWallet)
			r.Get("/wallet/transactions", h.Wallet.ListMyTransactions)
			r.Post("/wallet/withdrawals", h.Wallet.RequestWithdrawal)
			r.Post("/wallet/validate-upi", h.Wallet.ValidateUPI)

			r.Get("/referrals/me", h.Referral.Summary)
			r.Post("/referrals/convert", h.Referral.Convert)

			r.Post("/teams", h.Team.Create)
			r.Get("/teams", h.Team.List)
			r.Get("/teams/mine", h.Team.GetMine)
			r.Put("/teams/{id}", h.Team.Update)
			r.Delete("/teams/{id}", h.Team.Terminate)
			r.Post("/teams/{id}/leave", h.Team.Leave)
			r.Delete("/teams/{id}/members/{userID}", h.Team.RemoveMember)
			r.Get("/teams/{id}/registrations", h.Registration.ListByTeam)

			r.Post("/teams/{id}/invitations", h.Invitation.Create)
			r.Get("/teams/{id}/invitations", h.Invitation.ListByTeam)
			r.Get("/invitations/{code}", h.Invitation.Preview)
			r.Post("/invitations/{code}/accept", h.Invitation.Accept)
			r.Post("/invitations/{code}/reject", h.Invitation.Reject)

			r.Post("/tournaments/{id}/register", h.Registration.Register)

			r.Get("/notifications", h.Notification.List)
			r.Post("/notifications/read-all", h.Notification.MarkAllRead)
			r.Post("/notifications/{id}/read", h.Notification.MarkRead)

			r.Post("/uploads", h.Upload.Upload)
			r.Get("/ws", h.WebSocket.Serve)
		})

		// Accountant or admin
		r.Group(func(r chi.Router) {
			r.Use(authenticate, staffOnly)

			r.Get("/admin/transactions", h.Wallet.ListAllTransactions)
			r.Post("/admin/wallet/credit", h.Wallet.Credit)
			r.Post("/admin/withdrawals/{id}/approve", h.Wallet.ApproveWithdrawal)
			r.Post("/admin/withdrawals/{id}/reject", h.Wallet.RejectWithdrawal)
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)

			r.Get("/admin/users", h.User.List)
			r.Get("/admin/users/{id}", h.User.GetByID)
			r.Put("/admin/users/{id}/role", h.User.ChangeRole)

			r.Post("/admin/tournaments", h.Tournament.Create)
			r.Put("/admin/tournaments/{id}", h.Tournament.Update)
			r.Delete("/admin/tournaments/{id}", h.Tournament.Delete)
			r.Put("/admin/tournaments/{id}/status", h.Tournament.ChangeStatus)

			r.Post("/admin/teams/{id}/reinstate", h.Team.Reinstate)

			r.Get("/admin/tournaments/{id}/registrations", h.Registration.ListByTournament)
			r.Post("/admin/registrations/{id}/approve", h.Registration.Approve)
			r.Post("/admin/registrations/{id}/reject", h.Registration.Reject)

			r.Post("/admin/tournaments/{id}/results", h.Leaderboard.RecordResult)
			r.Put("/admin/tournaments/{id}/leaderboard", h.Leaderboard.ReplaceForTournament)

			r.Post("/admin/tournaments/{id}/schedules", h.Schedule.Create)
			r.Put("/admin/schedules/{scheduleID}", h.Schedule.Update)
			r.Delete("/admin/schedules/{scheduleID}", h.Schedule.Delete)

			r.Post("/admin/games", h.Lookup.CreateGame)
			r.Put("/admin/games/{id}", h.Lookup.UpdateGame)
			r.Delete("/admin/games/{id}", h.Lookup.DeleteGame)
			r.Post("/admin/tournament-types", h.Lookup.CreateTournamentType)
			r.Post("/admin/mode-types", h.Lookup.CreateModeType)
			r.Delete("/admin/formats/{id}", h.Lookup.DeleteFormat)
		})
	})

	return r
}
