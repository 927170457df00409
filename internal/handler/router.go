package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/advancelms/lms-api/internal/auth"
	"github.com/advancelms/lms-api/internal/config"
	"github.com/advancelms/lms-api/internal/httputil"
	"github.com/advancelms/lms-api/internal/middleware"
	"github.com/advancelms/lms-api/internal/repository"
)

// NewRouter wires every handler under the /api prefix with CORS, request
// logging, and the authentication gates.
func NewRouter(
	cfg *config.Config,
	logger *zerolog.Logger,
	jwtAuth auth.JWTAuthenticator,
	userRepo repository.UserRepository,
	courseHandler *CourseHandler,
	userHandler *UserHandler,
	paymentHandler *PaymentHandler,
	chatHandler *ChatHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	authenticate := middleware.Authenticate(jwtAuth, cfg.JWTSecret, userRepo, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/course", func(r chi.Router) {
			r.Get("/courses", courseHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Get("/{id}", courseHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)

					r.Post("/createcourse", courseHandler.Create)
					r.Post("/{id}", courseHandler.AddLecture)
					r.Delete("/lecture", courseHandler.DeleteLecture)
					r.Delete("/{id}", courseHandler.Delete)
				})
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/forgetpassword", userHandler.ForgotPassword)
			r.Put("/resetpassword/{token}", userHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Get("/logout", userHandler.Logout)
				r.Get("/me", userHandler.Me)
				r.Put("/updateprofile", userHandler.UpdateProfile)
				r.Put("/changepassword", userHandler.ChangePassword)
				r.Put("/updateprofilepicture", userHandler.ChangeAvatar)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireAdmin)

					r.Get("/users", userHandler.ListUsers)
					r.Put("/user/{id}", userHandler.UpdateRole)
					r.Delete("/user/{id}", userHandler.DeleteUser)
				})
			})
		})

		r.Route("/payment", func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/create-order", paymentHandler.CreateOrder)
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Post("/chat", chatHandler.Chat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "route not found")
	})

	return r
}
