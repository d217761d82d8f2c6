package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/helixkit/userstore/internal/transport/middleware"
	"github.com/helixkit/userstore/internal/transport/swagger"
	"github.com/helixkit/userstore/internal/userstore"
)

// RegisterAllRoutes mounts the userstore API. Login and refresh are the
// only unauthenticated routes besides the health endpoints; everything
// under /persons and /users requires a valid access token.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, storeHandler *userstore.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/login", storeHandler.Login)
		r.Put("/login", storeHandler.RefreshToken)

		r.Group(func(pr chi.Router) {
			pr.Use(storeHandler.AuthMiddleware)

			pr.Route("/persons", func(sr chi.Router) {
				sr.Get("/", storeHandler.GetAllPersons)
				sr.Post("/", storeHandler.CreatePerson)
				sr.Put("/", storeHandler.UpdatePerson)
				sr.Get("/{uuid}", storeHandler.GetPerson)
				sr.Delete("/{uuid}", storeHandler.DeletePerson)
			})

			pr.Route("/users", func(sr chi.Router) {
				sr.Get("/", storeHandler.GetAllUsers)
				sr.Post("/", storeHandler.CreateUser)
				sr.Put("/", storeHandler.UpdateUser)
				sr.Get("/{uuid}", storeHandler.GetUser)
				sr.Delete("/{uuid}", storeHandler.DeleteUser)
			})
		})
	})
}
