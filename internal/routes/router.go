package routes

import (
	"log/slog"
	"net/http"
	"time"

	"games_play/internal/controllers"
	"games_play/internal/services"
	"games_play/internal/storage/mariadb"
	"games_play/internal/storage/uploads"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "games_play/internal/middleware"
)

type Deps struct {
	Storage   *mariadb.Storage
	Uploads   *uploads.Uploads
	Renderer  controllers.PageRenderer
	Importer  controllers.GameImporter
	Auth      *authmw.AuthMiddleware
	Cors      []string
	StaticDir string

	// ImportWorkers caps concurrent catalogue lookups; zero keeps the default.
	ImportWorkers int
	ImportTimeout time.Duration
}

func SetupRouter(log *slog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Cors,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	gameService := services.NewGameService(deps.Storage, log)
	gameController := controllers.NewGameController(gameService, deps.Renderer, deps.Importer, deps.Uploads, log).
		WithImportLimits(deps.ImportWorkers, deps.ImportTimeout)

	r.Route("/games", func(r chi.Router) {
		r.Get("/{slug}", gameController.Play)
		r.Get("/id/{id}", gameController.PlayByID)
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", gameController.GetAll)
		r.Get("/{slug}", gameController.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.ValidateToken)
			r.Use(deps.Auth.RequireAdmin)

			r.Post("/", gameController.Create)
			r.Post("/import", gameController.Import)
			r.Put("/{id}/slug", gameController.AssignSlug)
		})
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Uploads.Dir()))))
	if deps.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}

	return r
}
