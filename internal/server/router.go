package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gochi-demo/user-rest-api/internal/app"
	"github.com/gochi-demo/user-rest-api/internal/handlers"
)

type Options struct {
	// Development enables per-request logging.
	Development bool
}

func NewRouter(a *app.App, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Middlewares
	r.Use(RequestID)
	r.Use(SecurityHeaders())
	r.Use(cors.AllowAll().Handler)
	if opts.Development {
		r.Use(RequestLogger)
	}
	r.Use(Recoverer)

	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)

	sys := handlers.NewSystemHandler(a)
	r.Get("/", sys.Index)
	r.Get("/health", sys.Health)

	r.Route("/api/users", handlers.NewUserHandler(a).Routes)

	return r
}

// NewServer wraps the router in an http.Server listening on addr.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
