package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/app"
	"github.com/rs/zerolog/log"
)

const Version = "2.0.0"

type SystemHandler struct {
	app *app.App
}

func NewSystemHandler(app *app.App) *SystemHandler {
	return &SystemHandler{app: app}
}

var endpoints = map[string]string{
	"users":  "/api/users",
	"search": "/api/users/search?q=searchTerm",
	"health": "/health",
}

var documentation = map[string]string{
	"GET /api/users":               "Get all users",
	"GET /api/users/:id":           "Get user by ID",
	"GET /api/users/search?q=term": "Search users by name or email",
	"POST /api/users":              "Create new user (requires: name, email, age)",
	"PUT /api/users/:id":           "Update user (requires: name, email, age)",
	"PATCH /api/users/:id":         "Partial update user (optional: name, email, age)",
	"DELETE /api/users/:id":        "Delete user",
}

// GET /
func (h *SystemHandler) Index(w http.ResponseWriter, _ *http.Request) {
	db := h.app.Store.Dialect().Name()
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Welcome to User REST API with " + db,
		"version":       Version,
		"database":      db,
		"endpoints":     endpoints,
		"documentation": documentation,
	})
}

// GET /health. The store is pinged; an unreachable store reports 503.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{
		"database":  h.app.Store.Dialect().Name(),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := h.app.Store.Ping(ctx); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
		body["success"] = false
		body["status"] = "unhealthy"
		body["error"] = "database ping failed"
		WriteJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body["success"] = true
	body["status"] = "healthy"
	if n, err := h.app.Users.Count(ctx); err == nil {
		body["users"] = n
	}
	WriteJSON(w, http.StatusOK, body)
}
