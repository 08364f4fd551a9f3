package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gochi-demo/user-rest-api/internal/app"
	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/gochi-demo/user-rest-api/internal/models"
)

type UserHandler struct {
	app *app.App
}

func NewUserHandler(app *app.App) *UserHandler {
	return &UserHandler{app: app}
}

// Routes mounts the user endpoints. /search is registered ahead of /{id}.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/search", h.SearchUsers)
	r.Get("/", h.GetUsers)
	r.Get("/{id}", h.GetUser)
	r.Post("/", h.CreateUser)
	r.Put("/{id}", h.UpdateUser)
	r.Patch("/{id}", h.PatchUser)
	r.Delete("/{id}", h.DeleteUser)
}

// GET /api/users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Users.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, users)
}

// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeServiceError(w, r, apperr.NotFound())
		return
	}

	user, err := h.app.Users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: user})
}

// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, msgInvalidBody)
		return
	}

	user, err := h.app.Users.Create(r.Context(), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: "User created successfully", Data: user})
}

// PUT /api/users/{id}. Callers are expected to send every field; omitted
// ones keep their stored value.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

// PATCH /api/users/{id}
func (h *UserHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	h.update(w, r)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeServiceError(w, r, apperr.NotFound())
		return
	}

	fields, err := decodeFields(w, r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, msgInvalidBody)
		return
	}

	user, err := h.app.Users.Update(r.Context(), id, fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: "User updated successfully", Data: user})
}

// DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeServiceError(w, r, apperr.NotFound())
		return
	}

	user, err := h.app.Users.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: "User deleted successfully", Data: user})
}

// GET /api/users/search?q=term
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "Search term (q) is required")
		return
	}

	users, err := h.app.Users.Search(r.Context(), term)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, users)
}

func userID(r *http.Request) (int64, bool) {
	return models.ParseID(chi.URLParam(r, "id"))
}
