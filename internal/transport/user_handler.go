package transport

import (
	"context"
	"errors"
	"net/http"

	"quikmart/internal/domain"
	"quikmart/internal/middleware"
	"quikmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignupRequest represents the signup request payload. Email format is
// checked by the service so every entry point reports it the same way.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SigninRequest represents the signin request payload
type SigninRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SigninResponse represents the signin response
type SigninResponse struct {
	Message string      `json:"message"`
	UserID  string      `json:"userId"`
	Role    domain.Role `json:"role"`
}

// StatusResponse describes the caller's live session
type StatusResponse struct {
	Authenticated bool        `json:"authenticated"`
	UserID        string      `json:"userId"`
	Role          domain.Role `json:"role"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
}

// SessionManager starts and ends cookie sessions
type SessionManager interface {
	Start(ctx context.Context, w http.ResponseWriter, user *domain.User) (*domain.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// UserHandler handles HTTP requests for account operations
type UserHandler struct {
	handlerBase
	userService service.UserService
	sessions    SessionManager
}

// NewUserHandler creates a new UserHandler. debug exposes internal error
// text in 500 responses.
func NewUserHandler(userService service.UserService, sessions SessionManager, logger *zap.Logger, debug bool) *UserHandler {
	return &UserHandler{
		handlerBase: handlerBase{logger: logger, debug: debug},
		userService: userService,
		sessions:    sessions,
	}
}

// RegisterRoutes registers all account routes
func (h *UserHandler) RegisterRoutes(r chi.Router, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	// Public routes
	r.Post("/signup", h.Signup)
	r.Post("/signin", h.Signin)
	r.Post("/signout", h.Signout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/auth/status", h.Status)
		r.Get("/user-data", h.UserData)
		r.With(requireAdmin).Get("/admin", h.Admin)
	})
}

// Signup handles account registration
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.log(r).Debug("Signup failed", zap.Error(err))
		h.fail(w, r, err)
		return
	}

	h.log(r).Info("User signed up", zap.String("user_id", user.ID.Hex()))
	middleware.RespondWithJSON(w, http.StatusCreated, MessageResponse{Message: "user created successfully"})
}

// Signin verifies credentials and starts a session
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log(r).Debug("Signin failed", zap.Error(err))
		h.fail(w, r, err)
		return
	}

	// A session the caller already holds is ended, never carried over
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user); err != nil {
		h.fail(w, r, err)
		return
	}

	h.log(r).Info("User signed in", zap.String("user_id", user.ID.Hex()))
	middleware.RespondWithJSON(w, http.StatusOK, SigninResponse{
		Message: "signed in successfully",
		UserID:  user.ID.Hex(),
		Role:    user.Role,
	})
}

// Signout ends the caller's session. It succeeds without one.
func (h *UserHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "signed out successfully"})
}

// Status describes the caller's session
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), rc.UserID)
	if err != nil {
		// The account behind a live session was removed
		if errors.Is(err, service.ErrUserNotFound) {
			err = service.ErrUnauthenticated
		}
		h.fail(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StatusResponse{
		Authenticated: true,
		UserID:        user.ID.Hex(),
		Role:          rc.Role,
		Name:          user.Name,
		Email:         user.Email,
	})
}

// UserData answers any signed-in caller
func (h *UserHandler) UserData(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "this is protected user data"})
}

// Admin answers admins only
func (h *UserHandler) Admin(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "welcome, admin"})
}
