package middleware

import (
	"context"
	"errors"
	"net/http"

	"quikmart/internal/domain"
	"quikmart/internal/service"
	"quikmart/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type contextKey string

const requestContextKey contextKey = "request_context"

// SessionLoader resolves the session a request carries
type SessionLoader interface {
	Load(ctx context.Context, r *http.Request) (*domain.Session, error)
}

// RequireAuthenticated rejects requests without a live session and stores
// the caller's RequestContext for the handlers behind it
func RequireAuthenticated(sessions SessionLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), r)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) ||
					errors.Is(err, session.ErrInvalidToken) ||
					errors.Is(err, session.ErrSessionNotFound) {
					logger.Debug("Session rejected", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
					return
				}
				logger.Error("Failed to load session", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			userID, err := primitive.ObjectIDFromHex(sess.UserID)
			if err != nil {
				logger.Error("Session carries malformed user id", zap.String("session_id", sess.ID))
				RespondWithError(w, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
				return
			}

			rc := domain.RequestContext{UserID: userID, Role: sess.Role}
			logger.Debug("User authenticated",
				zap.String("user_id", sess.UserID),
				zap.String("role", string(sess.Role)),
			)

			next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
		})
	}
}

// WithRequestContext stores rc in ctx
func WithRequestContext(ctx context.Context, rc domain.RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// GetRequestContext extracts the authenticated caller from ctx
func GetRequestContext(ctx context.Context) (domain.RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(domain.RequestContext)
	return rc, ok
}
