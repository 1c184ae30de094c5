package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"quikmart/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSession    = errors.New("no session cookie")
	ErrInvalidToken = errors.New("invalid session token")
)

// Options configures the session cookie
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// cookieClaims is the payload of the signed cookie value
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager issues, resolves and destroys sessions
type Manager struct {
	store  Store
	secret []byte
	opts   Options
	now    func() time.Time
}

// NewManager creates a session manager signing cookies with secret
func NewManager(store Store, secret string, opts Options) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// Start creates a session for user and writes the session cookie
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, user *domain.User) (*domain.Session, error) {
	now := m.now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID.Hex(),
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}

	token, err := m.sign(sess)
	if err != nil {
		return nil, err
	}

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	http.SetCookie(w, m.cookie(token, int(m.opts.TTL.Seconds())))
	return sess, nil
}

// Load resolves the session named by the request cookie. It fails when the
// cookie is missing, tampered with, or refers to an expired or unknown session.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	id, err := m.parse(cookie.Value)
	if err != nil {
		return nil, err
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.Expired(m.now()) {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Destroy removes the server-side session, if any, and expires the cookie.
// Calling it without a valid session is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer http.SetCookie(w, m.cookie("", -1))

	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	id, err := m.parse(cookie.Value)
	if err != nil {
		return nil
	}

	return m.store.Delete(ctx, id)
}

func (m *Manager) sign(sess *domain.Session) (string, error) {
	claims := &cookieClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(value string) (string, error) {
	claims := &cookieClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
