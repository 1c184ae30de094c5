package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"quikmart/internal/domain"
	"quikmart/internal/middleware"
	"quikmart/internal/repository/repotest"
	"quikmart/internal/service"
	"quikmart/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

const testCookieName = "quikmart.sid"

// testAPI serves every handler over in-memory repositories and a
// miniredis-backed session store
type testAPI struct {
	t        *testing.T
	server   *httptest.Server
	users    *repotest.UserRepository
	products *repotest.ProductRepository
	carts    *repotest.CartRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	manager := session.NewManager(session.NewRedisStore(redisClient), "test-secret", session.Options{
		CookieName: testCookieName,
		TTL:        time.Hour,
	})

	api := &testAPI{
		t:        t,
		users:    repotest.NewUserRepository(),
		products: repotest.NewProductRepository(),
		carts:    repotest.NewCartRepository(),
	}

	logger := zap.NewNop()
	requireAuth := middleware.RequireAuthenticated(manager, logger)

	r := chi.NewRouter()
	r.Use(middleware.ErrorHandlingMiddleware(logger))
	NewUserHandler(service.NewUserService(api.users), manager, logger, true).
		RegisterRoutes(r, requireAuth, middleware.RequireAdmin(logger))
	NewProductHandler(service.NewProductService(api.products, api.users), logger, true).
		RegisterRoutes(r, requireAuth)
	NewCartHandler(service.NewCartService(api.carts, api.products), logger, true).
		RegisterRoutes(r, requireAuth)

	api.server = httptest.NewServer(r)
	t.Cleanup(api.server.Close)
	return api
}

// seedUser stores an account directly, hashed at the minimum cost so tests
// that only need a signed-in caller stay fast
func (a *testAPI) seedUser(email, password string, role domain.Role) *domain.User {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(a.t, err)

	user := &domain.User{
		Name:         "Test " + string(role),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(a.t, a.users.Create(context.Background(), user))
	return user
}

// apiClient is one browser: it keeps its own cookies
type apiClient struct {
	t    *testing.T
	http *http.Client
	base string
}

func (a *testAPI) newClient() *apiClient {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &apiClient{t: a.t, http: &http.Client{Jar: jar}, base: a.server.URL}
}

// signedIn seeds an account with role and returns a client holding its session
func (a *testAPI) signedIn(email string, role domain.Role) (*apiClient, *domain.User) {
	a.t.Helper()
	user := a.seedUser(email, "password1", role)
	c := a.newClient()
	resp, _ := c.do(http.MethodPost, "/signin", map[string]string{"email": email, "password": "password1"})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	return c, user
}

func (c *apiClient) do(method, path string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, raw
}

func decodeBody[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// productBody mirrors the product JSON a client receives
type productBody struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Available   bool    `json:"available"`
	Hidden      bool    `json:"hidden"`
	Seller      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"seller"`
}

type cartBody struct {
	ID    string `json:"id"`
	User  string `json:"user"`
	Items []struct {
		ProductID string       `json:"productId"`
		Product   *productBody `json:"product"`
		Quantity  int          `json:"quantity"`
		Missing   bool         `json:"missing"`
	} `json:"items"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
}

type errorBody struct {
	Error middleware.ErrorDetail `json:"error"`
}

func newProductFields(name string, price float64) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"description": name + " description",
		"price":       price,
		"image":       "https://img.example.com/" + name + ".png",
		"category":    "household",
	}
}

// createProduct lists a product as the client's account and returns it
func (c *apiClient) createProduct(name string, price float64) productBody {
	c.t.Helper()
	resp, raw := c.do(http.MethodPost, "/products", newProductFields(name, price))
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(raw))
	return decodeBody[productBody](c.t, raw)
}
