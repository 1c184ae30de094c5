package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quikmart/internal/domain"
	"quikmart/internal/repository"
	"quikmart/internal/repository/repotest"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fastUserService hashes at the minimum cost so property runs stay quick
func fastUserService(repo repository.UserRepository) *userService {
	return newUserService(repo, bcrypt.MinCost)
}

// Signing up twice with the same email succeeds exactly once
func TestProperty_SignupSucceedsOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("second signup with the same email is a duplicate", prop.ForAll(
		func(email string, password string, name string) bool {
			svc := fastUserService(repotest.NewUserRepository())
			ctx := context.Background()

			if _, err := svc.Signup(ctx, name, email, password); err != nil {
				t.Logf("FAIL: first signup returned %v", err)
				return false
			}

			_, err := svc.Signup(ctx, name, strings.ToUpper(email), password)
			if !errors.Is(err, ErrDuplicateUser) {
				t.Logf("FAIL: second signup returned %v", err)
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Signin compares against the bcrypt hash only; the stored hash itself is
// not accepted as a password
func TestProperty_SigninUsesHashOnly(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only the original password signs in", prop.ForAll(
		func(email string, password string, wrong string) bool {
			repo := repotest.NewUserRepository()
			svc := fastUserService(repo)
			ctx := context.Background()

			user, err := svc.Signup(ctx, "Shopper", email, password)
			if err != nil {
				t.Logf("FAIL: signup returned %v", err)
				return false
			}
			if user.PasswordHash == password {
				t.Logf("FAIL: password stored as plaintext")
				return false
			}

			if _, err := svc.Signin(ctx, email, password); err != nil {
				t.Logf("FAIL: correct password rejected: %v", err)
				return false
			}
			if _, err := svc.Signin(ctx, email, user.PasswordHash); !errors.Is(err, ErrInvalidCredentials) {
				t.Logf("FAIL: stored hash accepted as password")
				return false
			}
			if wrong != password {
				if _, err := svc.Signin(ctx, email, wrong); !errors.Is(err, ErrInvalidCredentials) {
					t.Logf("FAIL: wrong password accepted")
					return false
				}
			}
			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Za-z0-9]{1,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSignupRejectsInvalidEmail(t *testing.T) {
	svc := fastUserService(repotest.NewUserRepository())

	for _, email := range []string{"", "not-an-email", "a@", "@b.com"} {
		_, err := svc.Signup(context.Background(), "Shopper", email, "secret123")
		assert.ErrorIs(t, err, ErrInvalidEmailFormat, email)
	}
}

func TestSignupRequiresNameAndPassword(t *testing.T) {
	svc := fastUserService(repotest.NewUserRepository())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "  ", "a@example.com", "secret123")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Signup(ctx, "Shopper", "a@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignupRejectsPasswordBcryptCannotHash(t *testing.T) {
	users := repotest.NewUserRepository()
	svc := fastUserService(users)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Shopper", "long@example.com", strings.Repeat("p", MaxPasswordBytes+8))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.FindByEmail(ctx, "long@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.Signup(ctx, "Shopper", "long@example.com", strings.Repeat("p", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestSignupStoresDefaultsAndFullCostHash(t *testing.T) {
	repo := repotest.NewUserRepository()
	svc := NewUserService(repo)

	user, err := svc.Signup(context.Background(), "Shopper", " Shopper@Example.com ", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "shopper@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)

	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

// racingUserRepository misses the duplicate in the pre-check, as a
// concurrent signup would, leaving the unique index to catch it
type racingUserRepository struct {
	*repotest.UserRepository
}

func (r racingUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func TestSignupMapsUniqueIndexViolation(t *testing.T) {
	repo := racingUserRepository{repotest.NewUserRepository()}
	svc := fastUserService(repo)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "First", "race@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Second", "race@example.com", "secret123")
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSigninUnknownEmail(t *testing.T) {
	svc := fastUserService(repotest.NewUserRepository())

	_, err := svc.Signin(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPromoteGrantsAdmin(t *testing.T) {
	repo := repotest.NewUserRepository()
	svc := fastUserService(repo)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Boss", "boss@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Promote(ctx, "BOSS@example.com"))

	promoted, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	assert.ErrorIs(t, svc.Promote(ctx, "ghost@example.com"), ErrUserNotFound)
}
