package repository

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"quikmart/internal/database"
	"quikmart/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var testClient *mongo.Client

func setupTestDB(ctx context.Context) (*mongodb.MongoDBContainer, error) {
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return container, err
	}

	testClient, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return container, err
	}

	return container, nil
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := setupTestDB(ctx)
	if err != nil {
		log.Fatalf("could not start mongo container: %v", err)
	}

	code := m.Run()

	if testClient != nil {
		_ = testClient.Disconnect(ctx)
	}
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Fatalf("could not teardown mongo container: %v", err)
	}
	os.Exit(code)
}

// testDatabase returns a fresh database with indexes in place, or skips the
// test when no container is running.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	if testClient == nil {
		t.Skip("mongo integration tests skipped in short mode")
	}

	db := testClient.Database("repo_" + primitive.NewObjectID().Hex())
	require.NoError(t, database.EnsureIndexes(context.Background(), db, zap.NewNop()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	return db
}

func newUser(email string) *domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.User{
		Name:         "Test User",
		Email:        domain.NormalizeEmail(email),
		PasswordHash: "$2a$12$placeholderplaceholderplaceholderplaceholderplace",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Stored users keep only the bcrypt hash of their password
func TestProperty_StoredPasswordsAreHashes(t *testing.T) {
	db := testDatabase(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 10
	properties := gopter.NewProperties(params)

	properties.Property("password is stored as a bcrypt hash and never as plaintext", prop.ForAll(
		func(email string, password string) bool {
			_, _ = db.Collection(database.UsersCollection).DeleteMany(ctx, bson.M{"email": email})

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			user := newUser(email)
			user.PasswordHash = string(hash)
			if err := repo.Create(ctx, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			stored, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if stored.PasswordHash == password {
				t.Logf("Password was stored as plaintext")
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) == nil
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(testDatabase(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("dup@example.com")))

	err := repo.Create(ctx, newUser("dup@example.com"))
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserFindByEmailIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(testDatabase(t))
	ctx := context.Background()

	user := newUser("Mixed@Example.com")
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "  MIXED@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserFindByIDs(t *testing.T) {
	repo := NewUserRepository(testDatabase(t))
	ctx := context.Background()

	a, b := newUser("a@example.com"), newUser("b@example.com")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	users, err := repo.FindByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[a.ID].Email)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserUpdateRole(t *testing.T) {
	repo := NewUserRepository(testDatabase(t))
	ctx := context.Background()

	user := newUser("boss@example.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdateRole(ctx, "BOSS@example.com", domain.RoleAdmin))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.IsAdmin())

	assert.ErrorIs(t, repo.UpdateRole(ctx, "ghost@example.com", domain.RoleAdmin), ErrUserNotFound)
}
