// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestJWTSecret signs tokens in tests
const TestJWTSecret = "test-secret-do-not-use-in-production"

var fixtureSeq atomic.Int64

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")
	return db
}

// TestConfig returns a configuration suitable for tests
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:        ":memory:",
		Port:               "8080",
		GoEnv:              "test",
		JWTSecret:          TestJWTSecret,
		JWTIssuer:          "kalamitra-api-test",
		JWTAudience:        "kalamitra-test-clients",
		TokenTTL:           time.Hour,
		StorageBackend:     config.StorageLocal,
		UploadDir:          os.TempDir(),
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "info",
	}
}

// CreateUser inserts a user fixture
func CreateUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("user%d@example.com", fixtureSeq.Add(1)),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateArtisan inserts an artisan fixture
func CreateArtisan(t *testing.T, db *gorm.DB, name string) models.Artisan {
	t.Helper()

	artisan := models.Artisan{
		Name:         name,
		Email:        fmt.Sprintf("artisan%d@example.com", fixtureSeq.Add(1)),
		PasswordHash: "not-a-real-hash",
		CraftType:    "pottery",
		Location:     "Jaipur",
	}
	require.NoError(t, db.Create(&artisan).Error)
	return artisan
}

// CreateProduct inserts a product fixture owned by artisanID
func CreateProduct(t *testing.T, db *gorm.DB, artisanID uint, name string, price float64) models.Product {
	t.Helper()

	product := models.Product{Name: name, Price: price, Category: "decor", ArtisanID: artisanID}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// UserPrincipal returns the principal for a user fixture
func UserPrincipal(u models.User) models.Principal {
	return models.Principal{ID: u.ID, Role: models.RoleUser}
}

// ArtisanPrincipal returns the principal for an artisan fixture
func ArtisanPrincipal(a models.Artisan) models.Principal {
	return models.Principal{ID: a.ID, Role: models.RoleArtisan}
}
