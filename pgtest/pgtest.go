// Package pgtest hands out isolated, fully migrated postgres databases to
// repository tests.
package pgtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
)

// EnvVar enables postgres tests when set to a non-empty value.
const EnvVar = "DEADLINR_TEST_PG"

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "migrate")
}

// NewDB returns a connection pool to a unique test database. The test is
// skipped unless EnvVar is set.
func NewDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv(EnvVar) == "" {
		t.Skipf("set %s to run postgres tests", EnvVar)
	}

	ctx := context.Background()
	conf := pgtestdb.Config{
		DriverName: "pgx",
		User:       "deadlinr", // local dev pg user
		Password:   "deadlinr", // local dev pg password
		Host:       "localhost",
		Port:       "5433",
		Options:    "sslmode=disable",
	}
	gm := golangmigrator.New(migrationsDir())
	config := pgtestdb.Custom(t, conf, gm)

	pool, err := pgxpool.New(ctx, config.URL())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
	})
	return pool
}

// InsertUser adds a verified profile.
func InsertUser(t *testing.T, pool *pgxpool.Pool, id uuid.UUID, username, role string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO user_profiles (uuid, username, email, bcrypt_pwd, role, email_verified_at)
		VALUES ($1, $2, $3, 'x', $4, now())
	`, id, username, username+"@example.com", role)
	if err != nil {
		t.Fatalf("failed to insert user %s: %v", username, err)
	}
}
