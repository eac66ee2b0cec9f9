package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/vncsmyrnk/authd/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/authd/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/authd/internal/adapters/signer"
	"github.com/vncsmyrnk/authd/internal/core/services"
)

const (
	testJWTSecret  = "test-secret"
	testCookieName = "refresh_token"
	testRefreshTTL = 7 * 24 * time.Hour
	testAccessTTL  = 15 * time.Minute
	testCutoffMins = 30
)

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	tokenRepo := repo.NewTokenRepository(db, testRefreshTTL)
	userRepo := repo.NewUserRepository(db)
	jwtSigner := signer.NewJWTSigner([]byte(testJWTSecret), testAccessTTL)
	authSvc := services.NewAuthService(userRepo, tokenRepo, jwtSigner, testCutoffMins)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authHandler := handler.NewAuthHandler(authSvc, testCookieName, false, logger)
	server := httptest.NewServer(handler.NewHandler(authHandler, jwtSigner))

	return &TestApp{
		DB:          db,
		Server:      server,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()
	app.Server.Close()
	require.NoError(t, app.DB.Close())
	require.NoError(t, app.DBContainer.Terminate(context.Background()))
}

func createUser(t *testing.T, db *sql.DB, email, password string) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	userID := uuid.New()
	_, err = db.Exec(
		"INSERT INTO users (id, email, username, password_hash) VALUES ($1, $2, $3, $4)",
		userID, email, strings.Split(email, "@")[0], string(hash),
	)
	require.NoError(t, err)
	return userID
}

func seedRefreshToken(t *testing.T, db *sql.DB, userID uuid.UUID, value string, expiresAt time.Time) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		userID, value, expiresAt,
	)
	require.NoError(t, err)
}

func activeTokenCount(t *testing.T, db *sql.DB, userID uuid.UUID) int {
	t.Helper()
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1 AND NOT is_blacklisted",
		userID,
	).Scan(&count)
	require.NoError(t, err)
	return count
}

func activeTokenValue(t *testing.T, db *sql.DB, userID uuid.UUID) string {
	t.Helper()
	var value string
	err := db.QueryRow(
		"SELECT token FROM refresh_tokens WHERE user_id = $1 AND NOT is_blacklisted",
		userID,
	).Scan(&value)
	require.NoError(t, err)
	return value
}
