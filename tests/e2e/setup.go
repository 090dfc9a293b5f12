//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"medslot/cmd/bootstrap/components"
	"medslot/internal/pkg/config"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

var (
	postgresContainerOnce sync.Once
	postgresTestContainer testcontainers.Container
	postgresStartErr      error

	testUser     = "test"
	testPassword = "testpass"
)

type containerInfo struct {
	Host string
	Port nat.Port
}

// SharedSuite boots the whole service against a containerized Postgres.
// The container is shared across suites; each suite gets its own database
// so parallel packages do not interfere.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	Pool   *pgxpool.Pool
	Config config.Config

	app *fx.App
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	info := startPostgres(t)
	dbCfg := createDatabase(t, info)

	s.Config = buildTestConfig(dbCfg)
	s.Router, s.app = buildApp(t, s.Config)

	pool, err := pgxpool.New(context.Background(), dbCfg.BuildDSN())
	require.NoError(t, err, "failed to open assertion pool")
	s.Pool = pool
}

func (s *SharedSuite) TearDownSuite() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	}
}

// SetupTest wipes both tables so every test starts from empty capacity.
func (s *SharedSuite) SetupTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.Pool.Exec(ctx, "TRUNCATE capacity_ledger, booking_records")
	require.NoError(s.T(), err, "failed to truncate tables")
}

func startPostgres(t *testing.T) containerInfo {
	t.Helper()

	postgresContainerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}
		postgresTestContainer, postgresStartErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	})
	require.NoError(t, postgresStartErr, "failed to start postgres container")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := postgresTestContainer.Host(ctx)
	require.NoError(t, err, "failed to resolve container host")
	port, err := postgresTestContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "failed to resolve container port")

	return containerInfo{Host: host, Port: port}
}

// createDatabase makes a fresh database on the shared container so each
// suite is isolated, and registers a drop on cleanup.
func createDatabase(t *testing.T, info containerInfo) config.DBConfig {
	t.Helper()

	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, info.Host, info.Port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "failed to open admin connection")
	defer adminPool.Close()

	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()

		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			slog.Warn("failed to open cleanup connection", "database", dbName, "error", err.Error())
			return
		}
		defer cleanupPool.Close()

		if _, err := cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	return config.DBConfig{
		Host:     info.Host,
		Port:     info.Port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
}

func buildTestConfig(dbCfg config.DBConfig) config.Config {
	cfg := config.NewTestConfig()
	cfg.Store.Driver = "postgres"
	cfg.DB = dbCfg
	return cfg
}

// buildApp assembles the service with the production modules, swapping
// only the config source. Schema creation runs in the fx OnStart hooks.
func buildApp(t *testing.T, cfg config.Config) (*gin.Engine, *fx.App) {
	t.Helper()

	var router *gin.Engine

	app := fx.New(
		fx.Provide(
			func() config.Config { return cfg },
			func() *gin.Engine { return gin.New() },
		),
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")

	return router, app
}
