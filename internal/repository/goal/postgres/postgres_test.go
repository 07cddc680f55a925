package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"goalTracker/internal/models/goal"
	"goalTracker/internal/repository/goal/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite - интеграционные тесты с настоящим PostgreSQL в контейнере
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционные тесты пропущены в режиме -short")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb", host, port.Port())

	s.storage, err = postgres.New(s.ctx, s.connString, &postgres.PoolConfig{MaxConns: 2})
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "DELETE FROM goal_buckets")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	s.NoError(s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestLoadEmpty() {
	state, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(state.Goals)
	s.Empty(state.Completed)
	s.Equal(0, state.Settings.Streak)
}

func (s *PostgresTestSuite) TestSaveLoad() {
	now := time.Now().UTC().Truncate(time.Second)
	state := goal.NewState()
	state.Goals = []goal.Goal{{ID: uuid.New(), Title: "Stretch", Priority: goal.PriorityLow, DateCreated: now, Steps: []goal.Step{}}}
	state.Completed = []goal.Goal{{ID: uuid.New(), Title: "Read", Priority: goal.PriorityHigh, IsCompleted: true, DateCreated: now, DateCompleted: &now, Steps: []goal.Step{}}}
	state.Settings = goal.Settings{Streak: 3, LastCompletionDate: &now}

	s.Require().NoError(s.storage.Save(s.ctx, state))

	// повторная запись перезаписывает наборы, а не добавляет строки
	state.Settings.Streak = 4
	s.Require().NoError(s.storage.Save(s.ctx, state))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded.Goals, 1)
	s.Equal("Stretch", loaded.Goals[0].Title)
	s.Require().Len(loaded.Completed, 1)
	s.True(loaded.Completed[0].DateCompleted.Equal(now))
	s.Equal(4, loaded.Settings.Streak)
}

func (s *PostgresTestSuite) TestCorruptBucketIgnored() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	s.Require().NoError(err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, `INSERT INTO goal_buckets (name, payload) VALUES ('goals', '{"not":"a list"}'::jsonb)`)
	s.Require().NoError(err)

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(loaded.Goals)
}
