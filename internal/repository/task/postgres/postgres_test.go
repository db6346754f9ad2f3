package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/repository/task/postgres"
	userpg "taskManager/internal/repository/user/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	tasks     *postgres.Storage
	users     *userpg.Storage
	ctx       context.Context
	owner     *user.User
}

// SetupSuite запускается один раз перед всеми тестами
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
	if err != nil {
		s.T().Skipf("PostgreSQL контейнер недоступен: %v", err)
	}
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)

	port, err := container.MappedPort(s.ctx, "5432")
	s.Require().NoError(err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.Require().NoError(repository.Migrate(connString))

	pool, err := pgxpool.New(s.ctx, connString)
	s.Require().NoError(err)
	s.pool = pool
	s.tasks = postgres.New(pool)
	s.users = userpg.New(pool)
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы и создаёт владельца перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE tasks, users CASCADE")
	s.Require().NoError(err)

	s.owner = s.createUser()
}

func (s *PostgresTestSuite) createUser() *user.User {
	id := uuid.New()
	u := &user.User{ID: id, Name: "user", Email: id.String() + "@example.com"}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *PostgresTestSuite) newTask(ownerID uuid.UUID, title string) *task.Task {
	return &task.Task{
		UUID:               uuid.New(),
		UserID:             ownerID,
		Title:              title,
		Description:        "описание",
		Priority:           1,
		Deadline:           time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		ProgressStatus:     task.StatusPending,
		NotificationStatus: 2,
		CreatedAt:          time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresTestSuite) TestUserRoundTrip() {
	got, err := s.users.GetByID(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(s.owner.Email, got.Email)
	s.False(got.CreatedAt.IsZero())

	_, err = s.users.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestCreateAndGet() {
	t := s.newTask(s.owner.ID, "Первая задача")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	got, err := s.tasks.GetByID(s.ctx, t.UUID, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(t.Title, got.Title)
	s.Equal(t.Priority, got.Priority)
	s.Equal(task.StatusPending, got.ProgressStatus)
	s.Equal(2, got.NotificationStatus)
	s.True(t.Deadline.Equal(got.Deadline))
	s.Nil(got.FinishedDate)
	s.Nil(got.UpdatedAt)
}

func (s *PostgresTestSuite) TestGetByID_ForeignOwner() {
	t := s.newTask(s.owner.ID, "чужая")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	stranger := s.createUser()
	_, err := s.tasks.GetByID(s.ctx, t.UUID, stranger.ID)
	s.ErrorIs(err, repository.ErrNotFound)

	_, err = s.tasks.Modify(s.ctx, t.UUID, stranger.ID, func(*task.Task) error { return nil })
	s.ErrorIs(err, repository.ErrNotFound)

	removed, err := s.tasks.Delete(s.ctx, t.UUID, stranger.ID)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *PostgresTestSuite) TestModify() {
	t := s.newTask(s.owner.ID, "до")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	finished := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	updated, err := s.tasks.Modify(s.ctx, t.UUID, s.owner.ID, func(cur *task.Task) error {
		cur.Title = "после"
		cur.ProgressStatus = task.StatusDone
		cur.FinishedDate = &finished
		cur.IsArchived = true
		return nil
	})
	s.Require().NoError(err)
	s.Equal("после", updated.Title)
	s.NotNil(updated.UpdatedAt)

	got, err := s.tasks.GetByID(s.ctx, t.UUID, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(task.StatusDone, got.ProgressStatus)
	s.True(got.IsArchived)
	s.Require().NotNil(got.FinishedDate)
	s.True(finished.Equal(*got.FinishedDate))
}

func (s *PostgresTestSuite) TestModify_ErrorRollsBack() {
	t := s.newTask(s.owner.ID, "неизменная")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	boom := errors.New("отказ")
	_, err := s.tasks.Modify(s.ctx, t.UUID, s.owner.ID, func(cur *task.Task) error {
		cur.Title = "изменённая"
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.tasks.GetByID(s.ctx, t.UUID, s.owner.ID)
	s.Require().NoError(err)
	s.Equal("неизменная", got.Title)
}

func (s *PostgresTestSuite) TestModify_Concurrent() {
	t := s.newTask(s.owner.ID, "счётчик")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.tasks.Modify(s.ctx, t.UUID, s.owner.ID, func(cur *task.Task) error {
				cur.Priority++
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.tasks.GetByID(s.ctx, t.UUID, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(t.Priority+workers, got.Priority)
}

func (s *PostgresTestSuite) TestDelete() {
	t := s.newTask(s.owner.ID, "удаляемая")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	removed, err := s.tasks.Delete(s.ctx, t.UUID, s.owner.ID)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.tasks.Delete(s.ctx, t.UUID, s.owner.ID)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *PostgresTestSuite) TestGetActiveWithLimit() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		t := s.newTask(s.owner.ID, fmt.Sprintf("задача %d", i))
		t.CreatedAt = base.Add(time.Duration(i) * time.Second)
		t.IsArchived = i == 2
		s.Require().NoError(s.tasks.Create(s.ctx, t))
	}

	first, err := s.tasks.GetActiveWithLimit(s.ctx, 1, 3)
	s.Require().NoError(err)
	s.Require().Len(first, 3)
	s.Equal("задача 0", first[0].Title)
	s.Equal("задача 3", first[2].Title)

	second, err := s.tasks.GetActiveWithLimit(s.ctx, 2, 3)
	s.Require().NoError(err)
	s.Require().Len(second, 1)
	s.Equal("задача 4", second[0].Title)
}

func (s *PostgresTestSuite) TestUserDeleteCascades() {
	t := s.newTask(s.owner.ID, "каскад")
	s.Require().NoError(s.tasks.Create(s.ctx, t))

	s.Require().NoError(s.users.Delete(s.ctx, s.owner.ID))

	_, err := s.tasks.GetByID(s.ctx, t.UUID, s.owner.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	s.NoError(s.tasks.HealthCheck(s.ctx))
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}
