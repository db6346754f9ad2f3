package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const taskColumns = `id,
				user_id,
				title,
				description,
				priority,
				deadline,
				progress_status,
				finished_date,
				is_archived,
				notification_status,
				notification_visualization,
				created_at,
				updated_at`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, user_id, title, description, priority, deadline, progress_status,
				 finished_date, is_archived, notification_status, notification_visualization, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				RETURNING created_at`

	createdAt := taskToCreate.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Priority,
		taskToCreate.Deadline,
		int(taskToCreate.ProgressStatus),
		taskToCreate.FinishedDate,
		taskToCreate.IsArchived,
		taskToCreate.NotificationStatus,
		taskToCreate.NotificationVisualization,
		createdAt,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1 AND user_id = $2`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start)
	return t, nil
}

// Modify читает строку с блокировкой FOR UPDATE, применяет fn и записывает результат
// в одной транзакции; ошибка fn откатывает транзакцию
func (s *Storage) Modify(ctx context.Context, id, ownerID uuid.UUID, fn func(*task.Task) error) (*task.Task, error) {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return nil, fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	selectQuery := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE id = $1 AND user_id = $2
				FOR UPDATE`

	current, err := scanTask(tx.QueryRow(ctx, selectQuery, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу для изменения", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	updateQuery := `UPDATE tasks
			SET title = $1,
				description = $2,
				priority = $3,
				deadline = $4,
				progress_status = $5,
				finished_date = $6,
				is_archived = $7,
				notification_status = $8,
				notification_visualization = $9,
				updated_at = NOW()
			WHERE id = $10 AND user_id = $11
			RETURNING updated_at`

	err = tx.QueryRow(ctx, updateQuery,
		current.Title,
		current.Description,
		current.Priority,
		current.Deadline,
		int(current.ProgressStatus),
		current.FinishedDate,
		current.IsArchived,
		current.NotificationStatus,
		current.NotificationVisualization,
		id,
		ownerID,
	).Scan(&current.UpdatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}

	// строка могла прийти с другим id/владельцем из fn, в базе они не менялись
	current.UUID = id
	current.UserID = ownerID

	warnIfSlow(start)
	return current, nil
}

// полное удаление из БД
func (s *Storage) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return false, fmt.Errorf("полное удаление: %w", err)
	}

	warnIfSlow(start)
	return tag.RowsAffected() > 0, nil
}

// неархивные задачи всех владельцев, для фоновой проверки
func (s *Storage) GetActiveWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	start := time.Now()
	offset := (page - 1) * limit

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE is_archived = FALSE
				ORDER BY created_at, id
				LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start)
	return tasks, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var progress int

	err := row.Scan(
		&t.UUID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Deadline,
		&progress,
		&t.FinishedDate,
		&t.IsArchived,
		&t.NotificationStatus,
		&t.NotificationVisualization,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ProgressStatus = task.ProgressStatus(progress)
	return t, nil
}

func warnIfSlow(start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", elapsed))
	}
}
