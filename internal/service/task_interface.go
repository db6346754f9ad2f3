package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

// TaskRepository ограничивает любой запрос и изменение id задачи и id владельца
type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error)
	// Modify загружает задачу владельца, применяет fn и атомарно сохраняет результат;
	// при ошибке fn ничего не записывается
	Modify(ctx context.Context, id, ownerID uuid.UUID, fn func(*task.Task) error) (*task.Task, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	GetActiveWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
