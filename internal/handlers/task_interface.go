package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, ownerID uuid.UUID, in service.TaskInput) (uuid.UUID, error)
	GetTask(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, id, ownerID uuid.UUID, in service.UpdateTaskInput) error
	DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error
	ArchiveTask(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	PatchProgressStatus(ctx context.Context, id, ownerID uuid.UUID, status task.ProgressStatus) error
	MarkNotificationSeen(ctx context.Context, id, ownerID uuid.UUID) error
}

var _ TaskService = (*service.TaskService)(nil)
