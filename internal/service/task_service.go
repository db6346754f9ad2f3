package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/clock"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/notification"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

const (
	resourceTask = "задача"
	resourceUser = "пользователь"
)

type TaskInput struct {
	Title       string
	Description string
	Priority    int
	Deadline    time.Time
}

type UpdateTaskInput struct {
	TaskInput
	ProgressStatus task.ProgressStatus
}

type TaskService struct {
	tasks      TaskRepository
	users      UserRepository
	calculator notification.Calculator
	clock      clock.Clock
}

func NewTaskService(tasks TaskRepository, users UserRepository, calculator notification.Calculator, clk clock.Clock) *TaskService {
	if clk == nil {
		clk = clock.System{}
	}
	return &TaskService{
		tasks:      tasks,
		users:      users,
		calculator: calculator,
		clock:      clk,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// CreateTask сохраняет новую задачу ownerID в статусе Pending и возвращает её id
func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, in TaskInput) (uuid.UUID, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Пользователь не найден", zap.String("owner_id", ownerID.String()))
			return uuid.Nil, NewNotFound(resourceUser, ownerID.String())
		}
		logger.Error("Service: Ошибка получения пользователя", err, zap.String("owner_id", ownerID.String()))
		return uuid.Nil, NewInternal(err)
	}

	now := s.clock.Now()
	newTask := &task.Task{
		UUID:           uuid.New(),
		UserID:         ownerID,
		Title:          in.Title,
		Description:    in.Description,
		Priority:       in.Priority,
		Deadline:       in.Deadline,
		ProgressStatus: task.StatusPending,
		IsArchived:     false,
		CreatedAt:      now,
	}
	s.calculator.Apply(newTask, now)

	if err := s.tasks.Create(ctx, newTask); err != nil {
		logger.Error("Service: Ошибка создания задачи", err, zap.String("owner_id", ownerID.String()))
		return uuid.Nil, NewInternal(err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.UUID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Int("notification_status", newTask.NotificationStatus))
	return newTask.UUID, nil
}

func (s *TaskService) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, s.storageError("get_task", id, ownerID, err)
	}
	return t, nil
}

// DeleteTask удаляет задачу навсегда
func (s *TaskService) DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error {
	removed, err := s.tasks.Delete(ctx, id, ownerID)
	if err != nil {
		return s.storageError("delete_task", id, ownerID, err)
	}
	if !removed {
		return s.storageError("delete_task", id, ownerID, rep.ErrNotFound)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()), zap.String("owner_id", ownerID.String()))
	return nil
}

// ArchiveTask переключает IsArchived и возвращает новое значение
func (s *TaskService) ArchiveTask(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	updated, err := s.tasks.Modify(ctx, id, ownerID, func(t *task.Task) error {
		t.IsArchived = !t.IsArchived
		return nil
	})
	if err != nil {
		return false, s.storageError("archive_task", id, ownerID, err)
	}

	logger.Info("Service: Статус архива изменён",
		zap.String("task_id", id.String()),
		zap.Bool("is_archived", updated.IsArchived))
	return updated.IsArchived, nil
}

// UpdateTask заменяет все изменяемые поля. Архив следует за статусом прогресса,
// а уже проставленная FinishedDate сохраняется при любом новом статусе
func (s *TaskService) UpdateTask(ctx context.Context, id, ownerID uuid.UUID, in UpdateTaskInput) error {
	now := s.clock.Now()

	_, err := s.tasks.Modify(ctx, id, ownerID, func(t *task.Task) error {
		if !in.ProgressStatus.Valid() {
			return invalidProgressStatus(in.ProgressStatus)
		}

		t.Title = in.Title
		t.Description = in.Description
		t.Priority = in.Priority
		t.Deadline = in.Deadline
		t.ProgressStatus = in.ProgressStatus
		t.IsArchived = in.ProgressStatus == task.StatusDone
		s.calculator.Apply(t, now)

		if t.FinishedDate == nil && in.ProgressStatus == task.StatusDone {
			finished := now
			t.FinishedDate = &finished
		}
		return nil
	})
	if err != nil {
		return s.storageError("update_task", id, ownerID, err)
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id.String()), zap.String("owner_id", ownerID.String()))
	return nil
}

// PatchProgressStatus меняет только статус прогресса. Переход в Done всегда
// перезаписывает FinishedDate, выход из Done всегда её очищает
func (s *TaskService) PatchProgressStatus(ctx context.Context, id, ownerID uuid.UUID, status task.ProgressStatus) error {
	now := s.clock.Now()

	_, err := s.tasks.Modify(ctx, id, ownerID, func(t *task.Task) error {
		if !status.Valid() {
			return invalidProgressStatus(status)
		}

		t.ProgressStatus = status
		if status == task.StatusDone {
			finished := now
			t.FinishedDate = &finished
		} else {
			t.FinishedDate = nil
		}
		return nil
	})
	if err != nil {
		return s.storageError("patch_progress_status", id, ownerID, err)
	}

	logger.Info("Service: Статус прогресса обновлён",
		zap.String("task_id", id.String()),
		zap.Stringer("progress_status", status))
	return nil
}

// MarkNotificationSeen отмечает уведомление просмотренным, NotificationStatus не меняется
func (s *TaskService) MarkNotificationSeen(ctx context.Context, id, ownerID uuid.UUID) error {
	_, err := s.tasks.Modify(ctx, id, ownerID, func(t *task.Task) error {
		t.NotificationVisualization = true
		return nil
	})
	if err != nil {
		return s.storageError("patch_notification_seen", id, ownerID, err)
	}
	return nil
}

// RefreshNotifications пересчитывает уведомления на одной странице активных задач,
// у которых сохранённое число дней устарело. Возвращает, сколько задач прочитано
// и сколько перезаписано
func (s *TaskService) RefreshNotifications(ctx context.Context, page, limit int) (int, int, error) {
	tasks, err := s.tasks.GetActiveWithLimit(ctx, page, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("получение активных задач: %w", err)
	}

	now := s.clock.Now()
	refreshed := 0
	for _, t := range tasks {
		if s.calculator.Compute(t.Deadline, now).Status == t.NotificationStatus {
			continue
		}

		_, err := s.tasks.Modify(ctx, t.UUID, t.UserID, func(current *task.Task) error {
			s.calculator.Apply(current, now)
			return nil
		})
		if err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				// задачу удалили между чтением и обновлением
				continue
			}
			logger.Warn("Service: Ошибка обновления уведомления", zap.String("task_id", t.UUID.String()), zap.Error(err))
			continue
		}
		refreshed++
	}

	return len(tasks), refreshed, nil
}

func invalidProgressStatus(status task.ProgressStatus) *BusinessError {
	return NewInvalidArgument("progress_status", fmt.Sprintf("допустимы 0, 1, 2, получено %d", int(status)))
}

// storageError сводит ошибки хранилища к NOT_FOUND или INTERNAL_ERROR, а бизнес-ошибки
// из колбэков Modify пропускает как есть
func (s *TaskService) storageError(operation string, id, ownerID uuid.UUID, err error) error {
	var businessErr *BusinessError
	if errors.As(err, &businessErr) {
		logger.Info("Service: Отклонено бизнес-правилом",
			zap.String("operation", operation),
			zap.String("task_id", id.String()),
			zap.String("error_code", businessErr.Code))
		return businessErr
	}

	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: Задача не найдена",
			zap.String("operation", operation),
			zap.String("task_id", id.String()),
			zap.String("owner_id", ownerID.String()))
		return NewNotFound(resourceTask, id.String())
	}

	logger.Error("Service: Ошибка хранилища", err,
		zap.String("operation", operation),
		zap.String("task_id", id.String()),
		zap.String("owner_id", ownerID.String()))
	return NewInternal(err)
}
