package inmemory

import (
	"context"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
		now:     time.Now,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = s.now()
	}

	s.storage[taskToCreate.UUID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

// GetByID отдаёт копию задачи, только если она принадлежит ownerID
func (s *TaskStorage) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok || taskToGet.UserID != ownerID {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// Modify применяет fn к копии под блокировкой записи; при ошибке fn ничего не сохраняется
func (s *TaskStorage) Modify(ctx context.Context, id, ownerID uuid.UUID, fn func(*task.Task) error) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != ownerID {
		return nil, repo.ErrNotFound
	}

	updated := existing.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}

	now := s.now()
	updated.UpdatedAt = &now
	// id и владелец не меняются
	updated.UUID = existing.UUID
	updated.UserID = existing.UserID

	s.storage[id] = updated
	return updated.Clone(), nil
}

// Delete удаляет задачу навсегда и сообщает, была ли строка удалена
func (s *TaskStorage) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != ownerID {
		return false, nil
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return true, nil
}

// GetActiveWithLimit отдаёт неархивные задачи всех владельцев постранично
func (s *TaskStorage) GetActiveWithLimit(ctx context.Context, page, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	offset := (page - 1) * limit
	skipped := 0

	for _, id := range s.ids {
		if len(res) >= limit {
			break
		}

		taskToGet := s.storage[id]
		if taskToGet.IsArchived {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}

		res = append(res, taskToGet.Clone())
	}

	return res, nil
}
