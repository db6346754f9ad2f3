package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	// пояс, в котором понимаются дедлайны без времени
	location *time.Location
}

func NewTaskHandler(taskService TaskService, location *time.Location) *TaskHandler {
	if location == nil {
		location = time.UTC
	}
	return &TaskHandler{
		TaskService: taskService,
		location:    location,
	}
}

// Routes регистрирует маршруты задач; authenticate должен положить id владельца в контекст
func (s *TaskHandler) Routes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Get("/health", s.HealthCheck)

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", s.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", s.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", s.DeleteTaskByID) // DELETE /tasks/{id}

			r.Patch("/archive", s.ArchiveTask)                      // PATCH /tasks/{id}/archive
			r.Patch("/progress-status", s.PatchProgressStatus)      // PATCH /tasks/{id}/progress-status
			r.Patch("/notification-status", s.PatchNotificationSeen) // PATCH /tasks/{id}/notification-status
		})
	})
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check не пройден", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithJSON(w, http.StatusUnsupportedMediaType,
			toPayload("error", service.CodeInvalidArgument),
			toPayload("message", "Content-Type должен быть application/json"))
		return
	}

	var request dto.CreateTaskRequest
	if !decodeBody(w, r, &request) {
		return
	}

	if err := validateTaskFields(request.Title, request.Deadline); err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	id, err := s.TaskService.CreateTask(r.Context(), ownerID, service.TaskInput{
		Title:       request.Title,
		Description: request.Description,
		Priority:    request.Priority,
		Deadline:    request.Deadline.InLocation(s.location),
	})
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Новая задача успешно создана"),
		toPayload("id", id))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := s.ownerAndTask(w, r)
	if !ok {
		return
	}

	t, err := s.TaskService.GetTask(r.Context(), id, ownerID)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(t))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	ownerID, id, ok := s.ownedTask(w, r, "update_task")
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeBody(w, r, &request) {
		return
	}

	if err := validateTaskFields(request.Title, request.Deadline); err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}
	if request.ProgressStatus == nil {
		handleServiceError(w, r, service.NewInvalidArgument("progress_status", "обязательное поле"), "update_task")
		return
	}

	err := s.TaskService.UpdateTask(r.Context(), id, ownerID, service.UpdateTaskInput{
		TaskInput: service.TaskInput{
			Title:       request.Title,
			Description: request.Description,
			Priority:    request.Priority,
			Deadline:    request.Deadline.InLocation(s.location),
		},
		ProgressStatus: task.ProgressStatus(*request.ProgressStatus),
	})
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithMessage(w, http.StatusOK, "Задача успешно обновлена")
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := s.ownerAndTask(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id, ownerID); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	responseWithMessage(w, http.StatusOK, "Задача успешно удалена")
}

func (s *TaskHandler) ArchiveTask(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := s.ownerAndTask(w, r)
	if !ok {
		return
	}

	archived, err := s.TaskService.ArchiveTask(r.Context(), id, ownerID)
	if err != nil {
		handleServiceError(w, r, err, "archive_task")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", archived),
		toPayload("message", "Статус архива задачи успешно обновлён"))
}

func (s *TaskHandler) PatchProgressStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := s.ownedTask(w, r, "patch_progress_status")
	if !ok {
		return
	}

	var request dto.ProgressStatusRequest
	if !decodeBody(w, r, &request) {
		return
	}
	if request.ProgressStatus == nil {
		handleServiceError(w, r, service.NewInvalidArgument("progress_status", "обязательное поле"), "patch_progress_status")
		return
	}

	err := s.TaskService.PatchProgressStatus(r.Context(), id, ownerID, task.ProgressStatus(*request.ProgressStatus))
	if err != nil {
		handleServiceError(w, r, err, "patch_progress_status")
		return
	}

	responseWithMessage(w, http.StatusOK, "Статус прогресса задачи успешно обновлён")
}

func (s *TaskHandler) PatchNotificationSeen(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := s.ownerAndTask(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.MarkNotificationSeen(r.Context(), id, ownerID); err != nil {
		handleServiceError(w, r, err, "patch_notification_seen")
		return
	}

	responseWithMessage(w, http.StatusOK, "Статус просмотра уведомления успешно обновлён")
}

func (s *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		handleServiceError(w, r, service.NewUnauthorized(), "resolve_owner")
		return uuid.Nil, false
	}
	return ownerID, true
}

// ownerAndTask отвечает NOT_FOUND на кривой id: такой задачи у владельца быть не может
func (s *TaskHandler) ownerAndTask(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))
		handleServiceError(w, r, service.NewNotFound("задача", idParam), "parse_task_id")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, id, true
}

// ownedTask проверяет владение до разбора тела: чужая или несуществующая задача
// даёт 404 раньше любой ошибки валидации
func (s *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request, operation string) (uuid.UUID, uuid.UUID, bool) {
	ownerID, id, ok := s.ownerAndTask(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	if _, err := s.TaskService.GetTask(r.Context(), id, ownerID); err != nil {
		handleServiceError(w, r, err, operation)
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		handleServiceError(w, r, service.NewInvalidArgument("body", "неверное тело запроса"), "decode_body")
		return false
	}
	return true
}

func validateTaskFields(title string, deadline dto.Date) error {
	if strings.TrimSpace(title) == "" {
		return service.NewInvalidArgument("title", "название не может быть пустым")
	}
	if deadline.IsZero() {
		return service.NewInvalidArgument("deadline", "дедлайн должен быть задан")
	}
	return nil
}
