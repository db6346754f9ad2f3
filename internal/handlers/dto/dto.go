package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/models/task"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Date принимает календарную дату ("2024-03-10") или время в RFC 3339
type Date struct {
	time.Time
	dateOnly bool
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("дата должна быть строкой: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time, d.dateOnly = time.Time{}, false
		return nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		d.Time, d.dateOnly = t, false
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("неверный формат даты %q", raw)
	}
	d.Time, d.dateOnly = t, true
	return nil
}

// InLocation возвращает дату без времени как полночь в loc; время с зоной не меняется
func (d Date) InLocation(loc *time.Location) time.Time {
	if !d.dateOnly || loc == nil {
		return d.Time
	}
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Deadline    Date   `json:"deadline"`
}

type UpdateTaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Priority       int    `json:"priority"`
	Deadline       Date   `json:"deadline"`
	ProgressStatus *int   `json:"progress_status"`
}

type ProgressStatusRequest struct {
	ProgressStatus *int `json:"progress_status"`
}

type TaskResponse struct {
	ID                        uuid.UUID  `json:"id"`
	Title                     string     `json:"title"`
	Description               string     `json:"description"`
	Priority                  int        `json:"priority"`
	Deadline                  time.Time  `json:"deadline"`
	ProgressStatus            int        `json:"progress_status"`
	FinishedDate              *time.Time `json:"finished_date"`
	IsArchived                bool       `json:"is_archived"`
	NotificationStatus        int        `json:"notification_status"`
	NotificationVisualization bool       `json:"notification_visualization"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 *time.Time `json:"updated_at,omitempty"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:                        t.UUID,
		Title:                     t.Title,
		Description:               t.Description,
		Priority:                  t.Priority,
		Deadline:                  t.Deadline,
		ProgressStatus:            int(t.ProgressStatus),
		FinishedDate:              t.FinishedDate,
		IsArchived:                t.IsArchived,
		NotificationStatus:        t.NotificationStatus,
		NotificationVisualization: t.NotificationVisualization,
		CreatedAt:                 t.CreatedAt,
		UpdatedAt:                 t.UpdatedAt,
	}
}
