package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID        uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Priority    int       `json:"priority" db:"priority"`
	Deadline    time.Time `json:"deadline" db:"deadline"`

	ProgressStatus ProgressStatus `json:"progress_status" db:"progress_status"`
	FinishedDate   *time.Time     `json:"finished_date,omitempty" db:"finished_date"`
	IsArchived     bool           `json:"is_archived" db:"is_archived"`

	// NotificationStatus - число дней от последнего пересчёта до Deadline со знаком
	NotificationStatus        int  `json:"notification_status" db:"notification_status"`
	NotificationVisualization bool `json:"notification_visualization" db:"notification_visualization"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Clone возвращает копию без общих указателей с t
func (t *Task) Clone() *Task {
	c := *t
	if t.FinishedDate != nil {
		finished := *t.FinishedDate
		c.FinishedDate = &finished
	}
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		c.UpdatedAt = &updated
	}
	return &c
}

type ProgressStatus int

const (
	StatusPending ProgressStatus = iota
	StatusInProgress
	StatusDone
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s ProgressStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in progress"
	case StatusDone:
		return "done"
	}
	return "unknown"
}
