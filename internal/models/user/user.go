package user

import (
	"time"

	"github.com/google/uuid"
)

// User - владелец задач. Учётные записи и пароли живут в другом сервисе,
// здесь важно только то, что id ещё существует
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
