package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ownerKey contextKey = "owner_id"

// WithOwner кладёт id владельца в контекст запроса
func WithOwner(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey, id)
}

func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
