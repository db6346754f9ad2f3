package auth

import (
	"context"
	"errors"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnauthorized - единственная ошибка Resolve, по ней нельзя понять, какая проверка не прошла
var ErrUnauthorized = errors.New("unauthorized")

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Resolver превращает заголовок Authorization в id существующего пользователя
type Resolver struct {
	verifier TokenVerifier
	users    UserRepository
}

func NewResolver(verifier TokenVerifier, users UserRepository) *Resolver {
	return &Resolver{
		verifier: verifier,
		users:    users,
	}
}

// Resolve ждёт "<схема> <токен>", проверяется только токен
func (r *Resolver) Resolve(ctx context.Context, header string) (uuid.UUID, error) {
	if header == "" {
		logger.Debug("Auth: Заголовок авторизации отсутствует")
		return uuid.Nil, ErrUnauthorized
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		logger.Debug("Auth: Неверный формат заголовка авторизации")
		return uuid.Nil, ErrUnauthorized
	}

	claim, err := r.verifier.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		logger.Debug("Auth: Токен не прошёл проверку", zap.Error(err))
		return uuid.Nil, ErrUnauthorized
	}

	id, err := uuid.Parse(claim)
	if err != nil {
		logger.Debug("Auth: Некорректный id в токене", zap.Error(err))
		return uuid.Nil, ErrUnauthorized
	}

	if _, err := r.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Debug("Auth: Пользователь не найден", zap.String("owner_id", id.String()))
		} else {
			logger.Error("Auth: Ошибка получения пользователя", err, zap.String("owner_id", id.String()))
		}
		return uuid.Nil, ErrUnauthorized
	}

	return id, nil
}
