package middleware

import (
	"context"
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (uuid.UUID, error)
}

// Authenticate определяет владельца по заголовку Authorization и кладёт его id
// в контекст; любая ошибка даёт один и тот же ответ 401
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn("HTTP: Запрос не авторизован",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))

				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"error":   "UNAUTHORIZED",
					"message": "Не авторизован",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), ownerID)))
		})
	}
}
