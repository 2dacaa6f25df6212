package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/clipsync/internal/auth"
	"github.com/iudanet/clipsync/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки токена устройства.
// Токен подписан общим секретом группы устройств (HS256).
func AuthMiddleware(logger *slog.Logger, tokens auth.TokenConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, "missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				writeError(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateDeviceToken(tokens, strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("Invalid device token", "error", err)
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			logger.Debug("Device authenticated", "device_id", claims.DeviceID)
			recordDevice(r.Context(), claims.DeviceID)

			ctx := handlers.WithDevice(r.Context(), claims.DeviceID, claims.Platform)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
