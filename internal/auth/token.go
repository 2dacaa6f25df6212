// Package auth выпускает и проверяет токены устройств для relay-сервера.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "clipsync"

// ErrInvalidToken indicates that the token could not be verified
var ErrInvalidToken = errors.New("invalid token")

// DeviceClaims представляет JWT claims токена устройства
type DeviceClaims struct {
	DeviceID string `json:"device_id"`
	Platform string `json:"platform,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig содержит общий секрет группы устройств и время жизни токена
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// IssueDeviceToken создает JWT, подписанный общим секретом (HS256)
func IssueDeviceToken(cfg TokenConfig, deviceID, platform string) (string, error) {
	if len(cfg.Secret) == 0 {
		return "", fmt.Errorf("token secret cannot be empty")
	}
	if deviceID == "" {
		return "", fmt.Errorf("device id cannot be empty")
	}

	now := time.Now()
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	claims := DeviceClaims{
		DeviceID: deviceID,
		Platform: platform,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateDeviceToken валидирует и парсит токен устройства
func ValidateDeviceToken(cfg TokenConfig, tokenString string) (*DeviceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DeviceClaims{}, func(token *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*DeviceClaims)
	if !ok || !token.Valid || claims.DeviceID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
