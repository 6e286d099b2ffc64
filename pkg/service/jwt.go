package service

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	apperrors "order-desk/pkg/errors"
)

type JwtCustomClaim struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService читает срок действия токена доступа.
// Подпись не проверяется: ключа сервера у клиента нет, проверяет сам сервер.
type JWTService interface {
	ExpiresAt(tokenString string) (time.Time, error)
	IsExpired(tokenString string, now time.Time) bool
}

type jwtService struct {
	parser *jwt.Parser
}

func NewJWTService() JWTService {
	return &jwtService{parser: jwt.NewParser()}
}

func (s *jwtService) ExpiresAt(tokenString string) (time.Time, error) {
	claims := &JwtCustomClaim{}
	if _, _, err := s.parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: нет поля exp", apperrors.ErrInvalidToken)
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired: токен без exp или нечитаемый считается истёкшим.
func (s *jwtService) IsExpired(tokenString string, now time.Time) bool {
	exp, err := s.ExpiresAt(tokenString)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

// GenerateToken подписывает токен с заданным сроком. Нужен фейковому серверу в тестах и локальной отладке.
func GenerateToken(secretKey string, userID int, expiresAt time.Time) (string, error) {
	claims := &JwtCustomClaim{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}
