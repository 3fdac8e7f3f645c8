package auth

import (
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenExpired = errors.New("срок действия токена истёк")
var ErrTokenInvalid = errors.New("токен недействителен")

// Claims — полезная нагрузка токена: {userId, email, exp}.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager подписывает и проверяет bearer-токены HMAC-SHA256.
type TokenManager struct {
	signingKey []byte
	tokenTTL   time.Duration
	timeFunc   func() time.Time // подменяется в тестах
}

func NewTokenManager(secret string, tokenTTL time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt-секрет короче 32 символов")
	}
	return &TokenManager{
		signingKey: []byte(secret),
		tokenTTL:   tokenTTL,
		timeFunc:   time.Now,
	}, nil
}

func (m *TokenManager) Generate(user *models.User) (string, error) {
	now := m.timeFunc()

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.timeFunc))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
