package auth

import (
	"errors"
	"time"

	"taskManager/internal/clock"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// токен испорчен, подписан не тем ключом или без id
	ErrInvalidToken = errors.New("invalid token")
	// срок действия токена истёк
	ErrExpiredToken = errors.New("token has expired")
)

// Claims - содержимое токена: id владельца и стандартные поля
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Verifier подписывает и проверяет HS256 токены секретом, заданным при создании
type Verifier struct {
	secret []byte
	clock  clock.Clock
}

func NewVerifier(secret string, clk clock.Clock) *Verifier {
	if clk == nil {
		clk = clock.System{}
	}
	return &Verifier{
		secret: []byte(secret),
		clock:  clk,
	}
}

// Verify проверяет подпись и срок действия и возвращает id
func (v *Verifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Issue выпускает токен для userID; при ttl == 0 токен бессрочный
func (v *Verifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
