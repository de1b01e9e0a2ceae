package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTokenExp Время жизни токена, выпускаемого BuildJWTToken по умолчанию.
const DefaultTokenExp = time.Hour * 24

type Claims struct {
	jwt.RegisteredClaims
}

// JWTAuthenticator Проверяет, что cookie с токеном содержит действительный JWT,
// подписанный секретным ключом (HS256), со сроком действия, который еще не истек.
type JWTAuthenticator struct {
	cookieName string
	secretKey  []byte
}

// NewJWTAuthenticator Конструктор JWTAuthenticator.
func NewJWTAuthenticator(cookieName, JWTSecretKey string) *JWTAuthenticator {
	if cookieName == "" {
		cookieName = TokenCookieName
	}

	return &JWTAuthenticator{
		cookieName: cookieName,
		secretKey:  []byte(JWTSecretKey),
	}
}

// IsAuthenticated Возвращает true только для действительного токена.
// Ошибки разбора и паники трактуются как "не аутентифицирован".
func (j *JWTAuthenticator) IsAuthenticated(h http.Header) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	tokenString, found := CookieValue(h, j.cookieName)
	if !found || tokenString == "" {
		return false
	}

	_, err := j.GetClaims(tokenString)

	return err == nil
}

// GetClaims Получение claims с помощью распарсивания JWT-токена.
func (j *JWTAuthenticator) GetClaims(tokenString string) (*Claims, error) {
	// создаем пустой экземпляр Claims, куда будем распарсивать токен
	claims := &Claims{}

	// распарсиваем токен, проверяя на метод подписи
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неверный метод подписи: %v", t.Header["alg"])
		}

		return j.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга токена: %w", err)
	}

	// проверяем токен на валидность
	if !token.Valid {
		return nil, fmt.Errorf("токен недействителен")
	}

	return claims, nil
}

// BuildJWTToken Создание JWT-токена для subject со сроком действия ttl.
// Нужен для ручной проверки режима AUTH_MODE=jwt во время разработки.
func BuildJWTToken(subject, JWTSecretKey string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenExp
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	// создаем токен с claims
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// подписываем секретным ключом и возвращаем токен в виде строки
	tokenString, err := token.SignedString([]byte(JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("не удалось подписать токен: %w", err)
	}

	return tokenString, nil
}
