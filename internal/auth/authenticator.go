package auth

import (
	"net/http"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_authenticator.go -package=mocks . Authenticator

// TokenCookieName Имя cookie, в которой фронтенд хранит токен пользователя.
const TokenCookieName = "auth_token"

// Authenticator Интерфейс проверки аутентификации запроса по его заголовкам.
// Позволяет заменить проверку наличия cookie на настоящую проверку подписи токена,
// не трогая логику маршрутизации.
type Authenticator interface {
	IsAuthenticated(h http.Header) bool
}

// CookiePresenceAuthenticator Проверяет только наличие непустой cookie с токеном.
// Значение токена никак не проверяется: `auth_token=garbage` тоже считается аутентификацией.
// Это намеренно слабая проверка для локальной разработки.
type CookiePresenceAuthenticator struct {
	cookieName string
}

// NewCookiePresenceAuthenticator Конструктор CookiePresenceAuthenticator.
// Пустое имя cookie заменяется на TokenCookieName.
func NewCookiePresenceAuthenticator(cookieName string) *CookiePresenceAuthenticator {
	if cookieName == "" {
		cookieName = TokenCookieName
	}

	return &CookiePresenceAuthenticator{cookieName: cookieName}
}

// IsAuthenticated Возвращает true, если в заголовке Cookie есть непустое значение токена.
// Любая паника при разборе заголовка трактуется как "не аутентифицирован".
func (c *CookiePresenceAuthenticator) IsAuthenticated(h http.Header) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	token, found := CookieValue(h, c.cookieName)

	return found && token != ""
}

// CookieValue Ищет cookie с именем name во всех заголовках Cookie запроса.
// Заголовок делится по `;`, каждая часть - по первому `=`, имя и значение очищаются от пробелов.
// Возвращается первое найденное вхождение.
func CookieValue(h http.Header, name string) (string, bool) {
	for _, line := range h.Values("Cookie") {
		for _, part := range strings.Split(line, ";") {
			key, value, found := strings.Cut(part, "=")
			if !found {
				continue
			}

			if strings.TrimSpace(key) != name {
				continue
			}

			return strings.TrimSpace(value), true
		}
	}

	return "", false
}
