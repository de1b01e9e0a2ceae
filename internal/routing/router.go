package routing

import (
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/trsv-dev/gated-static-server/internal/auth"
)

// Kind Тип решения роутера.
type Kind int

const (
	// Serve отдать файл по (возможно переписанному) пути
	Serve Kind = iota
	// Redirect перенаправить клиента
	Redirect
)

func (k Kind) String() string {
	if k == Redirect {
		return "redirect"
	}

	return "serve"
}

// Причины решений, используются в метриках и отладочных логах.
const (
	ReasonLegacy          = "legacy"
	ReasonIndex           = "index"
	ReasonUnauthenticated = "unauthenticated"
	ReasonNotAllowed      = "not_allowed"
	ReasonRoot            = "root"
	ReasonProtected       = "protected"
	ReasonPublic          = "public"
)

// Decision Решение роутера для одного запроса.
type Decision struct {
	Kind Kind
	// Path путь для отдачи файла (Serve) или адрес перенаправления (Redirect)
	Path string
	// Status HTTP-статус перенаправления, для Serve всегда 0
	Status int
	Reason string
}

func serveDecision(p, reason string) Decision {
	return Decision{Kind: Serve, Path: p, Reason: reason}
}

func redirectDecision(target, reason string) Decision {
	return Decision{Kind: Redirect, Path: target, Status: http.StatusFound, Reason: reason}
}

// Router Принимает решение по каждому пути запроса: перенаправить, отклонить (на страницу входа) или отдать файл.
// Не хранит состояния между запросами, безопасен для конкурентного использования.
type Router struct {
	rules         Rules
	authenticator auth.Authenticator
}

// NewRouter Конструктор Router. Таблицы правил копируются и дальше не меняются.
// Если authenticator не передан, используется проверка наличия cookie auth_token.
func NewRouter(rules Rules, authenticator auth.Authenticator) (*Router, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	if authenticator == nil {
		authenticator = auth.NewCookiePresenceAuthenticator(auth.TokenCookieName)
	}

	return &Router{
		rules:         rules.clone(),
		authenticator: authenticator,
	}, nil
}

// LoginPath Адрес страницы входа.
func (rt *Router) LoginPath() string {
	return rt.rules.LoginPath
}

// Route Решение для пути запроса. Правила проверяются строго по порядку, срабатывает первое совпавшее.
func (rt *Router) Route(p string, headers http.Header) Decision {
	p = CleanPath(p)

	// 1. старые адреса страниц
	if target, ok := rt.rules.Redirects[p]; ok {
		return redirectDecision(target, ReasonLegacy)
	}

	// 2. корень переписывается на страницу входа без перенаправления и сразу идет в проверку allowlist
	if p == "/" {
		return rt.allowlisted(rt.rules.LoginPath, ReasonRoot)
	}

	// 3. index всегда уводит на страницу входа, даже с токеном
	if slices.Contains(rt.rules.IndexPaths, p) {
		return redirectDecision(rt.rules.LoginPath, ReasonIndex)
	}

	// 4. защищенные разделы
	if rt.isProtected(p) {
		if !rt.authenticator.IsAuthenticated(headers) {
			return redirectDecision(rt.rules.LoginPath, ReasonUnauthenticated)
		}

		return serveDecision(p, ReasonProtected)
	}

	// 5. allowlist
	return rt.allowlisted(p, ReasonPublic)
}

func (rt *Router) isProtected(p string) bool {
	return slices.Contains(rt.rules.HomePaths, p) || hasAnyPrefix(p, rt.rules.ProtectedPrefixes)
}

func (rt *Router) allowlisted(p, reason string) Decision {
	if !hasAnyPrefix(p, rt.rules.Allowlist) {
		return redirectDecision(rt.rules.LoginPath, ReasonNotAllowed)
	}

	return serveDecision(p, reason)
}

// CleanPath Приводит путь к каноническому виду так же, как это делает net/http:
// добавляет ведущий `/`, убирает `.`, `..` и повторные `/`, сохраняя завершающий `/`.
// Без этого префиксные правила можно обойти путем вида `/css/../secret`.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}

	np := path.Clean(p)
	if strings.HasSuffix(p, "/") && np != "/" {
		np += "/"
	}

	return np
}
