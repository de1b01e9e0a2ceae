package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trsv-dev/gated-static-server/internal/auth"
	"github.com/trsv-dev/gated-static-server/internal/routing"
)

// recorder решений для проверки учета метрик
type fakeRecorder struct {
	decisions []routing.Decision
	responses []int
}

func (f *fakeRecorder) ObserveDecision(d routing.Decision) {
	f.decisions = append(f.decisions, d)
}

func (f *fakeRecorder) ObserveResponse(_ string, status int) {
	f.responses = append(f.responses, status)
}

func newGate(t *testing.T) *routing.Router {
	t.Helper()

	rt, err := routing.NewRouter(routing.DefaultRules(), auth.NewCookiePresenceAuthenticator(auth.TokenCookieName))
	require.NoError(t, err)

	return rt
}

// TestGateMiddleware Проверяет перенаправления и переписывание пути.
func TestGateMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		cookie         string
		wantStatus     int
		wantLocation   string
		wantNextCalled bool
		wantNextPath   string
	}{
		{
			name:           "корень отдает страницу входа",
			path:           "/",
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
			wantNextPath:   "/login/login.html",
		},
		{
			name:         "index.html уводит на вход",
			path:         "/index.html",
			cookie:       "auth_token=abc",
			wantStatus:   http.StatusFound,
			wantLocation: "/login/login.html",
		},
		{
			name:         "старый адрес входа",
			path:         "/login.html",
			wantStatus:   http.StatusFound,
			wantLocation: "/login/login.html",
		},
		{
			name:         "домашняя страница без токена",
			path:         "/home.html",
			wantStatus:   http.StatusFound,
			wantLocation: "/login/login.html",
		},
		{
			name:           "домашняя страница с токеном",
			path:           "/home.html",
			cookie:         "foo=bar; auth_token=abc123; baz=qux",
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
			wantNextPath:   "/home.html",
		},
		{
			name:           "публичный css",
			path:           "/css/style.css",
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
			wantNextPath:   "/css/style.css",
		},
		{
			name:         "неизвестный путь",
			path:         "/localhost.key",
			cookie:       "auth_token=abc",
			wantStatus:   http.StatusFound,
			wantLocation: "/login/login.html",
		},
		{
			name:           "путь нормализуется перед передачей дальше",
			path:           "/js/../css/style.css",
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
			wantNextPath:   "/css/style.css",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			nextPath := ""

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				nextPath = r.URL.Path
				w.WriteHeader(http.StatusOK)
			})

			rec := &fakeRecorder{}
			handler := GateMiddleware(newGate(t), rec)(nextHandler)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.URL.Path = tt.path
			if tt.cookie != "" {
				r.Header.Set("Cookie", tt.cookie)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			assert.Equal(t, tt.wantNextCalled, nextCalled)
			assert.Equal(t, tt.wantNextPath, nextPath)

			// исходный запрос не изменился
			assert.Equal(t, tt.path, r.URL.Path)

			// каждое решение учтено ровно один раз
			assert.Len(t, rec.decisions, 1)
		})
	}
}

// TestGateMiddlewareNilRecorder Проверяет работу без учета метрик.
func TestGateMiddlewareNilRecorder(t *testing.T) {
	handler := GateMiddleware(newGate(t), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/css/a.css", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestMetricsMiddleware Проверяет учет статусов ответов.
func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}

	handler := MetricsMiddleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, rec.responses)
}
