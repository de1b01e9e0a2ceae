package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/trsv-dev/gated-static-server/internal/logger"
)

// RequestIDHeader Заголовок ответа с идентификатором запроса.
const RequestIDHeader = "X-Request-Id"

// Структура для хранения данных ответа.
type responseData struct {
	status int
	size   int
}

// LoggingResponseWriter Структура, которой можно подменить оригинальный http.ResponseWriter
// для получения ответа и записи ответа в лог.
type LoggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

func (l *LoggingResponseWriter) Write(b []byte) (int, error) {
	// если WriteHeader не вызывался, net/http сам отправит 200
	if l.responseData.status == 0 {
		l.responseData.status = http.StatusOK
	}

	// записываем ответ, используя оригинальный http.ResponseWriter
	size, err := l.ResponseWriter.Write(b)
	// захватываем размер
	l.responseData.size += size

	return size, err
}

func (l *LoggingResponseWriter) WriteHeader(statusCode int) {
	// записываем код статуса, используя оригинальный http.ResponseWriter
	l.ResponseWriter.WriteHeader(statusCode)
	// захватываем код статуса
	l.responseData.status = statusCode
}

// Flush Пробрасывает Flush в оригинальный http.ResponseWriter, если он его поддерживает.
func (l *LoggingResponseWriter) Flush() {
	if f, ok := l.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status Код ответа (200, если обработчик ничего не записал).
func (l *LoggingResponseWriter) Status() int {
	if l.responseData.status == 0 {
		return http.StatusOK
	}

	return l.responseData.status
}

// LogMiddleware Middleware для логирования всех запросов.
// Каждому запросу присваивается идентификатор, он же возвращается клиенту в заголовке X-Request-Id.
func LogMiddleware(h http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		data := responseData{
			status: 0,
			size:   0,
		}

		lw := LoggingResponseWriter{
			ResponseWriter: w,
			responseData:   &data,
		}

		requestID := uuid.NewString()
		w.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		h.ServeHTTP(&lw, r)
		duration := time.Since(start)

		logger.Log.Debug("Got incoming HTTP request",
			logger.String("request_id", requestID),
			logger.String("uri", r.RequestURI),
			logger.String("method", r.Method),
			logger.String("status", strconv.Itoa(lw.Status())),
			logger.String("duration", duration.String()),
			logger.String("size", strconv.Itoa(data.size)),
		)
	}

	return http.HandlerFunc(f)
}
