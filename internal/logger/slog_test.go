package logger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// сброс синглтона между тестами
func resetLogger() {
	Log = nil
	once = sync.Once{}
}

// TestSlogAdapterLevels Проверяет фильтрацию сообщений по уровням логирования.
func TestSlogAdapterLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
		wantError bool
	}{
		{name: "уровень Debug", level: slog.LevelDebug, wantDebug: true, wantInfo: true, wantWarn: true, wantError: true},
		{name: "уровень Info", level: slog.LevelInfo, wantInfo: true, wantWarn: true, wantError: true},
		{name: "уровень Warn", level: slog.LevelWarn, wantWarn: true, wantError: true},
		{name: "уровень Error", level: slog.LevelError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			adapter := &SlogAdapter{slog: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: tt.level}))}

			adapter.Debug("debug message")
			adapter.Info("info message")
			adapter.Warn("warn message")
			adapter.Error("error message")

			output := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(output, "debug message"))
			assert.Equal(t, tt.wantInfo, strings.Contains(output, "info message"))
			assert.Equal(t, tt.wantWarn, strings.Contains(output, "warn message"))
			assert.Equal(t, tt.wantError, strings.Contains(output, "error message"))
		})
	}
}

// TestSlogAdapterFields Проверяет запись полей в лог.
func TestSlogAdapterFields(t *testing.T) {
	buf := &bytes.Buffer{}
	adapter := &SlogAdapter{slog: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))}

	adapter.Info("request processed",
		String("method", "GET"),
		String("path", "/login/login.html"),
		Int("status", 302),
		Int64("size", 1024),
	)

	output := buf.String()
	assert.Contains(t, output, "request processed")
	assert.Contains(t, output, "method=GET")
	assert.Contains(t, output, "path=/login/login.html")
	assert.Contains(t, output, "status=302")
	assert.Contains(t, output, "size=1024")
}

// TestFieldHelpers Проверяет создание полей.
func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "path", Value: "/"}, String("path", "/"))
	assert.Equal(t, Field{Key: "count", Value: "0"}, Int("count", 0))
	assert.Equal(t, Field{Key: "id", Value: "-273"}, Int64("id", -273))
}

// TestConvertFields Проверяет преобразование Fields в any[].
func TestConvertFields(t *testing.T) {
	result := convertFields([]Field{String("key1", "value1"), Int("key2", 123)})

	assert.Equal(t, []any{"key1", "value1", "key2", "123"}, result)
	assert.Empty(t, convertFields(nil))
}

// TestParseLevel Проверяет разбор уровня логирования без учета регистра.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"Debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown_level", slog.LevelDebug},
		{"", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

// TestInitLoggerStdout Проверяет инициализацию логгера с выводом в stdout.
func TestInitLoggerStdout(t *testing.T) {
	resetLogger()
	defer resetLogger()

	InitLogger("info", "stdout")

	require.NotNil(t, Log)
	assert.NoError(t, Log.Close(), "закрытие stdout-логгера не должно возвращать ошибку")
}

// TestInitLoggerFile Проверяет запись логов в файл.
func TestInitLoggerFile(t *testing.T) {
	resetLogger()
	defer resetLogger()

	path := filepath.Join(t.TempDir(), "server.log")

	InitLogger("debug", path)
	require.NotNil(t, Log)

	Log.Info("Сервер запущен", String("address", ":8443"))
	require.NoError(t, Log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "address=:8443")
}

// TestInitLoggerSingleton Проверяет что InitLogger работает как синглтон.
func TestInitLoggerSingleton(t *testing.T) {
	resetLogger()
	defer resetLogger()

	InitLogger("debug", "stdout")
	first := Log

	InitLogger("error", "stderr")

	assert.Same(t, first, Log)
}

// TestSlogAdapterCloseNil Проверяет закрытие адаптера без файла.
func TestSlogAdapterCloseNil(t *testing.T) {
	adapter := &SlogAdapter{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}

	assert.NoError(t, adapter.Close())
}

// TestLoggerConcurrency Проверяет конкурентное логирование.
func TestLoggerConcurrency(t *testing.T) {
	var (
		mu  sync.Mutex
		buf bytes.Buffer
	)
	adapter := &SlogAdapter{slog: slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, w: &buf}, nil))}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			adapter.Info("concurrent log", Int("id", id))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, strings.Count(buf.String(), "concurrent log"))
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
