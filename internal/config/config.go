package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Режимы проверки аутентификации.
const (
	AuthModePresence = "presence"
	AuthModeJWT      = "jwt"
)

// Имена файлов сертификата и ключа по умолчанию (в корне документов).
const (
	DefaultCertFileName = "localhost.crt"
	DefaultKeyFileName  = "localhost.key"
)

type Config struct {
	RunAddress   string
	DocumentRoot string
	CertFile     string
	KeyFile      string
	RulesFile    string
	AuthMode     string
	JWTSecretKey string
	OpsAddress   string
	LogLevel     string
	LogOutput    string
}

// InitConfig Инициализация структуры, содержащей конфигурацию сервера, полученную из флагов или
// переменных окружения. Переменные окружения имеют приоритет над флагами.
func InitConfig() (*Config, error) {
	return ParseConfig(os.Args[1:], os.LookupEnv)
}

// ParseConfig Разбор конфигурации из аргументов командной строки и функции поиска переменных окружения.
func ParseConfig(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	config := &Config{}

	fs := flag.NewFlagSet("gss", flag.ContinueOnError)
	fs.StringVar(&config.RunAddress, "a", ":8443", "HTTPS server address and port")
	fs.StringVar(&config.DocumentRoot, "d", ".", "Directory with static files")
	fs.StringVar(&config.CertFile, "cert", "", "TLS certificate file (default: <document root>/localhost.crt)")
	fs.StringVar(&config.KeyFile, "key", "", "TLS private key file (default: <document root>/localhost.key)")
	fs.StringVar(&config.RulesFile, "r", "", "YAML file with routing rules (default: built-in rules)")
	fs.StringVar(&config.AuthMode, "auth", AuthModePresence, "Authentication check: presence or jwt")
	fs.StringVar(&config.JWTSecretKey, "jwt-secret", "", "JWT secret key for -auth=jwt")
	fs.StringVar(&config.OpsAddress, "ops", "", "Address for /metrics and /health (disabled if empty)")
	fs.StringVar(&config.LogLevel, "ll", "Info", "Log level for logging (example: Debug, Info, Warn, Error)")
	fs.StringVar(&config.LogOutput, "lo", "stdout", "Log output: stdout, stderr or file path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("ошибка разбора флагов: %w", err)
	}

	envs := []struct {
		name string
		dst  *string
	}{
		{"RUN_ADDRESS", &config.RunAddress},
		{"DOCUMENT_ROOT", &config.DocumentRoot},
		{"TLS_CERT_FILE", &config.CertFile},
		{"TLS_KEY_FILE", &config.KeyFile},
		{"RULES_FILE", &config.RulesFile},
		{"AUTH_MODE", &config.AuthMode},
		{"JWT_SECRET_KEY", &config.JWTSecretKey},
		{"OPS_ADDRESS", &config.OpsAddress},
		{"LOG_LEVEL", &config.LogLevel},
		{"LOG_OUTPUT", &config.LogOutput},
	}

	for _, e := range envs {
		if value, ok := lookupEnv(e.name); ok {
			*e.dst = value
		}
	}

	config.AuthMode = strings.ToLower(strings.TrimSpace(config.AuthMode))

	return config, nil
}

// Validate Проверяет конфигурацию и приводит пути к абсолютным.
// Пустые пути сертификата и ключа заменяются на файлы в корне документов.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModePresence:
	case AuthModeJWT:
		if c.JWTSecretKey == "" {
			return fmt.Errorf("для режима аутентификации `%s` нужен JWT_SECRET_KEY", AuthModeJWT)
		}
	default:
		return fmt.Errorf("неизвестный режим аутентификации `%s`", c.AuthMode)
	}

	if c.RunAddress == "" {
		return fmt.Errorf("не задан адрес сервера")
	}

	// абсолютный путь к статическим файлам
	root, err := filepath.Abs(c.DocumentRoot)
	if err != nil {
		return fmt.Errorf("ошибка получения абсолютного пути %s: %w", c.DocumentRoot, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("каталог %s недоступен: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является каталогом", root)
	}
	c.DocumentRoot = root

	if c.CertFile == "" {
		c.CertFile = filepath.Join(root, DefaultCertFileName)
	}
	if c.KeyFile == "" {
		c.KeyFile = filepath.Join(root, DefaultKeyFileName)
	}

	return nil
}
