package routing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trsv-dev/gated-static-server/internal/errs"
)

// Rules Таблицы правил маршрутизации. Задаются один раз при запуске и дальше не меняются.
type Rules struct {
	// LoginPath страница входа, на нее уходят все отклоненные запросы
	LoginPath string
	// HomePaths домашние страницы, требующие аутентификации
	HomePaths []string
	// Redirects старые адреса страниц и их новые адреса после переноса в подкаталоги
	Redirects map[string]string
	// IndexPaths адреса, которые всегда перенаправляются на страницу входа
	IndexPaths []string
	// ProtectedPrefixes префиксы разделов, требующих аутентификации
	ProtectedPrefixes []string
	// Allowlist файлы и префиксы каталогов, которые разрешено отдавать
	Allowlist []string
}

// Структура YAML-файла правил. Отсутствующий ключ оставляет значение по умолчанию.
type rulesFile struct {
	LoginPath         *string            `yaml:"login_path"`
	HomePaths         *[]string          `yaml:"home_paths"`
	Redirects         *map[string]string `yaml:"redirects"`
	IndexPaths        *[]string          `yaml:"index_paths"`
	ProtectedPrefixes *[]string          `yaml:"protected_prefixes"`
	Allowlist         *[]string          `yaml:"allowlist"`
}

// DefaultRules Правила фронтенда, зашитые в сервер по умолчанию.
func DefaultRules() Rules {
	return Rules{
		LoginPath: "/login/login.html",
		HomePaths: []string{"/home.html", "/home/home.html"},
		Redirects: map[string]string{
			"/login.html": "/login/login.html",
			"/login":      "/login/login.html",
			"/home":       "/home/home.html",
		},
		IndexPaths: []string{"/index", "/index.html"},
		ProtectedPrefixes: []string{
			"/drivers/",
			"/ride-management/",
			"/reports/",
			"/configuration/",
			"/create-ride/",
		},
		Allowlist: []string{
			"/login/",
			"/home/",
			"/home.html",
			"/css/",
			"/js/",
			"/images/",
			"/assets/",
			"/drivers/",
			"/ride-management/",
			"/reports/",
			"/configuration/",
			"/create-ride/",
			"/favicon.ico",
			"/manifest.json",
		},
	}
}

// LoadRules Загружает правила из YAML-файла поверх правил по умолчанию.
// Пустой путь означает правила по умолчанию.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		rules := DefaultRules()
		return rules, rules.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("не удалось прочитать файл правил %s: %w", path, err)
	}

	return ParseRules(data)
}

// ParseRules Разбирает YAML с правилами поверх правил по умолчанию и проверяет результат.
// Неизвестные ключи считаются ошибкой.
func ParseRules(data []byte) (Rules, error) {
	var file rulesFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	// пустой файл - правила по умолчанию
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, fmt.Errorf("ошибка разбора файла правил: %w", err)
	}

	rules := DefaultRules()

	if file.LoginPath != nil {
		rules.LoginPath = *file.LoginPath
	}
	if file.HomePaths != nil {
		rules.HomePaths = *file.HomePaths
	}
	if file.Redirects != nil {
		rules.Redirects = *file.Redirects
	}
	if file.IndexPaths != nil {
		rules.IndexPaths = *file.IndexPaths
	}
	if file.ProtectedPrefixes != nil {
		rules.ProtectedPrefixes = *file.ProtectedPrefixes
	}
	if file.Allowlist != nil {
		rules.Allowlist = *file.Allowlist
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}

	return rules, nil
}

// Validate Проверяет согласованность таблиц.
// Страница входа обязана проходить allowlist и не требовать аутентификации,
// иначе неаутентифицированный пользователь попадет в бесконечный цикл перенаправлений.
func (r Rules) Validate() error {
	if err := checkPath("login_path", r.LoginPath); err != nil {
		return err
	}

	lists := []struct {
		field  string
		values []string
	}{
		{"home_paths", r.HomePaths},
		{"index_paths", r.IndexPaths},
		{"protected_prefixes", r.ProtectedPrefixes},
		{"allowlist", r.Allowlist},
	}
	for _, l := range lists {
		for _, v := range l.values {
			if err := checkPath(l.field, v); err != nil {
				return err
			}
		}
	}

	for from, to := range r.Redirects {
		if err := checkPath("redirects", from); err != nil {
			return err
		}
		if err := checkPath("redirects", to); err != nil {
			return err
		}
	}

	switch {
	case !hasAnyPrefix(r.LoginPath, r.Allowlist):
		return errs.NewErrInvalidRules("login_path", r.LoginPath, fmt.Errorf("страница входа не входит в allowlist"))
	case slices.Contains(r.HomePaths, r.LoginPath) || hasAnyPrefix(r.LoginPath, r.ProtectedPrefixes):
		return errs.NewErrInvalidRules("login_path", r.LoginPath, fmt.Errorf("страница входа не может требовать аутентификации"))
	case slices.Contains(r.IndexPaths, r.LoginPath):
		return errs.NewErrInvalidRules("login_path", r.LoginPath, fmt.Errorf("страница входа совпадает с index-адресом"))
	}

	if _, ok := r.Redirects[r.LoginPath]; ok {
		return errs.NewErrInvalidRules("redirects", r.LoginPath, fmt.Errorf("страница входа не может быть перенаправлена"))
	}

	return nil
}

// clone Глубокая копия таблиц, чтобы роутер не зависел от изменений исходной структуры.
func (r Rules) clone() Rules {
	redirects := make(map[string]string, len(r.Redirects))
	for k, v := range r.Redirects {
		redirects[k] = v
	}

	return Rules{
		LoginPath:         r.LoginPath,
		HomePaths:         slices.Clone(r.HomePaths),
		Redirects:         redirects,
		IndexPaths:        slices.Clone(r.IndexPaths),
		ProtectedPrefixes: slices.Clone(r.ProtectedPrefixes),
		Allowlist:         slices.Clone(r.Allowlist),
	}
}

func checkPath(field, value string) error {
	if value == "" {
		return errs.NewErrInvalidRules(field, value, fmt.Errorf("пустое значение"))
	}
	if !strings.HasPrefix(value, "/") {
		return errs.NewErrInvalidRules(field, value, fmt.Errorf("путь должен начинаться с `/`"))
	}

	return nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
