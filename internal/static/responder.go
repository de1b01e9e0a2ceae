package static

import (
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/trsv-dev/gated-static-server/internal/logger"
)

// IndexFile Файл, который отдается при запросе каталога.
const IndexFile = "index.html"

// Типы содержимого, которые стандартный mime может не знать или определять по-разному на разных ОС.
var contentTypeOverrides = map[string]string{
	".json": "application/json",
	".js":   "text/javascript; charset=utf-8",
}

// Responder Отдает файлы из корневого каталога документов.
type Responder struct {
	root http.FileSystem
}

// NewResponder Конструктор Responder. root - абсолютный путь к каталогу со статикой.
func NewResponder(root string) *Responder {
	return &Responder{root: http.Dir(root)}
}

// ServeHTTP Отдает файл по пути запроса. Поддерживаются только GET и HEAD.
func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		NotImplemented(w, r)
		return
	}

	name := r.URL.Path
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}

	f, err := s.root.Open(name)
	if err != nil {
		logger.Log.Debug("Файл не найден", logger.String("path", name), logger.String("err", err.Error()))
		http.Error(w, "Файл не найден", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Log.Error("Ошибка получения информации о файле", logger.String("path", name), logger.String("err", err.Error()))
		http.Error(w, "Ошибка чтения файла", http.StatusInternalServerError)
		return
	}

	// для каталога отдаем его index.html, листинг каталогов не показываем
	if info.IsDir() {
		f, info, err = s.openIndex(name)
		if err != nil {
			logger.Log.Debug("В каталоге нет index.html", logger.String("path", name))
			http.Error(w, "Файл не найден", http.StatusNotFound)
			return
		}
		defer f.Close()
	}

	w.Header().Set("Content-Type", ContentType(info.Name()))
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Открытие index.html внутри каталога dir.
func (s *Responder) openIndex(dir string) (http.File, fs.FileInfo, error) {
	f, err := s.root.Open(path.Join(dir, IndexFile))
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if info.IsDir() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}

	return f, info, nil
}

// ContentType Тип содержимого по расширению файла.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))

	if ct, ok := contentTypeOverrides[ext]; ok {
		return ct
	}

	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	return "application/octet-stream"
}

// NotImplemented Ответ на неподдерживаемый HTTP-метод.
func NotImplemented(w http.ResponseWriter, r *http.Request) {
	logger.Log.Debug("Неподдерживаемый метод", logger.String("method", r.Method), logger.String("uri", r.RequestURI))
	http.Error(w, "Метод не поддерживается", http.StatusNotImplemented)
}
