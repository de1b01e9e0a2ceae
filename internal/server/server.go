package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/trsv-dev/gated-static-server/internal/logger"
)

// ReadHeaderTimeout Время на чтение заголовков запроса.
const ReadHeaderTimeout = 10 * time.Second

// NewServer Создание нового сервера.
// Если передан сертификат, сервер работает по HTTPS (TLS 1.2 и выше), иначе по HTTP.
func NewServer(runAddress string, handler http.Handler, certificate *tls.Certificate) *http.Server {
	server := &http.Server{
		Addr:              runAddress,
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	if certificate != nil {
		server.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{*certificate},
		}
	}

	return server
}

// RunServer Открывает порт и запускает сервер в горутине.
// Ошибка открытия порта возвращается сразу, ошибки работы сервера - через канал ошибок.
func RunServer(server *http.Server) (chan error, error) {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть порт %s: %w", server.Addr, err)
	}

	return Serve(server, listener), nil
}

// Serve Запускает сервер на готовом listener в горутине и возвращает канал ошибок.
// Канал закрывается после остановки сервера.
func Serve(server *http.Server, listener net.Listener) chan error {
	// канал ошибок сервера
	serverErrorCh := make(chan error, 1)

	go func() {
		defer close(serverErrorCh)

		var err error
		if server.TLSConfig != nil {
			logger.Log.Info("Сервер запущен", logger.String("address", "https://"+listener.Addr().String()))
			// сертификаты уже в TLSConfig
			err = server.ServeTLS(listener, "", "")
		} else {
			logger.Log.Info("Сервер запущен", logger.String("address", "http://"+listener.Addr().String()))
			err = server.Serve(listener)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Ошибка сервера", logger.String("err", err.Error()))
			// отправляем ошибку в канал ошибок сервера
			serverErrorCh <- err
		}
	}()

	return serverErrorCh
}
