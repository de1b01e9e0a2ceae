package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/trsv-dev/gated-static-server/internal/auth"
	"github.com/trsv-dev/gated-static-server/internal/certs"
	"github.com/trsv-dev/gated-static-server/internal/config"
	"github.com/trsv-dev/gated-static-server/internal/logger"
	"github.com/trsv-dev/gated-static-server/internal/metrics"
	"github.com/trsv-dev/gated-static-server/internal/router"
	"github.com/trsv-dev/gated-static-server/internal/routing"
	"github.com/trsv-dev/gated-static-server/internal/server"
	"github.com/trsv-dev/gated-static-server/internal/static"
)

// "Сборка" и запуск сервера.
func main() {
	os.Exit(run())
}

func run() (code int) {
	// recover для логирования паник
	defer func() {
		if r := recover(); r != nil {
			log.Println("Паника в main:", fmt.Sprintf("%v", r))
			code = 1
		}
	}()

	// загружаем переменные окружения из .env для локальной разработки
	if errEnv := godotenv.Load(".env.development"); errEnv != nil && !errors.Is(errEnv, os.ErrNotExist) {
		log.Println("Не удалось загрузить .env:", errEnv)
	}

	// инициализация конфигурации сервера
	srvConfig, err := config.InitConfig()
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.Println(err)
		return 1
	}

	// инициализация логгера с уровнем логирования из конфигурации
	logger.InitLogger(srvConfig.LogLevel, srvConfig.LogOutput)
	// отложенное закрытие ресурса (актуально если используется файл для логирования)
	defer logger.Log.Close()

	if err = srvConfig.Validate(); err != nil {
		logger.Log.Error("Некорректная конфигурация", logger.String("err", err.Error()))
		return 1
	}

	// правила маршрутизации: встроенные или из YAML-файла
	rules, err := routing.LoadRules(srvConfig.RulesFile)
	if err != nil {
		logger.Log.Error("Не удалось загрузить правила", logger.String("err", err.Error()))
		return 1
	}

	var authenticator auth.Authenticator
	switch srvConfig.AuthMode {
	case config.AuthModeJWT:
		authenticator = auth.NewJWTAuthenticator(auth.TokenCookieName, srvConfig.JWTSecretKey)
	default:
		authenticator = auth.NewCookiePresenceAuthenticator(auth.TokenCookieName)
	}

	gate, err := routing.NewRouter(rules, authenticator)
	if err != nil {
		logger.Log.Error("Некорректные правила", logger.String("err", err.Error()))
		return 1
	}

	// метрики включаются только вместе со служебным адресом
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prometheus.Registry
	if srvConfig.OpsAddress != "" {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	// самоподписанный сертификат создается при первом запуске
	cert, err := certs.EnsureSelfSigned(srvConfig.CertFile, srvConfig.KeyFile, certs.DefaultOptions())
	if err != nil {
		logger.Log.Error("Не удалось подготовить сертификат", logger.String("err", err.Error()))
		return 1
	}

	handler := router.Router(gate, static.NewResponder(srvConfig.DocumentRoot), recorder)
	srv := server.NewServer(srvConfig.RunAddress, handler, &cert)

	serverErrorCh, err := server.RunServer(srv)
	if err != nil {
		logger.Log.Error("Не удалось запустить сервер", logger.String("err", err.Error()))
		return 1
	}

	var opsSrv *http.Server
	var opsErrorCh chan error
	if registry != nil {
		opsSrv = server.NewServer(srvConfig.OpsAddress, router.OpsRouter(registry), nil)
		if opsErrorCh, err = server.RunServer(opsSrv); err != nil {
			logger.Log.Error("Не удалось запустить служебный сервер", logger.String("err", err.Error()))
			shutdown(srv)
			return 1
		}
	}

	logger.Log.Info("Статика раздается по HTTPS",
		logger.String("url", "https://localhost"+srvConfig.RunAddress),
		logger.String("root", srvConfig.DocumentRoot),
		logger.String("auth", srvConfig.AuthMode),
	)
	logger.Log.Info("Сертификат самоподписанный: браузер покажет предупреждение, его нужно принять вручную")

	// канал системных сигналов
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	// блокируемся тут в ожидании одного из вариантов завершения работы сервера
	select {
	case err, ok := <-serverErrorCh:
		if ok {
			logger.Log.Error("Ошибка сервера", logger.String("err", err.Error()))
			code = 1
		}
	case err, ok := <-opsErrorCh:
		if ok {
			logger.Log.Error("Ошибка служебного сервера", logger.String("err", err.Error()))
			code = 1
		}
	case sig := <-stop:
		logger.Log.Info("Получен сигнал остановки приложения", logger.String("sig", sig.String()))
	}

	logger.Log.Info("Начало процедуры остановки приложения...")

	shutdown(srv)
	if opsSrv != nil {
		shutdown(opsSrv)
	}

	logger.Log.Info("Приложение завершено")

	return code
}

// shutdown Корректная остановка сервера с таймаутом.
func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 7*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Ошибка остановки сервера", logger.String("addr", srv.Addr), logger.String("err", err.Error()))
		return
	}

	logger.Log.Info("Сервер остановлен", logger.String("addr", srv.Addr))
}
