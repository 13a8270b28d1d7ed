// Package main wires config, storage, service and HTTP-transport together
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/UnendingLoop/ImageTuner/internal/config"
	"github.com/UnendingLoop/ImageTuner/internal/mwlimiter"
	"github.com/UnendingLoop/ImageTuner/internal/mwlogger"
	"github.com/UnendingLoop/ImageTuner/internal/service"
	"github.com/UnendingLoop/ImageTuner/internal/storage"
	"github.com/UnendingLoop/ImageTuner/internal/sweeper"
	"github.com/UnendingLoop/ImageTuner/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	envConfig := config.New()
	envConfig.EnableEnv("")
	if err := envConfig.LoadEnvFiles("./.env"); err != nil {
		log.Printf("No .env file loaded: %s", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	cfg, err := appconfig.Load(envConfig)
	if err != nil {
		log.Fatalf("Failed to load config: %s\nExiting app...", err)
	}

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключаемся к хранилищам: входящее и производное
	incoming, derived, err := storage.New(cfg, 10*time.Second)
	if err != nil {
		log.Fatalf("Failed to init storage: %s\nExiting app...", err)
	}

	// создаем экземпляр сервиса
	var svc transport.ImageService = service.NewImageService(cfg, incoming, derived)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewImageHandler(svc)
	// сетапим сервер
	engine := ginext.New(cfg.Server.GinMode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/upload", handlers.Upload)              // прием исходника
	engine.POST("/process", handlers.Process)            // обработка по параметрам
	engine.GET("/download/:filename", handlers.Download) // выдача производного файла

	// цепочка мидлварей: лимитер отбивает лишнее, логгер видит все запросы
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mwlogger.NewMWLogger(mwlimiter.NewRateLimiter(cfg.Limits.RateWindow, cfg.Limits.RateMax, engine)),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// запускаем фоновую чистку устаревших производных файлов
	go sweeper.New(derived, cfg.Retention.MaxAge, cfg.Retention.SweepInterval).Run(ctx)

	// ждем отмены контекста для запуска грейсфул остановки сервера
	<-ctx.Done()

	shutdown(srv)
	log.Println("Exiting app...")
}

func shutdown(srv *http.Server) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Println("Failed to stop HTTP-server correctly:", err)
		return
	}
	log.Println("HTTP-server stopped")
}
