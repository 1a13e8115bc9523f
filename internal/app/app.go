package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mkstudico/kinaflix-TV/internal/controller"
	catalogRedis "github.com/mkstudico/kinaflix-TV/internal/repository/catalog/redis"
	chatInmemory "github.com/mkstudico/kinaflix-TV/internal/repository/chat/inmemory"
	connInmemory "github.com/mkstudico/kinaflix-TV/internal/repository/connection/inmemory"
	roomInmemory "github.com/mkstudico/kinaflix-TV/internal/repository/room/inmemory"
	storageDisk "github.com/mkstudico/kinaflix-TV/internal/repository/storage/disk"
	"github.com/mkstudico/kinaflix-TV/internal/service/room"
	"github.com/mkstudico/kinaflix-TV/pkg/ctxlogger"
	"github.com/mkstudico/kinaflix-TV/pkg/redisclient"
)

const (
	chatHistoryLimit  = 100
	chatMaxTextLength = 500
)

type AppConfig struct {
	Secret            string        `json:"-"`
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ViewersLimit      int           `json:"viewers_limit"`
	PlaylistLimit     int           `json:"playlist_limit"`
	LogLevel          string        `json:"log_level"`
	StorageDir        string        `json:"storage_dir"`
	RetentionMaxAge   time.Duration `json:"retention_max_age"`
	RetentionInterval time.Duration `json:"retention_interval"`
	RedisPort         int           `json:"redis_port"`
	RedisHost         string        `json:"redis_host"`
	RedisPassword     string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.ViewersLimit < 1 {
		return fmt.Errorf("viewers limit must be greater than 0")
	}
	if cfg.PlaylistLimit < 1 {
		return fmt.Errorf("playlist limit must be greater than 0")
	}
	if cfg.StorageDir == "" {
		return fmt.Errorf("storage dir must be set")
	}
	if cfg.RetentionMaxAge <= 0 {
		return fmt.Errorf("retention max age must be positive")
	}
	if cfg.RetentionInterval <= 0 {
		return fmt.Errorf("retention interval must be positive")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	storageRepo, err := storageDisk.NewRepo(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("failed to create storage repo: %w", err)
	}

	roomService := room.NewService(
		roomInmemory.NewRepo(),
		connInmemory.NewRepo(),
		chatInmemory.NewRepo(chatHistoryLimit, chatMaxTextLength),
		catalogRedis.NewRepo(rc),
		storageRepo,
		logger,
		&room.Config{
			ViewersLimit:    cfg.ViewersLimit,
			PlaylistLimit:   cfg.PlaylistLimit,
			Secret:          cfg.Secret,
			RetentionMaxAge: cfg.RetentionMaxAge,
		},
	)

	if err := roomService.RestorePlaylist(ctx); err != nil {
		return fmt.Errorf("failed to restore playlist: %w", err)
	}

	controller := controller.NewController(roomService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.RetentionInterval)
		defer ticker.Stop()

		for {
			select {
			case <-serverCtx.Done():
				return
			case <-ticker.C:
				removed, err := roomService.SweepStorage(serverCtx)
				if err != nil {
					logger.WarnContext(serverCtx, "storage sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					logger.InfoContext(serverCtx, "storage sweep completed", "removed", removed)
				}
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
