package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/auth"
	"github.com/BuzzLyutic/todo-notes-api/internal/cache"
	"github.com/BuzzLyutic/todo-notes-api/internal/config"
	"github.com/BuzzLyutic/todo-notes-api/internal/handler"
	"github.com/BuzzLyutic/todo-notes-api/internal/notify"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
	"github.com/BuzzLyutic/todo-notes-api/internal/service"
	"github.com/BuzzLyutic/todo-notes-api/internal/todolist"
	"github.com/BuzzLyutic/todo-notes-api/internal/worker"
	"github.com/BuzzLyutic/todo-notes-api/migrations"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().Bool("migrate", true, "apply database migrations on start")
	return cmd
}

type stores struct {
	todos repo.TodoRepository
	notes repo.NoteRepository
	users repo.UserRepository
	close func()
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := config.New()
	if err != nil {
		return err
	}
	if err := v.BindPFlag("port", cmd.Flags().Lookup("port")); err != nil {
		return err
	}
	cfg := config.Read(v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Подключаем логгер
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	migrate, _ := cmd.Flags().GetBool("migrate")
	st, err := openStores(ctx, cfg, migrate, logger)
	if err != nil {
		return err
	}
	defer st.close()

	rdb, err := openRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	authn, stopAuth, err := newAuthenticator(cfg, logger)
	if err != nil {
		return err
	}
	defer stopAuth()

	pool := worker.NewPool(logger, cfg.WorkerCount)
	pool.Start(ctx)
	defer pool.Stop()

	todoRepo := cache.NewTodos(st.todos, rdb, cfg.CacheTTL, logger)
	sessions := todolist.NewRegistry(todoRepo, pool, logger)
	go sweepSessions(ctx, sessions, cfg.SessionIdleTTL, logger)

	notesHandler := handler.NewNoteHandler(service.NewNoteService(st.notes, notify.NewHub(rdb, "notes", logger), logger), logger)
	router := handler.NewRouter(
		handler.NewTodoHandler(service.NewTodoService(todoRepo, sessions, logger), logger),
		notesHandler,
		handler.NewProfileHandler(service.NewProfileService(st.users, todoRepo, st.notes), logger),
		authn,
	)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(notesHandler.Close)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// openStores connects to Postgres, or keeps everything in memory when no
// DATABASE_URL is configured.
func openStores(ctx context.Context, cfg config.Config, migrate bool, logger *zap.Logger) (stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, data is kept in memory")
		mem := repo.NewMemory()
		return stores{todos: mem.Todos(), notes: mem.Notes(), users: mem.Users(), close: func() {}}, nil
	}

	pool, err := connectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	logger.Info("connected to the database")

	if migrate {
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			pool.Close()
			return stores{}, err
		}
		logger.Info("migrations applied", zap.Strings("files", applied))
	}

	return stores{
		todos: repo.NewTodoRepo(pool),
		notes: repo.NewNoteRepo(pool),
		users: repo.NewUserRepo(pool),
		close: pool.Close,
	}, nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// openRedis returns nil when REDIS_ADDR is empty; caching and note push
// updates are then off.
func openRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, todo cache and note streams disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	return client, nil
}

func newAuthenticator(cfg config.Config, logger *zap.Logger) (func(http.Handler) http.Handler, func(), error) {
	if cfg.JWKSURL != "" {
		jwks, err := auth.FetchJWKS(cfg.JWKSURL, time.Hour, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("load jwks: %w", err)
		}
		v := auth.NewJWKS(jwks, cfg.JWTAudience, cfg.JWTIssuer)
		return v.Middleware(logger), jwks.EndBackground, nil
	}
	v := auth.NewHMAC([]byte(cfg.JWTSecret), cfg.JWTAudience, cfg.JWTIssuer)
	return v.Middleware(logger), func() {}, nil
}

func sweepSessions(ctx context.Context, sessions *todolist.Registry, idle time.Duration, logger *zap.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(idle); n > 0 {
				logger.Info("dropped idle todo sessions", zap.Int("count", n), zap.Int("open", sessions.Len()))
			}
		}
	}
}
