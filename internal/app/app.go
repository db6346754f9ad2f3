package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/clock"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/user"
	"taskManager/internal/notification"
	"taskManager/internal/repository"
	taskmem "taskManager/internal/repository/task/inmemory"
	taskpg "taskManager/internal/repository/task/postgres"
	usermem "taskManager/internal/repository/user/inmemory"
	userpg "taskManager/internal/repository/user/postgres"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// userStore - то, что сервису и резолверу нужно от хранилища пользователей
type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	tasks     service.TaskRepository
	users     userStore
	service   *service.TaskService
	worker    *worker.NotificationWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает хранилище, сервис, роутер и воркер по конфигу
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := a.initStorage(ctx); err != nil {
		a.shutdown()
		return nil, err
	}

	loc, err := a.config.Location()
	if err != nil {
		a.shutdown()
		return nil, err
	}

	clk := clock.System{}
	a.service = service.NewTaskService(a.tasks, a.users, notification.NewCalculator(loc), clk)

	verifier := auth.NewVerifier(a.config.Auth.Secret, clk)
	resolver := auth.NewResolver(verifier, a.users)

	a.router = a.newRouter(resolver, loc)
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "task-manager"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewNotificationWorker(a.service, a.config.Worker.Interval, a.config.Worker.BatchSize)
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("timezone", loc.String()),
		zap.Bool("worker", a.config.Worker.Enabled))
	return a, nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		if a.config.Database.Migrate {
			if err := repository.Migrate(a.config.Database.URL); err != nil {
				return fmt.Errorf("миграции: %w", err)
			}
		}

		pool, err := repository.NewPool(ctx, a.config.Database)
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: Закрытие пула соединений")
			pool.Close()
		})

		a.tasks = taskpg.New(pool)
		a.users = userpg.New(pool)

	case config.RepositoryInMemory:
		users := usermem.NewUserStorage()
		if err := seedUsers(ctx, users, a.config.Auth.SeedUsers); err != nil {
			return err
		}
		a.tasks = taskmem.NewTaskStorage()
		a.users = users

	default:
		return fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
	}
	return nil
}

func seedUsers(ctx context.Context, users *usermem.UserStorage, ids []string) error {
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("auth.seed_users: неверный id %q: %w", raw, err)
		}

		err = users.Create(ctx, &user.User{
			ID:        id,
			Name:      "seed",
			Email:     id.String() + "@seed.local",
			CreatedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("auth.seed_users: %w", err)
		}
		logger.Debug("App: Добавлен пользователь", zap.String("owner_id", id.String()))
	}
	return nil
}

func (a *App) newRouter(resolver middleware.IdentityResolver, loc *time.Location) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers.NewTaskHandler(a.service, loc).Routes(r, middleware.Authenticate(resolver))
	return r
}

// Handler отдаёт итоговый HTTP обработчик со всеми обёртками
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер и воркер до отмены ctx или первой ошибки
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
