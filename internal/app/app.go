package app

import (
	"context"
	"fmt"

	"goalTracker/internal/config"
	"goalTracker/internal/logger"
	"goalTracker/internal/persistence"
	"goalTracker/internal/repository/kv/file"
	"goalTracker/internal/repository/kv/inmemory"
	"goalTracker/internal/repository/kv/postgres"
	"goalTracker/internal/service"

	"go.uber.org/zap"
)

// HealthChecker is implemented by slot backends that can verify they are
// reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type App struct {
	config    *config.Config
	slot      persistence.Slot
	adapter   *persistence.Adapter
	store     *service.GoalStore
	shutdowns []func() // run in reverse order by Shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init builds the slot backend, the adapter and the store, then loads the
// persisted goals. On error everything already opened is released.
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Sync()
	})

	slot, err := a.openSlot(ctx)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.slot = slot

	if hc, ok := slot.(HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			logger.Error("App: storage health check failed", err, zap.String("storage", a.config.Storage.Type))
			a.Shutdown()
			return nil, fmt.Errorf("storage health check: %w", err)
		}
	}

	a.adapter = persistence.New(slot, a.config.Storage.Key)
	a.store = service.NewGoalStore(a.adapter)
	count := a.store.Load(ctx)

	logger.Info("App: ready",
		zap.String("storage", a.config.Storage.Type),
		zap.String("key", a.adapter.Key()),
		zap.Int("goals", count))

	return a, nil
}

func (a *App) openSlot(ctx context.Context) (persistence.Slot, error) {
	switch a.config.Storage.Type {
	case config.StorageMemory:
		return inmemory.NewSlotStorage(), nil

	case config.StorageFile:
		slot, err := file.New(a.config.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return slot, nil

	case config.StoragePostgres:
		storage, err := postgres.New(ctx, a.config.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		if err := storage.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate postgres storage: %w", err)
		}
		return storage, nil
	}

	return nil, fmt.Errorf("unknown storage type %q", a.config.Storage.Type)
}

func (a *App) Store() *service.GoalStore {
	return a.store
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
