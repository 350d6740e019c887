package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// storage agrupa los adaptadores de persistencia elegidos por DB_DRIVER.
type storage struct {
	txRunner  inventory.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	audit     repository.AuditLogRepository
	stats     repository.StatsRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Locks por producto: Redis si hay varias instancias, en proceso si no
	var locker inventory.ItemLocker = inventory.NewLocalLocker()
	if cfg.Redis.Enabled() {
		client, err := redislock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		locker = redislock.New(client, cfg.Ledger.LockTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("locks distribuidos con Redis")
	}

	m := metrics.New()
	engine := inventory.NewLedgerEngine(store.txRunner, locker,
		inventory.WithOwnershipCheck(cfg.Ledger.EnforceOwnership),
		inventory.WithMetrics(m),
		inventory.WithLogger(log),
	)
	reader := inventory.NewLedgerReader(store.products, store.movements)
	auditor := inventory.NewLedgerAuditor(store.products, store.txRunner, locker, m, log)

	auditUC := usecase.NewAuditUseCase(store.audit, log)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := httpRouter.NewApp(httpRouter.ServerConfig{
		AppName:     cfg.App.Name,
		SwaggerFile: cfg.App.SwaggerFile,
		Metrics:     m,
		Logger:      log,
	})
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		ProductUC:        usecase.NewProductUseCase(store.txRunner, store.products, auditUC),
		UserUC:           usecase.NewUserUseCase(store.users, auditUC),
		AuditUC:          auditUC,
		StatsUC:          analytics.NewStatsUseCase(store.stats),
		Engine:           engine,
		Reader:           reader,
		Auditor:          auditor,
		JWTSecret:        cfg.JWT.Secret,
		RateLimitMax:     cfg.RateLimit.Max,
		AuthRateLimitMax: cfg.RateLimit.AuthMax,
		RateLimitWindow:  cfg.RateLimit.Window,
	})

	go auditor.Run(ctx, cfg.Ledger.AuditInterval, cfg.Ledger.AuditRepair)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.InMemory() {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			txRunner:  memory.NewTxRunner(s),
			products:  memory.NewProductRepository(s),
			movements: memory.NewStockMovementRepository(s),
			users:     memory.NewUserRepository(s),
			audit:     memory.NewAuditLogRepository(s),
			stats:     memory.NewStatsRepository(s),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Int("applied", applied).Msg("migraciones aplicadas")
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		users:     postgres.NewUserRepository(pool),
		audit:     postgres.NewAuditLogRepository(pool),
		stats:     postgres.NewStatsRepository(pool),
		close:     pool.Close,
	}, nil
}
