package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fantasy-auction/internal/auction"
	"github.com/iliyamo/fantasy-auction/internal/config"
	"github.com/iliyamo/fantasy-auction/internal/database"
	"github.com/iliyamo/fantasy-auction/internal/handler"
	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/middleware"
	"github.com/iliyamo/fantasy-auction/internal/queue"
	"github.com/iliyamo/fantasy-auction/internal/repository"
	"github.com/iliyamo/fantasy-auction/internal/router"
	"github.com/iliyamo/fantasy-auction/internal/scheduler"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "fantasy-auction").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer closeStore()

	rdb := connectRedis(log)
	if rdb != nil {
		defer rdb.Close()
	}
	locks := newLocker(cfg, rdb, log)

	publisher := queue.NewPublisher(cfg.RabbitURL, cfg.EventsQueue, log)
	defer publisher.Close()

	clock := auction.SystemClock{}
	engine := auction.New(store, locks,
		auction.WithEvents(publisher),
		auction.WithLogger(log),
		auction.WithLockWait(cfg.LockWait),
	)
	auctions := auction.NewCurrentAuctionProvider(store, locks)

	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load rate limit config")
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load cache config")
	}
	sweepCfg, err := config.LoadSweepConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load sweep config")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	router.RegisterRoutes(e)
	h := handler.NewAuctionHandler(engine, auctions, clock, rdb, cacheCfg.Prefix, log)
	router.RegisterAuction(e, h, cfg.JWTSecret, router.Middlewares{
		RateLimit:  middleware.NewTokenBucket(rlCfg, rdb, log),
		BoardCache: middleware.NewRedisCache(cacheCfg, rdb, log),
	})

	sweeper := scheduler.NewSweeper(engine, sweepCfg, clock, log)
	audit := queue.NewAuditConsumer(cfg.RabbitURL, cfg.EventsQueue, cfg.AuditLogDir, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return audit.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := repository.NewMemoryStore()
		if cfg.SeedDemo {
			seedDemo(store, log)
		}
		log.Warn().Msg("using in-memory store, state is lost on restart")
		return store, func() {}, nil
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	if cfg.DB.Migrate {
		if err := migrate(ctx, db); err != nil {
			closeDB()
			return nil, nil, err
		}
		log.Info().Msg("schema migrated")
	}
	return repository.NewMySQLStore(db, cfg.StoreTimeout, log), closeDB, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return database.Migrate(ctx, db)
}

func connectRedis(log zerolog.Logger) *redis.Client {
	rc, err := config.LoadRedisConfig()
	if err != nil {
		log.Warn().Err(err).Msg("invalid redis config, redis features disabled")
		return nil
	}
	rdb := config.NewRedisClient(rc)
	if rdb == nil {
		log.Warn().Str("addr", rc.Addr).Msg("redis unreachable, rate limiting and board cache disabled")
	}
	return rdb
}

func newLocker(cfg config.Config, rdb *redis.Client, log zerolog.Logger) lock.Locker {
	if cfg.LockDriver == config.DriverRedis && rdb != nil {
		return lock.NewRedis(rdb, cfg.LockTTL, log)
	}
	if cfg.LockDriver == config.DriverRedis {
		log.Warn().Msg("redis unavailable, falling back to in-process locks")
	}
	return lock.NewLocal()
}
