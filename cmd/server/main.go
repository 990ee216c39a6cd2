package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/radical-ticket/internal/config"
	"github.com/iliyamo/radical-ticket/internal/database"
	"github.com/iliyamo/radical-ticket/internal/handler"
	"github.com/iliyamo/radical-ticket/internal/middleware"
	"github.com/iliyamo/radical-ticket/internal/queue"
	"github.com/iliyamo/radical-ticket/internal/reservation"
	"github.com/iliyamo/radical-ticket/internal/router"
	"github.com/iliyamo/radical-ticket/internal/service"
	"github.com/iliyamo/radical-ticket/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		if cfg.Backend == config.BackendRedis {
			log.Fatal(err)
		}
		log.Printf("redis unavailable, rate limiting is per process: %v", err)
	} else {
		defer rdb.Close()
	}

	backend, closer, err := openBackend(ctx, cfg, rdb)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	opts := []reservation.Option{reservation.WithSeed(cfg.FraudSeed)}
	if cfg.EventsEnabled {
		opts = append(opts, reservation.WithPublisher(service.NewAMQPPublisher(cfg.AMQPURL)))
		go func() {
			if err := queue.StartReservationConsumer(cfg.AMQPURL, cfg.ReservationLog); err != nil {
				log.Printf("reservation-consumer: stopped: %v", err)
			}
		}()
	}
	coord := reservation.New(backend, opts...)

	rlCfg := config.LoadRateLimitConfig()
	limiter := middleware.NewLocalLimiter(rlCfg)
	if rdb != nil {
		limiter = middleware.NewTokenBucket(rlCfg, rdb)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	router.RegisterRoutes(e, handler.NewTicketHandler(coord, cfg.MaxPopulate), router.Options{
		AdminSecret:    cfg.AdminJWTSecret,
		ReserveLimiter: limiter,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, backend=%s)", addr, cfg.Env, cfg.Backend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBackend selects the ticket store named by cfg.Backend.  The returned
// closer releases any connection opened here; rdb stays owned by the caller.
func openBackend(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Backend, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return store.NewRedis(rdb, cfg.RedisPrefix), nopCloser{}, nil
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		if err := database.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store.NewMySQL(db), db, nil
	default:
		return store.NewMemory(), nopCloser{}, nil
	}
}
