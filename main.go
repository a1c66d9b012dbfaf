// File: /main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"vanlife-api/config"
	"vanlife-api/database"
	"vanlife-api/jobs"
	"vanlife-api/middleware"
	"vanlife-api/models"
	"vanlife-api/repositories"
	"vanlife-api/routes"
	"vanlife-api/services"
	"vanlife-api/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, database.LogLevel(cfg.IsProduction()))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	hasher := services.NewBcryptHasher(bcrypt.DefaultCost)
	if cfg.SeedData {
		today := models.DateOf(time.Now().In(cfg.ServerTimezone))
		if err := database.SeedData(db, hasher, cfg, today, log); err != nil {
			log.WithError(err).Warn("failed to seed database")
		}
	}

	tokens := services.NewTokenService(cfg)
	ledger, stopLedger := newTokenLedger(cfg, log)
	mailer := services.NewEmailService(cfg, log)
	dispatcher, stopConsumer := newDispatcher(cfg, mailer, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:     cfg,
		Store:      repositories.NewGormStore(db),
		Tokens:     tokens,
		Resets:     services.NewResetService(tokens, ledger, log),
		Hasher:     hasher,
		Media:      services.NewMediaStore(cfg.StaticFolder, cfg.DefaultUserImage, cfg.DefaultVanImage),
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Metrics:    middleware.NewMetrics(),
		Log:        log,
		Clock:      time.Now,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.WithField("port", cfg.Port).WithField("env", cfg.Environment).Info("starting VanLife API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.WithError(err).Warn("mail dispatcher did not drain")
	}
	stopConsumer()
	stopLedger()
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server stopped")
}

// newTokenLedger uses Redis when configured, otherwise an in-process ledger
// with its cleanup job. The returned func releases it.
func newTokenLedger(cfg *config.Config, log *logrus.Logger) (services.TokenLedger, func()) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis token ledger")
		return services.NewRedisTokenLedger(client), func() { client.Close() }
	}

	ledger := services.NewMemoryTokenLedger()
	job := jobs.NewTokenLedgerCleanupJob(ledger, time.Minute, log)
	job.Start()
	return ledger, job.Stop
}

// newDispatcher publishes registration mail to RabbitMQ when configured and
// consumes it in-process; otherwise mail goes through a bounded channel.
func newDispatcher(cfg *config.Config, mailer services.Mailer, log *logrus.Logger) (services.Dispatcher, func()) {
	if cfg.AMQPURL != "" {
		dispatcher, err := services.DialAMQPDispatcher(cfg.AMQPURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		consumer := jobs.NewMailConsumer(cfg.AMQPURL, mailer, log)
		consumer.Start()
		return dispatcher, consumer.Stop
	}

	dispatcher := services.NewChannelDispatcher(mailer, log, cfg.MailWorkers, cfg.MailQueueSize, cfg.MailPerMinute)
	return dispatcher, func() {}
}
