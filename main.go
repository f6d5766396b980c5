package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/routers"
	"coursehub/scheduler"
	"coursehub/services/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.AppEnv); err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	database.ConnectDb()

	events.Init(config.AppConfig.KafkaBrokers, config.AppConfig.KafkaTopic, config.AppConfig.KafkaBatchTimeout)
	defer events.Close()

	cronRunner, err := scheduler.Initialize(database.Database.Db, config.AppConfig.CompletionCron)
	if err != nil {
		logger.Fatal("Failed to start schedulers", zap.Error(err))
	}
	defer cronRunner.Stop()

	limiter := middleware.NewRateLimiter(nil)
	if addr := config.AppConfig.RedisAddr; addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: config.AppConfig.RedisPassword})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, login rate limiting will fail open", zap.String("addr", addr), zap.Error(err))
		}
		defer client.Close()
		limiter = middleware.NewRateLimiter(middleware.NewRedisCounter(client))
	} else {
		logger.Info("Login rate limiting is disabled (REDIS_ADDR is empty)")
	}

	app := routers.NewApp(limiter)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Server is running", zap.String("port", config.AppConfig.Port))
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
