package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mannsakha/sakha-server/internal/config"
	"github.com/mannsakha/sakha-server/internal/db"
	"github.com/mannsakha/sakha-server/internal/httpapi"
	"github.com/mannsakha/sakha-server/internal/httpapi/handlers"
	"github.com/mannsakha/sakha-server/internal/store/rabbitmq"
	"github.com/mannsakha/sakha-server/internal/store/redisstore"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rds.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, password reset disabled", zap.Error(err))
		rds = nil
	}
	cancel()

	var mail handlers.EmailQueue
	if pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		logger.Warn("rabbit unreachable, outbound email disabled", zap.Error(err))
	} else {
		mail = pub
		defer pub.Close()
	}

	r := httpapi.NewRouter(gdb, cfg, rds, mail, logger)

	logger.Info("server starting", zap.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
