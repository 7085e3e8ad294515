package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/config"
	"github.com/MadiBrom/ClassShelf/internal/handler"
	"github.com/MadiBrom/ClassShelf/internal/metadata"
	"github.com/MadiBrom/ClassShelf/internal/repository"
	"github.com/MadiBrom/ClassShelf/internal/server"
	"github.com/MadiBrom/ClassShelf/internal/service"
	"github.com/MadiBrom/ClassShelf/migrations"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
	"github.com/MadiBrom/ClassShelf/pkg/kafka"
	"github.com/MadiBrom/ClassShelf/pkg/logger"
	"github.com/MadiBrom/ClassShelf/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "classshelf")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	meta := metadata.NewClient(cfg.OpenLibrary, log)

	// The resolution feed is optional; without brokers the coordinator just
	// skips publishing.
	var producer sarama.SyncProducer
	if cfg.Kafka.Enabled() {
		producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
	}

	jwtMgr := auth.NewManager(cfg.Auth)
	svc := service.NewService(repo, meta, producer, jwtMgr, log)

	h := handler.New(svc, jwtMgr, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		_ = producer.Close()
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
