package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"merchflow/backend/internal/app"
	"merchflow/backend/internal/config"
	"merchflow/backend/internal/logger"
)

func main() {
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, slog.Default()); err != nil {
		slog.Error("application exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.DB.Close()
	defer deps.NSQProducer.Stop()

	a, err := app.New(cfg, deps.DB, deps.Weaviate, deps.NSQProducer)
	if err != nil {
		return err
	}

	var consumer *nsq.Consumer
	if cfg.EnableEmbedWorker {
		consumer, err = nsq.NewConsumer(config.TopicEmbed, "backend", nsq.NewConfig())
		if err != nil {
			return err
		}
		consumer.AddHandler(a.EmbedConsumer)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			return err
		}
		log.Info("embed worker connected", "topic", config.TopicEmbed)
	}

	if cfg.EnableAPI {
		err = a.Run(ctx)
	} else {
		<-ctx.Done()
	}

	if consumer != nil {
		consumer.Stop()
		<-consumer.StopChan
	}
	return err
}
