package app

import (
	"context"
	"errors"
	"fmt"

	"petmatch/internal/cache"
	"petmatch/internal/config"
	"petmatch/internal/database"
	"petmatch/internal/events"
	"petmatch/internal/logging"
	"petmatch/internal/matcher"
	"petmatch/internal/notify"
	"petmatch/internal/repository"
	"petmatch/internal/scoring"
	"petmatch/internal/service"
	"petmatch/internal/storage"
)

// App owns every long-lived dependency of the service.
type App struct {
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Queue    *matcher.Queue

	logger  logging.Logger
	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	a := &App{logger: logger}

	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.CloseDB)

	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	a.Repo = repository.NewRepository(db.DB)

	dispatcher, err := newDispatcher(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	templates, err := notify.LoadTemplates(cfg.Notify.TemplatesFile)
	if err != nil {
		a.close()
		return nil, err
	}

	kinds, err := matcher.NewKindResolver(cfg.Match.KindSource, a.Repo.Post)
	if err != nil {
		a.close()
		return nil, err
	}

	deps := matcher.Deps{
		Posts:      a.Repo.Post,
		Images:     a.Repo.Image,
		Matches:    a.Repo.Match,
		Users:      a.Repo.User,
		Animals:    a.Repo.Animal,
		Storage:    minioClient,
		Scorer:     scoring.NewClient(cfg.Scorer.URL, cfg.Scorer.Timeout),
		Dispatcher: dispatcher,
		Templates:  templates,
		Kinds:      kinds,
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			a.close()
			return nil, err
		}
		deps.Events = publisher
		a.closers = append(a.closers, publisher.Close)
		logger.Info(ctx, "match events enabled", "topic", cfg.Kafka.Topic)
	}

	opts := matcher.QueueOptions{Size: cfg.Queue.Size, Workers: cfg.Queue.Workers}
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			a.close()
			return nil, err
		}
		opts.Guard = cache.NewRedisTriggerGuard(client, cfg.Redis.TriggerTTL)
		a.closers = append(a.closers, client.Close)
		logger.Info(ctx, "match trigger guard enabled", "ttl", cfg.Redis.TriggerTTL.String())
	}

	orchestrator := matcher.NewOrchestrator(deps, logger.With("component", "matcher"))
	a.Queue = matcher.NewQueue(orchestrator, opts, logger.With("component", "match_queue"))
	a.Queue.Start(ctx)

	a.Services = service.NewService(a.Repo, cfg, minioClient, a.Queue, logger)

	return a, nil
}

func newDispatcher(ctx context.Context, cfg *config.Config, logger logging.Logger) (notify.Dispatcher, error) {
	if !cfg.FCM.Enabled {
		logger.Warn(ctx, "FCM disabled, notifications are only logged")
		return notify.NewLogDispatcher(logger), nil
	}

	dispatcher, err := notify.NewFCMDispatcher(ctx, cfg.FCM)
	if err != nil {
		return nil, fmt.Errorf("failed to set up FCM: %w", err)
	}
	return dispatcher, nil
}

// Shutdown drains the match queue and releases every connection.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Queue != nil {
		if err := a.Queue.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
