package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gopherai-docqa/internal/ai"
	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/cache"
	"gopherai-docqa/internal/config"
	"gopherai-docqa/internal/index"
	"gopherai-docqa/internal/ingest"
	"gopherai-docqa/internal/model"
	mysqlClient "gopherai-docqa/internal/platform/mysql"
	rabbitmqClient "gopherai-docqa/internal/platform/rabbitmq"
	redisClient "gopherai-docqa/internal/platform/redis"
	"gopherai-docqa/internal/repository"
	"gopherai-docqa/internal/worker"
)

type App struct {
	Config       *config.Config
	Orchestrator *app.Orchestrator

	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Publisher    *rabbitmqClient.IngestEventPublisher
	Ledger       *repository.DocumentRecordRepository
	LedgerWorker *worker.IngestLedgerWorker

	StartedAt time.Time
}

// New connects every enabled dependency and builds the pipeline. On error
// anything already opened is closed.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg, StartedAt: time.Now()}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	if cfg.MySQL.Enabled {
		if a.MySQL, err = mysqlClient.New(ctx, cfg.MySQLDSN()); err != nil {
			return a, err
		}
		a.Ledger = repository.NewDocumentRecordRepository(a.MySQL)
	}

	var vectorCache index.VectorCache
	if cfg.Redis.Enabled {
		a.Redis, err = redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return a, err
		}
		vectorCache = cache.NewEmbeddingCache(a.Redis, cfg.Redis.EmbeddingTTL())
	}

	var publisher app.IngestEventPublisher
	if cfg.RabbitMQ.Enabled {
		if a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IngestEventQueue); err != nil {
			return a, err
		}
		a.Publisher = rabbitmqClient.NewIngestEventPublisher(a.MQConn, cfg.RabbitMQ.IngestEventQueue)
		publisher = a.Publisher
		if a.Ledger != nil {
			a.LedgerWorker = worker.NewIngestLedgerWorker(a.MQConn, a.Ledger, cfg.RabbitMQ.IngestEventQueue)
			if err = a.LedgerWorker.Start(ctx); err != nil {
				return a, fmt.Errorf("start ledger worker failed: %w", err)
			}
		}
	} else if a.Ledger != nil {
		publisher = directLedger{repo: a.Ledger}
	}

	if a.Orchestrator, err = NewOrchestrator(cfg, vectorCache, publisher); err != nil {
		return a, err
	}
	log.Printf("pipeline ready: mode=%s generator=%s mysql=%t redis=%t rabbitmq=%t",
		cfg.Retrieval.Mode, cfg.Generator.Provider, cfg.MySQL.Enabled, cfg.Redis.Enabled, cfg.RabbitMQ.Enabled)
	return a, nil
}

// NewOrchestrator builds the ingest, index and generation pipeline from cfg.
// vectors and publisher may be nil.
func NewOrchestrator(cfg *config.Config, vectors index.VectorCache, publisher app.IngestEventPublisher) (*app.Orchestrator, error) {
	ingestor, err := ingest.New(ingest.Config{
		Chunking:     cfg.Ingest.Chunking,
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
	})
	if err != nil {
		return nil, fmt.Errorf("build ingestor failed: %w", err)
	}

	var rep *index.Representer
	if cfg.Retrieval.Mode == index.ModeVector {
		embedder, err := ai.NewEmbedder(ai.EmbeddingConfig{
			Provider: cfg.Embedding.Provider,
			BaseURL:  cfg.Embedding.BaseURL,
			APIKey:   cfg.Embedding.APIKey,
			Model:    cfg.Embedding.Model,
			Timeout:  cfg.Embedding.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("build embedder failed: %w", err)
		}
		rep = index.NewRepresenter(embedder, index.RepresenterConfig{
			BatchSize:         cfg.Embedding.BatchSize,
			Concurrency:       cfg.Embedding.Concurrency,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		}, vectors)
	}
	builder, err := index.NewBuilder(index.Config{
		Mode:            cfg.Retrieval.Mode,
		TopK:            cfg.Retrieval.TopK,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
	}, rep)
	if err != nil {
		return nil, fmt.Errorf("build index builder failed: %w", err)
	}

	generator, err := ai.NewGenerator(ai.GeneratorConfig{
		Provider:  cfg.Generator.Provider,
		BaseURL:   cfg.Generator.BaseURL,
		APIKey:    cfg.Generator.APIKey,
		Model:     cfg.Generator.Model,
		MaxTokens: cfg.Generator.MaxTokens,
		Timeout:   cfg.Generator.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("build generator failed: %w", err)
	}

	return app.NewOrchestrator(ingestor, builder, generator, publisher, cfg.Generator.Timeout()), nil
}

// directLedger writes ingest events straight to the ledger when no broker
// is configured.
type directLedger struct {
	repo *repository.DocumentRecordRepository
}

func (d directLedger) Publish(ctx context.Context, event model.IngestEvent) error {
	record := model.NewDocumentRecord(event)
	return d.repo.Create(ctx, &record)
}

func (a *App) Close() error {
	var errs []error
	if a.LedgerWorker != nil {
		a.LedgerWorker.Close()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
