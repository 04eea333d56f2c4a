package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rolechat/internal/app"
	"rolechat/internal/config"
	"rolechat/internal/memory"
	"rolechat/internal/model"
	mysqlClient "rolechat/internal/platform/mysql"
	rabbitmqClient "rolechat/internal/platform/rabbitmq"
	redisClient "rolechat/internal/platform/redis"
	"rolechat/internal/repository"
	"rolechat/internal/worker"
)

type App struct {
	Config *config.Config
	Log    *zap.Logger
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	MemoryClient *memory.Client
	Scopes       memory.ScopeSet
	Ingestor     memory.Ingestor
	MemoryWorker *worker.MemoryIngestWorker

	StartedAt time.Time
}

func New(ctx context.Context, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.AIRole{}, &model.Conversation{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	memoryCli := memory.NewClient(memory.Config{
		BaseURL: cfg.Memory.BaseURL,
		APIKey:  cfg.Memory.APIKey,
		Enabled: cfg.Memory.Enabled,
	})
	scopes := memory.NewScopeSet(cfg.Memory.Namespace)
	if !memoryCli.Enabled() {
		log.Info("memory api disabled, chat runs without external memory")
	}

	// The broker is optional. With it, memory writes go through the queue;
	// without it, they run inline on the request path.
	var mqConn *amqp.Connection
	var ingestor memory.Ingestor
	var memoryWorker *worker.MemoryIngestWorker
	if cfg.RabbitMQ.URL != "" {
		mqConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn("rabbitmq unavailable, falling back to inline memory ingestion", zap.Error(err))
			mqConn = nil
		}
	}
	if mqConn != nil {
		memoryWorker = worker.NewMemoryIngestWorker(mqConn, memoryCli, cfg.RabbitMQ.MemoryIngestQueue, log)
		if err := memoryWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start memory ingest worker failed: %w", err)
		}
		ingestor = rabbitmqClient.NewMemoryPublisher(mqConn, cfg.RabbitMQ.MemoryIngestQueue)
	} else {
		ingestor = memory.NewSyncIngestor(memoryCli, log)
	}

	roleService := app.NewRoleService(repository.NewRoleRepository(mysqlDB))
	seeded, err := roleService.SeedFromFile(cfg.Roles.SeedFile)
	if err != nil {
		log.Warn("seed roles failed", zap.String("file", cfg.Roles.SeedFile), zap.Error(err))
	} else {
		log.Info("roles seeded", zap.Int("count", seeded))
	}

	return &App{
		Config:       cfg,
		Log:          log,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		MemoryClient: memoryCli,
		Scopes:       scopes,
		Ingestor:     ingestor,
		MemoryWorker: memoryWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MemoryWorker != nil {
		a.MemoryWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
