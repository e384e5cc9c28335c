package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"

	"campus/internal/auth/mailer"
	authservice "campus/internal/auth/service"
	"campus/internal/auth/store/revocation"
	userstore "campus/internal/auth/store/user"
	"campus/internal/auth/store/verification"
	httpapi "campus/internal/http"
	"campus/internal/platform/config"
	"campus/internal/platform/kafka"
	"campus/internal/platform/postgres"
	"campus/internal/platform/redis"
	taskservice "campus/internal/tasks/service"
	taskstore "campus/internal/tasks/store"
	"campus/pkg/platform/circuit"
)

type userBackend interface {
	authservice.UserStore
	Count(ctx context.Context) (int, error)
}

// backends holds the stores selected by configuration. Each concern falls
// back to memory when its connection setting is empty.
type backends struct {
	users         userBackend
	verifications authservice.VerificationStore
	revocations   authservice.TokenRevocationList
	tasks         taskservice.Store
	mailer        authservice.Mailer
	health        map[string]httpapi.HealthCheck

	kinds   []string
	closers []func()
}

func openBackends(ctx context.Context, cfg config.Server, log *slog.Logger) (*backends, error) {
	b := &backends{health: make(map[string]httpapi.HealthCheck)}
	if err := b.openRedis(ctx, cfg.Redis); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openPostgres(ctx, cfg.Postgres); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openMail(ctx, cfg.Mail, log); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) openRedis(ctx context.Context, cfg config.RedisConfig) error {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return err
	}
	if client == nil {
		b.verifications = verification.NewInMemory()
		b.revocations = revocation.NewInMemoryTRL()
		b.kinds = append(b.kinds, "codes=memory")
		return nil
	}
	b.verifications = verification.NewRedis(client.Client)
	b.revocations = revocation.NewRedisTRL(client.Client)
	b.health["redis"] = client.Health
	b.kinds = append(b.kinds, "codes=redis")
	b.closers = append(b.closers, func() { _ = client.Close() })
	return nil
}

func (b *backends) openPostgres(ctx context.Context, cfg config.PostgresConfig) error {
	if cfg.DSN == "" {
		b.users = userstore.New()
		b.tasks = taskstore.NewInMemory()
		b.kinds = append(b.kinds, "db=memory")
		return nil
	}

	db, err := postgres.OpenSQL(ctx, cfg)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func() { _ = db.Close() })
	pool, err := postgres.OpenPool(ctx, cfg)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, pool.Close)

	b.users = userstore.NewPostgres(db)
	b.tasks = taskstore.NewPostgres(pool)
	b.health["postgres"] = sqlHealth(db)
	b.health["postgres_pool"] = poolHealth(pool)
	b.kinds = append(b.kinds, "db=postgres")
	return nil
}

func (b *backends) openMail(ctx context.Context, cfg config.MailConfig, log *slog.Logger) error {
	client, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return err
	}
	if client == nil {
		b.mailer = mailer.NewLogMailer(cfg.Sender, log)
		b.kinds = append(b.kinds, "mail=log")
		return nil
	}
	b.closers = append(b.closers, client.Close)
	if err := kafka.EnsureTopic(ctx, client, cfg.KafkaTopic, 1); err != nil {
		return err
	}
	b.mailer = mailer.NewFallbackMailer(
		mailer.NewKafkaMailer(cfg.Sender, cfg.KafkaTopic, client),
		mailer.NewLogMailer(cfg.Sender, log),
		circuit.New("mail-kafka"),
		log,
	)
	b.health["kafka"] = kafkaHealth(client)
	b.kinds = append(b.kinds, "mail=kafka")
	return nil
}

func (b *backends) describe() string {
	return strings.Join(b.kinds, ",")
}

// Close releases connections in reverse order of opening.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func sqlHealth(db *sql.DB) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

func poolHealth(pool *pgxpool.Pool) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

func kafkaHealth(client *kgo.Client) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("kafka ping: %w", err)
		}
		return nil
	}
}
