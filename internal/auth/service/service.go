package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campus/internal/audit"
	"campus/internal/auth/device"
	"campus/internal/auth/mailer"
	"campus/internal/auth/models"
	jwttoken "campus/internal/jwt_token"
	"campus/internal/platform/metrics"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type VerificationStore interface {
	Save(ctx context.Context, v *models.Verification) error
	Find(ctx context.Context, email string, purpose models.Purpose) (*models.Verification, error)
	MarkVerified(ctx context.Context, email string, purpose models.Purpose) error
	Delete(ctx context.Context, email string, purpose models.Purpose) error
}

type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type TokenGenerator interface {
	GenerateAccessToken(subject jwttoken.Subject, expiresIn time.Duration) (string, string, error)
}

type Mailer interface {
	SendVerification(ctx context.Context, msg mailer.Message) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Config holds the lifetimes the service enforces.
type Config struct {
	TokenTTL        time.Duration
	VerificationTTL time.Duration
}

const (
	defaultTokenTTL        = 24 * time.Hour
	defaultVerificationTTL = time.Hour
)

// Service implements registration, email verification, login, password reset
// and logout for portal users.
type Service struct {
	users          UserStore
	verifications  VerificationStore
	trl            TokenRevocationList
	jwt            TokenGenerator
	mailer         Mailer
	cfg            Config
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	generateCode   func() (string, error)
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithCodeGenerator replaces the verification code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.generateCode = gen
	}
}

// New constructs a Service.
func New(
	users UserStore,
	verifications VerificationStore,
	trl TokenRevocationList,
	jwt TokenGenerator,
	mail Mailer,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = defaultVerificationTTL
	}
	s := &Service{
		users:         users,
		verifications: verifications,
		trl:           trl,
		jwt:           jwt,
		mailer:        mail,
		cfg:           cfg,
		logger:        slog.Default(),
		tracer:        otel.Tracer("campus/auth"),
		generateCode:  defaultCodeGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "auth."+name, trace.WithAttributes(attrs...))
}

// endSpan records err on span unless it is a client-facing domain error.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeUnavailable {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, event audit.Event) {
	event.Action = action
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		event.Device = device.ParseUserAgent(ua)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
		)
	}
}

// authFailure logs and audits a rejected attempt. Messages returned to
// clients stay generic; the reason lives here.
func (s *Service) authFailure(ctx context.Context, action audit.Action, reason string, event audit.Event) {
	event.Reason = reason
	s.logger.WarnContext(ctx, "auth attempt rejected",
		"action", action,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logAudit(ctx, action, event)
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}
