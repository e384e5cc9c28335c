package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"campus/internal/platform/middleware"
	dErrors "campus/pkg/domain-errors"
)

// Claims are the access token claims read by portal clients. The profile
// fields use the camelCase names the browser and CLI decoders expect.
type Claims struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Subject is the identity the token is issued for.
type Subject struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

func NewJWTService(signingKey string, issuer string, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAccessToken signs an HS256 token for subject. It returns the token
// and its jti, which logout records for revocation.
func (s *JWTService) GenerateAccessToken(subject Subject, expiresIn time.Duration) (string, string, error) {
	now := s.now()
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:     subject.Email,
		FirstName: subject.FirstName,
		LastName:  subject.LastName,
		Role:      subject.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signedToken, jti, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// MiddlewareValidator adapts JWTService to middleware.JWTValidator.
type MiddlewareValidator struct {
	service *JWTService
}

func NewMiddlewareValidator(service *JWTService) *MiddlewareValidator {
	return &MiddlewareValidator{service: service}
}

func (a *MiddlewareValidator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	out := &middleware.JWTClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
		JTI:    claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
