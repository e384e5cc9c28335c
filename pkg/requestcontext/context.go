// Package requestcontext carries request-scoped values (caller, client
// metadata, request ID, request time) without tying services to net/http.
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{UserID: "u-1"})
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	principalKey key = iota
	clientKey
	requestIDKey
	requestTimeKey
)

// Principal is the authenticated caller as established from a bearer token.
type Principal struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type clientMetadata struct {
	ip        string
	userAgent string
}

// CurrentPrincipal returns the authenticated caller, if any.
func CurrentPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// UserID is the caller's subject, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	p, _ := CurrentPrincipal(ctx)
	return p.UserID
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// WithClientMetadata records where the request came from for audit events.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey, clientMetadata{ip: clientIP, userAgent: userAgent})
}

func ClientIP(ctx context.Context) string {
	m, _ := ctx.Value(clientKey).(clientMetadata)
	return m.ip
}

func UserAgent(ctx context.Context) string {
	m, _ := ctx.Value(clientKey).(clientMetadata)
	return m.userAgent
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the time the request started, or the wall clock outside a request
// (CLI, audit worker).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
