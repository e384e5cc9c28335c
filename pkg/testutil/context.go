package testutil

import (
	"net/http"
	"time"

	"campus/pkg/requestcontext"
)

// WithUserID marks the request as authenticated for userID, the way the bearer
// middleware would.
func WithUserID(req *http.Request, userID string) *http.Request {
	return WithPrincipal(req, requestcontext.Principal{UserID: userID})
}

// WithPrincipal attaches a full principal to the request context.
func WithPrincipal(req *http.Request, p requestcontext.Principal) *http.Request {
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = time.Now().Add(time.Hour)
	}
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}
