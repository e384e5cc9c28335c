// Package guard gates client navigation on the presence of a session.
package guard

import (
	"log/slog"
	"strings"
	"sync"

	"campus/internal/client/session"
)

// EntryRoute is where anonymous users are sent.
const EntryRoute = "/"

// SessionSource is the slice of the session manager the guard reads.
type SessionSource interface {
	Current() *session.Session
}

// Decision is the outcome of one navigation attempt.
type Decision struct {
	Allowed  bool
	Redirect string
}

type Guard struct {
	sessions SessionSource
	logger   *slog.Logger
	public   map[string]bool
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithPublicRoutes lists routes that never require a session.
func WithPublicRoutes(routes ...string) Option {
	return func(g *Guard) {
		for _, r := range routes {
			g.public[normalizeRoute(r)] = true
		}
	}
}

func New(sessions SessionSource, opts ...Option) *Guard {
	g := &Guard{
		sessions: sessions,
		logger:   slog.Default(),
		public:   map[string]bool{EntryRoute: true},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanActivate reads the current session once and decides whether route may
// be entered.
func (g *Guard) CanActivate(route string) Decision {
	route = normalizeRoute(route)
	if g.public[route] {
		return Decision{Allowed: true}
	}
	if g.sessions.Current() != nil {
		return Decision{Allowed: true}
	}
	g.logger.Debug("navigation blocked", "route", route, "redirect", EntryRoute)
	return Decision{Redirect: EntryRoute}
}

// LandingRoute is the first page shown after login for role.
func LandingRoute(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "teacher":
		return "/teacher"
	case "parent":
		return "/parent"
	default:
		// students, admins and unknown roles share the main dashboard
		return "/dashboard"
	}
}

// Navigator applies guard decisions and keeps the route history.
type Navigator struct {
	guard *Guard

	mu      sync.Mutex
	current string
	history []string
}

func NewNavigator(g *Guard) *Navigator {
	return &Navigator{guard: g, current: EntryRoute, history: []string{EntryRoute}}
}

// Navigate moves to route, or to the guard's redirect, and returns where it
// ended up.
func (n *Navigator) Navigate(route string) (string, Decision) {
	d := n.guard.CanActivate(route)
	target := normalizeRoute(route)
	if !d.Allowed {
		target = d.Redirect
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if target != n.current {
		n.current = target
		n.history = append(n.history, target)
	}
	return target, d
}

// AfterLogin navigates to the landing route for the signed-in role.
func (n *Navigator) AfterLogin(s *session.Session) (string, Decision) {
	if s == nil {
		return n.Navigate(EntryRoute)
	}
	return n.Navigate(LandingRoute(s.Role))
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return EntryRoute
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	return route
}
