package sentinel

import "errors"

// Stores and infrastructure adapters return these (optionally wrapped with
// fmt.Errorf("...: %w", ...)) and services translate them into domain errors:
//   - ErrNotFound: user, task, or pending verification does not exist
//   - ErrConflict: unique key (email) already taken
//   - ErrExpired: pending verification or token past its expiry
//   - ErrUnavailable: backing store or broker unreachable
//
// Input validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
