// Package store holds the auth persistence adapters. Each subpackage offers an
// in-memory implementation for development and tests and a networked one for
// deployments; all of them report absence and uniqueness through sentinel errors.
package store
