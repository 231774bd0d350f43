// Package store defines the persistence interfaces for users and tasks and the
// errors their implementations return. Business logic depends on these
// interfaces only; the PostgreSQL implementations live in internal/platform/postgres.
package store
