// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It owns the schema migrations, maps
// PostgreSQL errors onto store errors, and converts between rows and domain
// entities.
package postgres
