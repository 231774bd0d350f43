// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests are skipped when DATABASE_URL is unset; schema
// setup uses the embedded goose migrations, and every test body runs in a
// transaction that is rolled back afterwards.
package testdb
