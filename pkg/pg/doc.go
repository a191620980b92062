// Package pg manages the PostgreSQL connection pool: retrying connect,
// embedded goose migrations, health checks and error classification helpers.
package pg
