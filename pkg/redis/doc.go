// Package redis connects to Redis with startup retries and exposes a
// readiness healthcheck. Used by the quota package's cross-instance lock.
package redis
