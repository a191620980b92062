// Package httpserver wraps net/http with graceful shutdown, signal handling
// and health-probe helpers.
package httpserver
