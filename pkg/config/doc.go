// Package config loads typed configuration structs from environment
// variables, with optional .env support for local development. Each config
// type is parsed once per process; subsequent loads return the cached value.
package config
