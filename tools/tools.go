//go:build tools

// Package tools documents development tool dependencies.
// These tools are run with `go run` or installed with `go install`; they are
// not tracked in go.mod because the service never imports them.
package tools

// Development tools:
//
// mockgen - regenerates internal/mocks after a port interface changes
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0
//
// Air - live reload; with DEV=true templates under web/templates are read from disk
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
