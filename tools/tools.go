//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// Air - Live reload for Go apps; pair with DEV=true so templates and
// static assets are read from frontend/ on every request.
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run:     DEV=true SERVICES=http,dev-users air --build.cmd "go build -o ./tmp/userdesk ./cmd/userdesk" --build.bin ./tmp/userdesk
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates internal/mocks (go generate ./internal/mocks)
//   Install: go install go.uber.org/mock/mockgen@v0.6.0
