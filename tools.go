//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// - github.com/matryer/moq (mocks for the consumer-side interfaces, see //go:generate lines in tests)
// - github.com/pressly/goose/v3/cmd/goose (ad-hoc migrations; cmd/migrate covers the usual path)
