// Package shared provides common utilities and test helpers used across
// the codebase. The testutil subpackage contains a buffered slog handler
// for asserting on structured log output in tests.
package shared
