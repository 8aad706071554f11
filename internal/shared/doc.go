// Package shared holds helpers used across packages that do not belong to
// any one layer.
//
// testutil captures slog output so tests can assert on what was logged and
// at which level.
package shared
