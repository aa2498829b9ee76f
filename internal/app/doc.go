// Package app wires the application together: configuration, logging,
// OpenTelemetry, services, the chi router and the HTTP server lifecycle.
// It is the only package that knows about every other layer.
package app
