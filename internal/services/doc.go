// Package services implements the business logic layer between the HTTP
// handlers and the data packages. Services own upload processing, statistics,
// chart and report generation, and the external analysis providers, so that
// handlers stay thin and business rules remain testable in one place.
//
// Services follow a common shape: a struct holding injected dependencies, a
// NewXxxService constructor, and context-aware methods that return sentinel
// errors handlers can map to HTTP status codes with errors.Is.
package services
