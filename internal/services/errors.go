package services

import "errors"

// Service-level sentinel errors. Handlers map these to HTTP status codes
// with errors.Is, so wrap them with fmt.Errorf("...: %w", Err...) to add
// context without breaking the mapping.
var (
	// ErrUploadNotFound indicates the referenced upload does not exist on disk
	ErrUploadNotFound = errors.New("upload not found")

	// ErrReportNotFound indicates the referenced report does not exist on disk
	ErrReportNotFound = errors.New("report not found")

	// ErrUnsupportedFormat indicates the uploaded file has an extension
	// outside the configured allow list
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge indicates the upload exceeds the configured size cap
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyTable indicates parsing produced no usable rows or columns
	ErrEmptyTable = errors.New("no tabular data found in file")

	// ErrInvalidInput indicates request parameters that fail business
	// validation, such as an unknown chart kind or column name
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownProvider indicates an analysis provider name that is not
	// recognised at all
	ErrUnknownProvider = errors.New("unknown analysis provider")

	// ErrProviderNotConfigured indicates a recognised provider whose
	// credentials are missing from the configuration
	ErrProviderNotConfigured = errors.New("analysis provider not configured")
)
