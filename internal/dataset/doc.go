// Package dataset defines the in-memory table model shared by the ingest,
// analytics, charts and report packages. A Table holds header names and string
// cells exactly as parsed from the source file; Clean normalizes missing
// values and drops empty rows and columns, and InferTypes classifies each
// column as numeric, datetime or text by sampling cell values.
package dataset
