// Package config provides application configuration loading and validation.
//
// Configuration is resolved from three layers, in order of precedence:
// environment variables with the DATASIGHT prefix, an optional YAML config
// file, and built-in defaults. Relative directory paths are resolved
// against the executable directory so the server behaves the same
// regardless of the working directory it was launched from.
package config
