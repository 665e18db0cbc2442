package config

import "errors"

// Errors returned while loading and validating planner documents.
var (
	// ErrConfigNotFound indicates the configuration file was not found.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidFormat indicates the configuration format is invalid.
	ErrInvalidFormat = errors.New("invalid configuration format")

	// ErrUnsupportedFormat indicates the file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")

	// ErrValidationFailed indicates configuration validation failed.
	ErrValidationFailed = errors.New("configuration validation failed")

	// ErrMissingEnvVar is returned by strict expansion and ${VAR:?msg} references.
	ErrMissingEnvVar = errors.New("required environment variable not set")

	// ErrBuildFailed indicates a planning request could not be built from the document.
	ErrBuildFailed = errors.New("failed to build planning request from configuration")

	// ErrSchemaGenerationFailed indicates JSON schema generation failed.
	ErrSchemaGenerationFailed = errors.New("failed to generate JSON schema")
)
