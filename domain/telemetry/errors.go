package telemetry

import "errors"

var (
	// ErrUnknownExporter indicates an unsupported trace exporter was requested.
	ErrUnknownExporter = errors.New("unknown trace exporter")

	// ErrExporterFailed indicates the exporter could not be created.
	ErrExporterFailed = errors.New("exporter failed")
)
