// Package config loads planner configuration documents from YAML or JSON.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/goap/domain/config"
)

// StdinPath is the path that makes LoadFile read from standard input.
const StdinPath = "-"

// Loader loads planner configuration documents.
type Loader struct {
	// ExpandEnv enables environment variable expansion.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// StrictFields rejects fields the document model does not define.
	StrictFields bool
	// Validate enables configuration validation.
	Validate bool

	stdin io.Reader
}

// NewLoader creates a new configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		Validate:  true,
		stdin:     os.Stdin,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithStrictFields enables rejection of unknown document fields.
func WithStrictFields(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictFields = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// WithStdin sets the reader used for StdinPath.
func WithStdin(r io.Reader) LoaderOption {
	return func(l *Loader) {
		l.stdin = r
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnsupportedFormat, ext)
	}
}

// LoadFile loads a document from a file path. StdinPath reads YAML (or
// JSON, which YAML accepts) from standard input.
func (l *Loader) LoadFile(path string) (*config.Document, error) {
	if path == StdinPath {
		return l.Load(l.stdin, FormatYAML)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// Load loads a document from a reader.
func (l *Loader) Load(r io.Reader, format Format) (*config.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.ExpandEnv {
		data, err = l.expandEnvVars(data)
		if err != nil {
			return nil, err
		}
	}

	doc := &config.Document{}
	if err := l.decode(data, format, doc); err != nil {
		return nil, err
	}

	if l.Validate {
		validator := config.NewValidator()
		if errs := validator.Validate(doc); errs.HasErrors() {
			return nil, fmt.Errorf("%w: %w", config.ErrValidationFailed, errs)
		}
	}

	return doc, nil
}

func (l *Loader) decode(data []byte, format Format, doc *config.Document) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(l.StrictFields)
		if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if l.StrictFields {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(doc); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
		// encoding/json keeps the last of two equal keys.
		if errs := duplicateKeys(data); errs.HasErrors() {
			return fmt.Errorf("%w: %w", config.ErrInvalidFormat, errs)
		}
	default:
		return fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}
	return nil
}

// expandEnvVars expands ${VAR} and $VAR patterns in the data.
func (l *Loader) expandEnvVars(data []byte) ([]byte, error) {
	expander := newEnvExpander(l.StrictEnv)
	result, err := expander.Expand(string(data))
	if err != nil {
		return nil, err
	}
	return []byte(result), nil
}

// LoadString loads a document from a string.
func (l *Loader) LoadString(content string, format Format) (*config.Document, error) {
	return l.Load(strings.NewReader(content), format)
}

// LoadBytes loads a document from bytes.
func (l *Loader) LoadBytes(data []byte, format Format) (*config.Document, error) {
	return l.Load(bytes.NewReader(data), format)
}
