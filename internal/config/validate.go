package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCacheSize indicates a non-positive cache capacity
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidTTL indicates a negative cache TTL
	ErrInvalidTTL = errors.New("invalid cache ttl")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidFormat indicates an unsupported output or log format
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrEmptyDBPath indicates a missing database path
	ErrEmptyDBPath = errors.New("empty database path")
)

// Validate checks that the configuration is valid and complete. All problems
// are reported together; errors.Is matches each sentinel involved.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Paths.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	if cfg.Cache.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_entries must be positive, got %d", ErrInvalidCacheSize, cfg.Cache.MaxEntries))
	}
	if cfg.Cache.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: ttl_seconds cannot be negative, got %d", ErrInvalidTTL, cfg.Cache.TTLSeconds))
	}

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: db_path is required", ErrEmptyDBPath))
	}

	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMS))
	}
	if cfg.Index.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Index.Workers))
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: must be debug, info, warn or error, got '%s'", ErrInvalidLogLevel, cfg.Logging.Level))
	}
	if !oneOf(cfg.Logging.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("%w: logging.format must be 'text' or 'json', got '%s'", ErrInvalidFormat, cfg.Logging.Format))
	}
	if !oneOf(cfg.Output.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("%w: output.format must be 'text' or 'json', got '%s'", ErrInvalidFormat, cfg.Output.Format))
	}

	return joinErrors(errs)
}

func oneOf(v string, options ...string) bool {
	v = strings.ToLower(v)
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// validationError lists several problems at once and unwraps to each.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error { return e.errs }

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return &validationError{errs: errs}
}
