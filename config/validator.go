package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "log.level")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateCatalogs()...)
	errors = append(errors, c.validateLog()...)
	errors = append(errors, c.validateResolve()...)
	return errors
}

func (c *Config) validateCatalogs() []ValidationError {
	var errors []ValidationError
	names := make(map[string]bool)
	for i, cat := range c.Catalogs {
		if strings.TrimSpace(cat.Path) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("catalogs[%d].path", i),
				Value:   cat.Path,
				Message: "must not be empty",
			})
		}
		if cat.Name == "" {
			continue
		}
		if names[cat.Name] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("catalogs[%d].name", i),
				Value:   cat.Name,
				Message: "must be unique",
			})
		}
		names[cat.Name] = true
	}
	return errors
}

func (c *Config) validateLog() []ValidationError {
	var errors []ValidationError
	if !slices.Contains(ValidLogLevels(), c.Log.Level) {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), c.Log.Format) {
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}
	return errors
}

func (c *Config) validateResolve() []ValidationError {
	if c.Resolve.Timeout < 0 {
		return []ValidationError{{
			Field:   "resolve.timeout",
			Value:   c.Resolve.Timeout,
			Message: "must be non-negative (0 to disable)",
		}}
	}
	return nil
}
