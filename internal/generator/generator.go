// Package generator calls the external text generator that writes the
// narrative part of a report.
package generator

import (
	"context"
	"errors"
	"fmt"

	"cares/internal/config"
	"cares/internal/model"
)

var (
	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = errors.New("generator: API key not set on server")
	// ErrUpstream is the base error for non-success upstream responses
	ErrUpstream = errors.New("generator: upstream error")
)

// StatusError carries a non-200 upstream response
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", e.Provider, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

// Generator produces free text for a prompt. An empty Text with a nil
// error is a valid result.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*model.GeneratorOutput, error)
}

// New picks the generator for the configured provider
func New(cfg config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter, "":
		return NewOpenRouter(cfg), nil
	case config.ProviderGemini:
		return NewGemini(cfg), nil
	case config.ProviderOffline:
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("generator: unknown provider %q", cfg.Provider)
	}
}
