package core

import (
	"log/slog"

	"github.com/jmylchreest/eventexport/internal/export/encode"
	"github.com/jmylchreest/eventexport/internal/export/source"
)

// Builder provides a fluent interface for constructing a Factory.
type Builder struct {
	sources     *source.Registry
	encoders    *encode.Set
	placeholder source.PlaceholderPolicy
	observer    Observer
	logger      *slog.Logger
	queue       QueuePolicy
}

// NewBuilder creates a new pipeline Builder.
func NewBuilder() *Builder {
	return &Builder{
		placeholder: source.PlaceholderPolicy{Mode: source.PlaceholderOnFailure},
		queue:       Sequential{},
	}
}

// WithSources sets the fetcher registry.
func (b *Builder) WithSources(r *source.Registry) *Builder {
	b.sources = r
	return b
}

// WithEncoders sets the encoder set.
func (b *Builder) WithEncoders(s *encode.Set) *Builder {
	b.encoders = s
	return b
}

// WithPlaceholderPolicy sets when placeholder data replaces fetched records.
func (b *Builder) WithPlaceholderPolicy(p source.PlaceholderPolicy) *Builder {
	b.placeholder = p
	return b
}

// WithObserver sets the outcome observer.
func (b *Builder) WithObserver(o Observer) *Builder {
	b.observer = o
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithQueuePolicy sets the job scheduling policy. Nil keeps Sequential.
func (b *Builder) WithQueuePolicy(q QueuePolicy) *Builder {
	if q != nil {
		b.queue = q
	}
	return b
}

// Build creates a Factory with the configured settings.
// This does not register stages.
func (b *Builder) Build() (*Factory, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	f := NewFactory(&Dependencies{
		Sources:     b.sources,
		Encoders:    b.encoders,
		Placeholder: b.placeholder,
		Observer:    b.observer,
		Logger:      b.logger,
	})
	f.SetQueuePolicy(b.queue)
	return f, nil
}

// validate checks that all required dependencies are set.
func (b *Builder) validate() error {
	if b.sources == nil {
		return NewConfigurationError("sources", "fetcher registry is required")
	}
	if b.encoders == nil {
		return NewConfigurationError("encoders", "encoder set is required")
	}
	return nil
}
