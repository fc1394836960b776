// Package env provides a descriptor source that reads a comma separated
// plugin list from an environment variable:
//
//	ETHICS_PLUGINS="adjust:1,fairness=clamp:5,threshold"
//
// Each entry is type[:priority] or id=type[:priority]. Priority defaults
// to DefaultPriority. Plugins listed this way take no params.
package env

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// DefaultVar is the variable read by New.
const DefaultVar = "ETHICS_PLUGINS"

// DefaultPriority is given to entries without an explicit priority.
const DefaultPriority = 100

// Source parses descriptors from an environment variable.
type Source struct {
	name   string
	lookup func(string) (string, bool)
}

// Option configures a Source.
type Option func(*Source)

// WithVar reads a different variable.
func WithVar(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(s *Source) {
		s.lookup = lookup
	}
}

// New creates an environment source.
func New(opts ...Option) *Source {
	s := &Source{name: DefaultVar, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Descriptors implements ports.DescriptorSource. An unset or blank
// variable yields no descriptors.
func (s *Source) Descriptors(ctx context.Context) ([]domain.Descriptor, error) {
	value, _ := s.lookup(s.name)
	descs, err := Parse(value)
	if err != nil {
		return nil, &domain.ConfigurationError{
			Kind:    domain.ConfigErrorMalformed,
			Message: s.name,
			Err:     err,
		}
	}
	return descs, nil
}

// Parse parses a plugin list. Blank entries are ignored.
func Parse(value string) ([]domain.Descriptor, error) {
	descs := []domain.Descriptor{}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		d, err := parseEntry(entry)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func parseEntry(entry string) (domain.Descriptor, error) {
	d := domain.Descriptor{Priority: DefaultPriority}

	body := entry
	if id, rest, ok := strings.Cut(entry, "="); ok {
		d.ID = strings.TrimSpace(id)
		if d.ID == "" {
			return d, fmt.Errorf("entry %q: empty id", entry)
		}
		body = rest
	}

	typ, prio, hasPrio := strings.Cut(body, ":")
	d.Type = strings.TrimSpace(typ)
	if d.Type == "" {
		return d, fmt.Errorf("entry %q: empty type", entry)
	}
	if hasPrio {
		p, err := strconv.Atoi(strings.TrimSpace(prio))
		if err != nil {
			return d, fmt.Errorf("entry %q: invalid priority: %w", entry, err)
		}
		d.Priority = p
	}
	return d, nil
}

var _ ports.DescriptorSource = (*Source)(nil)
