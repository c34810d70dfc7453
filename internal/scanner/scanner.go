package scanner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"TranscriptDigest/internal/domain"
)

// Request carries all parameters required to fetch one transcript.
type Request struct {
	Key         domain.TranscriptKey
	URLTemplate string
	Options     map[string]string
}

// URL expands {symbol}, {year} and {quarter} in the template.
func (r Request) URL() string {
	return strings.NewReplacer(
		"{symbol}", r.Key.Symbol,
		"{year}", strconv.Itoa(r.Key.Year),
		"{quarter}", strconv.Itoa(r.Key.Quarter),
	).Replace(r.URLTemplate)
}

// Scanner captures a single fetch strategy (one transcript site).
type Scanner interface {
	Name() string
	Fetch(ctx context.Context, req Request) (string, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
