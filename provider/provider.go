// Package provider turns normalized font descriptors into @font-face CSS.
// Two variants exist: Local renders descriptors with locally hosted files,
// Remote batches families into font API requests and caches the returned
// stylesheets. Providers live in an explicitly constructed Set owned by the
// application environment - there is no process-wide registry.
package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wfp/font"
)

// Provider converts descriptors into @font-face CSS text. Implementations
// normalize their input leniently (clamping bad enum values) and skip
// malformed descriptors instead of failing the batch.
type Provider interface {
	Name() string
	// ExtraProperties lists provider-specific API-only parameters accepted
	// in descriptors on top of the base font-face property set.
	ExtraProperties() []string
	GetFontsCollectionCSS(ctx context.Context, fonts []font.Descriptor) string
}

// Set is an explicit provider registry.
type Set struct {
	log       *zap.Logger
	providers map[string]Provider
	order     []string
}

// NewSet creates a provider set with the given providers registered.
func NewSet(log *zap.Logger, providers ...Provider) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Set{
		log:       log.Named("providers"),
		providers: make(map[string]Provider),
	}
	for _, p := range providers {
		s.Register(p)
	}
	return s
}

// Register adds or replaces a provider under its name.
func (s *Set) Register(p Provider) {
	name := p.Name()
	if _, exists := s.providers[name]; !exists {
		s.order = append(s.order, name)
	}
	s.providers[name] = p
	s.log.Debug("Registered font provider", zap.String("provider", name))
}

// Get returns the provider registered under name.
func (s *Set) Get(name string) (Provider, bool) {
	p, ok := s.providers[name]
	return p, ok
}

// Names returns provider names in registration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// quoteFamily wraps a family name in quotes when it contains whitespace and
// is not already quoted.
func quoteFamily(family string) string {
	if !strings.ContainsAny(family, " \t") {
		return family
	}
	if strings.HasPrefix(family, `"`) || strings.HasPrefix(family, "'") {
		return family
	}
	return `"` + family + `"`
}

// flattenSettings renders an array-valued settings property (e.g.
// font-variation-settings given as ["wght 400", "slnt 0"]) to the
// comma-separated form CSS expects. Scalar values pass through.
func flattenSettings(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case []string:
		return strings.Join(vv, ", ")
	case []any:
		parts := make([]string, 0, len(vv))
		for _, e := range vv {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// cssProperties is the emission order for descriptor properties inside a
// generated @font-face block. font-family and src are rendered separately.
var cssProperties = []string{
	font.PropStyle,
	font.PropWeight,
	font.PropDisplay,
	font.PropStretch,
	font.PropVariant,
	font.PropAscentOverride,
	font.PropDescentOverride,
	font.PropLineGapOverride,
	font.PropUnicodeRange,
	font.PropVariation,
	font.PropFeature,
}
