// Package font implements the core of the web-font pipeline: descriptor
// validation against CSS font-property grammar, normalization with lenient
// fallbacks, and the registry indexing declarations by their derived key.
package font

import (
	"strings"

	"github.com/gosimple/slug"
)

// Canonical descriptor property names. The public boundary also accepts
// camelCase aliases (fontFamily, fontWeight, ...) which are folded to these
// on registration.
const (
	PropProvider        = "provider"
	PropFamily          = "font-family"
	PropStyle           = "font-style"
	PropWeight          = "font-weight"
	PropDisplay         = "font-display"
	PropStretch         = "font-stretch"
	PropVariant         = "font-variant"
	PropAscentOverride  = "ascent-override"
	PropDescentOverride = "descent-override"
	PropLineGapOverride = "line-gap-override"
	PropUnicodeRange    = "unicode-range"
	PropSrc             = "src"
	PropVariation       = "font-variation-settings"
	PropFeature         = "font-feature-settings"
)

// Defaults applied by the normalizer and used as clamp targets for invalid
// enum values.
const (
	DefaultWeight  = "400"
	DefaultStyle   = "normal"
	DefaultDisplay = "fallback"
)

// Descriptor is a structured record of one font's CSS properties. Values are
// strings except for src (string or []string/[]any) and array-valued settings
// like font-variation-settings.
type Descriptor map[string]any

// baseProperties is the whitelist of font-face properties every provider
// understands. Providers may extend it with API-only parameters.
var baseProperties = []string{
	PropProvider,
	PropFamily,
	PropStyle,
	PropWeight,
	PropDisplay,
	PropStretch,
	PropVariant,
	PropAscentOverride,
	PropDescentOverride,
	PropLineGapOverride,
	PropUnicodeRange,
	PropSrc,
	PropVariation,
	PropFeature,
}

// camelAliases maps accepted camelCase input keys to canonical kebab-case.
var camelAliases = map[string]string{
	"fontFamily":            PropFamily,
	"fontStyle":             PropStyle,
	"fontWeight":            PropWeight,
	"fontDisplay":           PropDisplay,
	"fontStretch":           PropStretch,
	"fontVariant":           PropVariant,
	"ascentOverride":        PropAscentOverride,
	"descentOverride":       PropDescentOverride,
	"lineGapOverride":       PropLineGapOverride,
	"unicodeRange":          PropUnicodeRange,
	"fontVariationSettings": PropVariation,
	"fontFeatureSettings":   PropFeature,
}

// Canonicalize returns a copy of in with camelCase keys folded to their
// kebab-case canonical form. Unknown keys are carried over as-is - the
// normalizer's whitelist decides what survives.
func Canonicalize(in map[string]any) Descriptor {
	out := make(Descriptor, len(in))
	for k, v := range in {
		if canonical, ok := camelAliases[k]; ok {
			k = canonical
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	out := make(Descriptor, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// String returns the string value of a property, empty when absent or not a
// string.
func (d Descriptor) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Family returns the font-family value.
func (d Descriptor) Family() string { return d.String(PropFamily) }

// Provider returns the provider id.
func (d Descriptor) Provider() string { return d.String(PropProvider) }

// Src returns the src property cast to a sequence: a single string becomes a
// one-element slice, []any is filtered to its string members.
func (d Descriptor) Src() []string {
	switch v := d[PropSrc].(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// FamilySlug returns the lowercase hyphenated identifier derived from a
// family name.
func FamilySlug(family string) string {
	return slug.Make(strings.TrimSpace(family))
}

// Key derives the registry key for the descriptor:
// slug(font-family) + "." + font-style + "." + font-weight.
// Style and weight must already be populated (the registry normalizes before
// deriving keys).
func (d Descriptor) Key() string {
	return FamilySlug(d.Family()) + "." + d.String(PropStyle) + "." + d.String(PropWeight)
}
