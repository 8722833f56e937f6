package font

import (
	"path"
	"sort"
	"strings"
)

// Source formats in preference order: data URIs first, then modern compressed
// formats down to legacy ones. Entries with any other format are dropped.
const (
	FormatData             = "data"
	FormatWoff2            = "woff2"
	FormatWoff             = "woff"
	FormatTruetype         = "truetype"
	FormatEmbeddedOpentype = "embedded-opentype"
	FormatOpentype         = "opentype"
)

var formatPreference = map[string]int{
	FormatData:             0,
	FormatWoff2:            1,
	FormatWoff:             2,
	FormatTruetype:         3,
	FormatEmbeddedOpentype: 4,
	FormatOpentype:         5,
}

var extensionFormats = map[string]string{
	".woff2": FormatWoff2,
	".woff":  FormatWoff,
	".ttf":   FormatTruetype,
	".eot":   FormatEmbeddedOpentype,
	".otf":   FormatOpentype,
}

// SourceEntry is one src reference with its detected format.
type SourceEntry struct {
	URL    string
	Format string
}

// ParseSource detects the format of a single src entry. Unknown extensions
// yield an empty format.
func ParseSource(src string) SourceEntry {
	if strings.HasPrefix(src, "data:") {
		return SourceEntry{URL: src, Format: FormatData}
	}
	// strip query/fragment before looking at the extension
	clean := src
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	return SourceEntry{URL: src, Format: extensionFormats[strings.ToLower(path.Ext(clean))]}
}

// OrderSources parses and re-sorts src entries by format preference, keeping
// original order within the same format and dropping unknown formats.
func OrderSources(srcs []string) []SourceEntry {
	entries := make([]SourceEntry, 0, len(srcs))
	for _, s := range srcs {
		e := ParseSource(s)
		if e.Format == "" {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return formatPreference[entries[i].Format] < formatPreference[entries[j].Format]
	})
	return entries
}

// Normalizer applies defaults, filters properties through the provider
// whitelist, orders src entries and clamps invalid enum values to their
// defaults. This is the deliberately lenient counterpart of the Validator:
// the registry path rejects bad input, the provider path coerces it.
type Normalizer struct {
	allowed map[string]bool
}

// NewNormalizer creates a normalizer whose whitelist is the base font-face
// property set extended with the given provider-specific parameters.
func NewNormalizer(extraProps ...string) *Normalizer {
	allowed := make(map[string]bool, len(baseProperties)+len(extraProps))
	for _, p := range baseProperties {
		allowed[p] = true
	}
	for _, p := range extraProps {
		allowed[p] = true
	}
	return &Normalizer{allowed: allowed}
}

// Normalize returns a normalized copy of the descriptor. After it every
// descriptor carries valid font-weight, font-style and font-display values
// and a src sequence ordered by format preference.
func (n *Normalizer) Normalize(d Descriptor) Descriptor {
	out := make(Descriptor, len(d)+4)
	for k, v := range d {
		if n.allowed[k] {
			out[k] = v
		}
	}

	// defaults
	if _, ok := out[PropWeight]; !ok {
		out[PropWeight] = DefaultWeight
	}
	if _, ok := out[PropStyle]; !ok {
		out[PropStyle] = DefaultStyle
	}
	if _, ok := out[PropDisplay]; !ok {
		out[PropDisplay] = DefaultDisplay
	}

	// clamp invalid enum values instead of rejecting
	if err := checkWeight(out); err != nil {
		out[PropWeight] = DefaultWeight
	}
	if err := checkStyle(out); err != nil {
		out[PropStyle] = DefaultStyle
	}
	if err := checkDisplay(out); err != nil {
		out[PropDisplay] = DefaultDisplay
	}

	ordered := OrderSources(d.Src())
	srcs := make([]string, len(ordered))
	for i, e := range ordered {
		srcs[i] = e.URL
	}
	out[PropSrc] = srcs

	return out
}
