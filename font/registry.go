package font

import (
	"go.uber.org/zap"
)

// Registry stores validated and normalized font descriptors keyed by
// slug(font-family) + "." + font-style + "." + font-weight. Registering the
// same triple twice silently overwrites the prior entry. Not safe for
// concurrent use - the pipeline is request-scoped.
type Registry struct {
	log        *zap.Logger
	validator  *Validator
	normalizer *Normalizer

	entries    map[string]Descriptor
	byProvider map[string]map[string]bool // provider id -> set of keys
	byFamily   map[string]map[string]bool // family slug -> set of keys
}

// NewRegistry creates an empty registry with the default validator. The
// whitelist is the base property set extended with extraProps, so
// provider-specific API parameters registered through the strict path survive
// to the provider.
func NewRegistry(log *zap.Logger, extraProps ...string) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:        log.Named("font-registry"),
		validator:  NewValidator(log),
		normalizer: NewNormalizer(extraProps...),
		entries:    make(map[string]Descriptor),
		byProvider: make(map[string]map[string]bool),
		byFamily:   make(map[string]map[string]bool),
	}
}

// Register validates the descriptor and stores its normalized form, returning
// the derived key. camelCase input keys are accepted as aliases for the
// canonical kebab-case names. On validation failure it returns an empty key
// and mutates nothing.
func (r *Registry) Register(input map[string]any) string {
	d := Canonicalize(input)
	if !r.validator.Validate(d) {
		return ""
	}
	normalized := r.normalizer.Normalize(d)
	key := normalized.Key()

	if old, exists := r.entries[key]; exists {
		// same (family, style, weight) triple - overwrite, dropping stale
		// index entries in case the provider changed
		r.unindex(key, old)
		r.log.Debug("Overwriting registered font", zap.String("key", key))
	}

	r.entries[key] = normalized
	r.index(key, normalized)

	r.log.Debug("Registered font",
		zap.String("key", key),
		zap.String("provider", normalized.Provider()),
		zap.String("family", normalized.Family()))
	return key
}

func (r *Registry) index(key string, d Descriptor) {
	provider := d.Provider()
	if r.byProvider[provider] == nil {
		r.byProvider[provider] = make(map[string]bool)
	}
	r.byProvider[provider][key] = true

	family := FamilySlug(d.Family())
	if r.byFamily[family] == nil {
		r.byFamily[family] = make(map[string]bool)
	}
	r.byFamily[family][key] = true
}

func (r *Registry) unindex(key string, d Descriptor) {
	if keys := r.byProvider[d.Provider()]; keys != nil {
		delete(keys, key)
	}
	if keys := r.byFamily[FamilySlug(d.Family())]; keys != nil {
		delete(keys, key)
	}
}

// Get returns the descriptor registered under key, if any.
func (r *Registry) Get(key string) (Descriptor, bool) {
	d, ok := r.entries[key]
	return d, ok
}

// ByProvider returns all descriptors registered for the provider id, keyed by
// registry key. Unknown providers yield an empty map, never an error.
func (r *Registry) ByProvider(id string) map[string]Descriptor {
	return r.collect(r.byProvider[id])
}

// ByFamily returns all descriptors for a font family, accepting either the
// raw family name ("Open Sans") or its slug ("open-sans"). Empty input yields
// an empty map.
func (r *Registry) ByFamily(name string) map[string]Descriptor {
	if name == "" {
		return map[string]Descriptor{}
	}
	return r.collect(r.byFamily[FamilySlug(name)])
}

// Snapshot returns a copy of the full registry mapping.
func (r *Registry) Snapshot() map[string]Descriptor {
	out := make(map[string]Descriptor, len(r.entries))
	for k, d := range r.entries {
		out[k] = d.Clone()
	}
	return out
}

func (r *Registry) collect(keys map[string]bool) map[string]Descriptor {
	out := make(map[string]Descriptor, len(keys))
	for k := range keys {
		if d, ok := r.entries[k]; ok {
			out[k] = d.Clone()
		}
	}
	return out
}
