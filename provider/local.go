package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"wfp/font"
)

// Local renders @font-face blocks for fonts hosted with the site itself.
type Local struct {
	log        *zap.Logger
	normalizer *font.Normalizer
}

// NewLocal creates the local provider.
func NewLocal(log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{
		log:        log.Named("provider-local"),
		normalizer: font.NewNormalizer(),
	}
}

// Name implements Provider.
func (p *Local) Name() string { return "local" }

// ExtraProperties implements Provider. Local fonts take no API parameters.
func (p *Local) ExtraProperties() []string { return nil }

// GetFontsCollectionCSS emits one @font-face block per descriptor. Malformed
// descriptors (no family after normalization) are skipped.
func (p *Local) GetFontsCollectionCSS(_ context.Context, fonts []font.Descriptor) string {
	var sb strings.Builder
	for _, d := range fonts {
		nd := p.normalizer.Normalize(d)
		family := nd.Family()
		if family == "" {
			p.log.Warn("Skipping font descriptor without family")
			continue
		}
		p.writeFontFace(&sb, nd, family)
	}
	return sb.String()
}

func (p *Local) writeFontFace(sb *strings.Builder, d font.Descriptor, family string) {
	sb.WriteString("@font-face{")
	sb.WriteString("font-family:")
	sb.WriteString(quoteFamily(family))
	sb.WriteString(";")

	sb.WriteString("src:")
	sb.WriteString(p.buildSrc(family, d.Src()))
	sb.WriteString(";")

	for _, prop := range cssProperties {
		v, ok := d[prop]
		if !ok {
			continue
		}
		val := flattenSettings(v)
		if val == "" {
			continue
		}
		sb.WriteString(prop)
		sb.WriteString(":")
		sb.WriteString(val)
		sb.WriteString(";")
	}
	sb.WriteString("}")
}

// buildSrc renders the src value: a local() reference first, then one
// url()/format() pair per entry. Data URIs are emitted as bare url() without
// a format token.
func (p *Local) buildSrc(family string, srcs []string) string {
	parts := []string{"local(" + family + ")"}
	for _, src := range srcs {
		e := font.ParseSource(src)
		if e.Format == font.FormatData {
			parts = append(parts, "url("+e.URL+")")
			continue
		}
		parts = append(parts, "url('"+e.URL+"') format('"+e.Format+"')")
	}
	return strings.Join(parts, ", ")
}
