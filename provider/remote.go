package provider

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"wfp/font"
	"wfp/platform"
)

const (
	// remoteCSSTTL keeps successfully fetched stylesheets for a month.
	remoteCSSTTL = 30 * 24 * time.Hour
	// negativeTTL briefly caches fetch failures as empty CSS so a failing
	// upstream is not retried on every request.
	negativeTTL = 60 * time.Second
)

// RemoteConfig describes a font API endpoint.
type RemoteConfig struct {
	Name    string        // provider id, also the cache key prefix
	BaseURL string        // stylesheet endpoint, e.g. https://fonts.googleapis.com/css2
	APIKey  string        // optional API key sent as a query parameter
	CSSTTL  time.Duration // cache TTL for fetched CSS, remoteCSSTTL when zero
	ErrTTL  time.Duration // negative cache TTL, negativeTTL when zero
}

// Remote generates CSS by requesting it from a font API. Descriptors are
// grouped by font-display (the API encodes display as a query parameter, so
// each display needs its own request) and then by family, so multiple
// families share a single request. Fetched CSS goes through the cache; a
// fetch failure degrades to empty CSS and is negative-cached.
type Remote struct {
	log        *zap.Logger
	cfg        RemoteConfig
	cache      platform.Cache
	fetch      platform.Fetcher
	normalizer *font.Normalizer
}

// NewRemote creates a font API provider.
func NewRemote(log *zap.Logger, cfg RemoteConfig, cache platform.Cache, fetch platform.Fetcher) *Remote {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CSSTTL <= 0 {
		cfg.CSSTTL = remoteCSSTTL
	}
	if cfg.ErrTTL <= 0 {
		cfg.ErrTTL = negativeTTL
	}
	r := &Remote{
		log:   log.Named("provider-" + cfg.Name),
		cfg:   cfg,
		cache: cache,
		fetch: fetch,
	}
	r.normalizer = font.NewNormalizer(r.ExtraProperties()...)
	return r
}

// Name implements Provider.
func (p *Remote) Name() string { return p.cfg.Name }

// ExtraProperties implements Provider - parameters the font API accepts that
// are not font-face properties.
func (p *Remote) ExtraProperties() []string {
	return []string{"subset", "text", "effect"}
}

// GetFontsCollectionCSS builds one request URL per (font-display,
// family-group) combination and concatenates the fetched CSS fragments in
// URL-generation order.
func (p *Remote) GetFontsCollectionCSS(ctx context.Context, fonts []font.Descriptor) string {
	var sb strings.Builder
	for _, u := range p.BuildURLs(fonts) {
		sb.WriteString(p.cachedCSS(ctx, u))
	}
	return sb.String()
}

// variantSet accumulates weights per style for one family.
type variantSet struct {
	family  string
	normal  []string
	italics []string
}

// displayGroup keeps families of one font-display value in first-seen order.
type displayGroup struct {
	display  string
	families []*variantSet
	byFamily map[string]*variantSet
}

// BuildURLs groups descriptors and returns the request URLs in generation
// order. Exposed for tests and diagnostics.
func (p *Remote) BuildURLs(fonts []font.Descriptor) []string {
	var groups []*displayGroup
	byDisplay := make(map[string]*displayGroup)

	for _, d := range fonts {
		nd := p.normalizer.Normalize(d)
		family := nd.Family()
		if family == "" {
			p.log.Warn("Skipping font descriptor without family")
			continue
		}

		display := nd.String(font.PropDisplay)
		g, ok := byDisplay[display]
		if !ok {
			g = &displayGroup{display: display, byFamily: make(map[string]*variantSet)}
			byDisplay[display] = g
			groups = append(groups, g)
		}

		vs, ok := g.byFamily[family]
		if !ok {
			vs = &variantSet{family: family}
			g.byFamily[family] = vs
			g.families = append(g.families, vs)
		}

		weight := apiWeight(nd.String(font.PropWeight))
		if nd.String(font.PropStyle) == "italic" {
			vs.italics = appendUnique(vs.italics, weight)
		} else {
			vs.normal = appendUnique(vs.normal, weight)
		}
	}

	urls := make([]string, 0, len(groups))
	for _, g := range groups {
		urls = append(urls, p.buildURL(g))
	}
	return urls
}

// buildURL assembles one stylesheet request for all families sharing a
// font-display value.
func (p *Remote) buildURL(g *displayGroup) string {
	var params []string
	for _, vs := range g.families {
		spec := url.QueryEscape(vs.family)
		// QueryEscape turns spaces into '+', which is what the API expects
		if ws := weightSpec(vs); ws != "" {
			spec += ":" + ws
		}
		params = append(params, "family="+spec)
	}
	params = append(params, "display="+g.display)
	if p.cfg.APIKey != "" {
		params = append(params, "key="+url.QueryEscape(p.cfg.APIKey))
	}
	return p.cfg.BaseURL + "?" + strings.Join(params, "&")
}

// weightSpec renders the variant axis list for one family:
// only normal weights  -> wght@w1;w2
// only italic weights  -> ital,wght@1,w1;1,w2
// both                 -> ital,wght@0,w1;0,w2;1,w3;1,w4
func weightSpec(vs *variantSet) string {
	sortWeights(vs.normal)
	sortWeights(vs.italics)

	switch {
	case len(vs.italics) == 0 && len(vs.normal) == 0:
		return ""
	case len(vs.italics) == 0:
		return "wght@" + strings.Join(vs.normal, ";")
	case len(vs.normal) == 0:
		return "ital,wght@1," + strings.Join(vs.italics, ";1,")
	default:
		tuples := make([]string, 0, len(vs.normal)+len(vs.italics))
		for _, w := range vs.normal {
			tuples = append(tuples, "0,"+w)
		}
		for _, w := range vs.italics {
			tuples = append(tuples, "1,"+w)
		}
		return "ital,wght@" + strings.Join(tuples, ";")
	}
}

// apiWeight converts a CSS weight value to the API form: keywords map to
// numbers, a "min max" range becomes "min..max".
func apiWeight(w string) string {
	switch w {
	case "normal":
		return "400"
	case "bold":
		return "700"
	}
	if fields := strings.Fields(w); len(fields) == 2 {
		return fields[0] + ".." + fields[1]
	}
	return w
}

func appendUnique(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}

// sortWeights orders weight specs numerically (ranges by their lower bound).
func sortWeights(list []string) {
	sort.SliceStable(list, func(i, j int) bool {
		return weightValue(list[i]) < weightValue(list[j])
	})
}

func weightValue(w string) int {
	if i := strings.Index(w, ".."); i >= 0 {
		w = w[:i]
	}
	n, _ := strconv.Atoi(w)
	return n
}

// cachedCSS returns the stylesheet for one request URL, consulting the cache
// first. Failures degrade to empty CSS with a short negative TTL.
func (p *Remote) cachedCSS(ctx context.Context, u string) string {
	key := fmt.Sprintf("%s_fonts_%x", p.cfg.Name, md5.Sum([]byte(u)))
	if cached, ok := p.cache.Get(key); ok {
		return cached
	}

	body, err := p.fetch.Fetch(ctx, u)
	if err != nil {
		p.log.Warn("Unable to fetch remote font CSS", zap.String("url", u), zap.Error(err))
		p.cache.Set(key, "", p.cfg.ErrTTL)
		return ""
	}

	cssText := string(body)
	p.cache.Set(key, cssText, p.cfg.CSSTTL)
	p.log.Debug("Fetched remote font CSS", zap.String("url", u), zap.Int("bytes", len(body)))
	return cssText
}
