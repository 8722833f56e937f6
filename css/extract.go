// Package css extracts @font-face declarations and their file references
// from raw stylesheet text. This is deliberately not a general CSS parser -
// only the @font-face surface needed by the mirror is covered.
package css

import (
	"bytes"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"wfp/font"
)

// UnknownFamily is the bucket for files whose @font-face block carries no
// usable font-family. Collecting them there keeps the files from being
// dropped.
const UnknownFamily = "unknown"

// urlPattern matches url() references in raw CSS value strings:
// url("path"), url('path') and url(path), case-insensitive.
var urlPattern = regexp.MustCompile(`(?i)url\s*\(\s*(?:["']([^"']*)["']|([^)"']*))\s*\)`)

// FontFiles is the result of extraction: file URLs grouped by family slug,
// deduplicated per family while preserving first-seen order.
type FontFiles struct {
	Families []string            // family slugs in first-seen order
	ByFamily map[string][]string // family slug -> ordered file URLs
}

// Add records one URL under a family slug, creating the family on first use
// and dropping duplicates.
func (f *FontFiles) Add(family, url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	if f.ByFamily == nil {
		f.ByFamily = make(map[string][]string)
	}
	if _, ok := f.ByFamily[family]; !ok {
		f.Families = append(f.Families, family)
	}
	for _, u := range f.ByFamily[family] {
		if u == url {
			return
		}
	}
	f.ByFamily[family] = append(f.ByFamily[family], url)
}

// Extractor pulls @font-face blocks out of stylesheet text.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor creates a new extractor.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log.Named("css-extract")}
}

// Extract tokenizes the stylesheet and collects file URLs per family slug.
// Blocks without a font-family land in the "unknown" bucket. Malformed input
// never fails - whatever can be recognized is returned.
func (e *Extractor) Extract(data []byte) *FontFiles {
	files := &FontFiles{ByFamily: make(map[string][]string)}

	input := parse.NewInput(bytes.NewReader(data))
	parser := tcss.NewParser(input, false)

	for {
		gt, _, tok := parser.Next()
		switch gt {
		case tcss.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				e.log.Debug("CSS parse error", zap.Error(err))
			}
			return files

		case tcss.BeginAtRuleGrammar:
			if string(tok) == "@font-face" {
				e.extractFontFace(parser, files)
			} else {
				skipAtRuleBlock(parser)
			}
		}
	}
}

// extractFontFace reads declarations until the end of an @font-face block and
// records every url() reference under the block's family slug.
func (e *Extractor) extractFontFace(parser *tcss.Parser, files *FontFiles) {
	family := ""
	var urls []string

	for {
		gt, _, tok := parser.Next()
		switch gt {
		case tcss.ErrorGrammar, tcss.EndAtRuleGrammar:
			slug := UnknownFamily
			if family != "" {
				slug = font.FamilySlug(family)
				if slug == "" {
					slug = UnknownFamily
				}
			}
			for _, u := range urls {
				files.Add(slug, u)
			}
			if len(urls) > 0 {
				e.log.Debug("Extracted @font-face files",
					zap.String("family", slug), zap.Int("count", len(urls)))
			}
			return

		case tcss.DeclarationGrammar:
			name := strings.ToLower(string(tok))
			valStr := joinTokens(parser.Values())

			switch name {
			case "font-family":
				// first declaration wins when the block repeats it
				if family == "" {
					family = unquote(strings.TrimSuffix(valStr, ";"))
				}
			default:
				urls = append(urls, ExtractURLs(valStr)...)
			}
		}
	}
}

// ExtractURLs pulls url() references out of a raw CSS value string in order.
func ExtractURLs(raw string) []string {
	var out []string
	for _, m := range urlPattern.FindAllStringSubmatch(raw, -1) {
		// group 1 is quoted, group 2 unquoted
		u := m[1]
		if u == "" {
			u = strings.TrimSpace(m[2])
		}
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// ReplaceURLs substitutes every occurrence of each key in repl with its
// value. Used by the mirror to point rewritten CSS at local copies.
func ReplaceURLs(cssText string, repl map[string]string) string {
	for from, to := range repl {
		cssText = strings.ReplaceAll(cssText, from, to)
	}
	return cssText
}

// joinTokens builds a value string from CSS tokens, collapsing whitespace.
func joinTokens(tokens []tcss.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != tcss.WhitespaceToken {
			parts = append(parts, string(t.Data))
		}
	}
	return strings.Join(parts, " ")
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func skipAtRuleBlock(parser *tcss.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case tcss.ErrorGrammar:
			return
		case tcss.BeginAtRuleGrammar, tcss.BeginRulesetGrammar:
			depth++
		case tcss.EndAtRuleGrammar, tcss.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
