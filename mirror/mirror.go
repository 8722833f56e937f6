// Package mirror keeps local copies of remote font files referenced from CSS
// and rewrites the CSS to point at them. Downloads are never performed inside
// the discovering call - they are queued and drained by a separate
// end-of-lifecycle step, so the response being built is not delayed by slow
// upstreams. The URL-to-path map is persisted through the cache capability
// and is advisory: a missing local copy simply leaves the remote URL in
// place.
package mirror

import (
	"encoding/json"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"wfp/css"
	"wfp/platform"
)

// CacheKey is the process-wide cache entry holding the JSON-encoded
// URL-to-path map.
const CacheKey = "downloaded_font_files"

// Task is one scheduled download: fetch URL into Dest.
type Task struct {
	URL  string
	Dest string
}

// Mirror mirrors remote font files under a root directory, one subdirectory
// per font family.
type Mirror struct {
	log       *zap.Logger
	fs        platform.FS
	fetch     platform.Fetcher
	cache     platform.Cache
	extractor *css.Extractor

	rootDir   string // filesystem root for mirrored files
	publicURL string // URL prefix replacing rootDir in rewritten CSS

	tasks []Task
}

// New creates a mirror rooted at rootDir, rewriting local paths to publicURL.
func New(log *zap.Logger, fs platform.FS, fetch platform.Fetcher, cache platform.Cache, rootDir, publicURL string) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("font-mirror")
	return &Mirror{
		log:       log,
		fs:        fs,
		fetch:     fetch,
		cache:     cache,
		extractor: css.NewExtractor(log),
		rootDir:   filepath.Clean(rootDir),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Mirror scans cssText for @font-face file references and ensures a local
// copy exists for each. Files already on disk are recorded in the persistent
// map; missing ones are queued for the deferred download pass. It returns the
// remote-URL-to-local-path mapping for files that are already mirrored.
func (m *Mirror) Mirror(cssText string) map[string]string {
	files := m.extractor.Extract([]byte(cssText))
	if len(files.Families) == 0 {
		return map[string]string{}
	}

	if err := m.fs.MkdirAll(m.rootDir, 0755); err != nil {
		m.log.Warn("Unable to create fonts directory", zap.String("dir", m.rootDir), zap.Error(err))
		return map[string]string{}
	}

	known, dirty := m.loadMap(), false
	result := make(map[string]string)

	for _, family := range files.Families {
		dir := filepath.Join(m.rootDir, family)
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			// skip this family entirely, keep processing the others
			m.log.Warn("Unable to create family directory, skipping",
				zap.String("family", family), zap.Error(err))
			continue
		}

		for _, fileURL := range files.ByFamily[family] {
			name := remoteFileName(fileURL)
			if name == "" {
				m.log.Debug("Skipping unmirrorable reference", zap.String("url", fileURL))
				continue
			}
			dest := filepath.Join(dir, name)

			if m.fs.Exists(dest) {
				if known[fileURL] != dest {
					known[fileURL] = dest
					dirty = true
				}
				result[fileURL] = dest
				continue
			}
			// downloaded after the current response is produced; the local
			// copy becomes visible to subsequent requests
			m.tasks = append(m.tasks, Task{URL: fileURL, Dest: dest})
			m.log.Debug("Scheduled font download", zap.String("url", fileURL), zap.String("dest", dest))
		}
	}

	if dirty {
		m.persistMap(known)
	}
	return result
}

// GetCSS mirrors cssText and rewrites every reference with a local copy to
// its public URL.
func (m *Mirror) GetCSS(cssText string) string {
	mapped := m.Mirror(cssText)
	if len(mapped) == 0 {
		return cssText
	}

	repl := make(map[string]string, len(mapped))
	for remote, local := range mapped {
		repl[remote] = m.PublicURL(local)
	}
	return css.ReplaceURLs(cssText, repl)
}

// PublicURL converts a mirrored file path to its public URL by swapping the
// filesystem root prefix for the public base.
func (m *Mirror) PublicURL(localPath string) string {
	rel, err := filepath.Rel(m.rootDir, localPath)
	if err != nil {
		return localPath
	}
	return m.publicURL + "/" + filepath.ToSlash(rel)
}

// Pending returns the queued downloads in discovery order.
func (m *Mirror) Pending() []Task {
	return append([]Task(nil), m.tasks...)
}

// loadMap reads the persisted URL-to-path map, empty on any failure.
func (m *Mirror) loadMap() map[string]string {
	known := make(map[string]string)
	raw, ok := m.cache.Get(CacheKey)
	if !ok || raw == "" {
		return known
	}
	if err := json.Unmarshal([]byte(raw), &known); err != nil {
		m.log.Warn("Discarding unreadable font file map", zap.Error(err))
		return make(map[string]string)
	}
	return known
}

// persistMap prunes entries whose file no longer exists and stores the map.
func (m *Mirror) persistMap(known map[string]string) {
	for u, p := range known {
		if !m.fs.Exists(p) {
			delete(known, u)
		}
	}
	data, err := json.Marshal(known)
	if err != nil {
		m.log.Warn("Unable to encode font file map", zap.Error(err))
		return
	}
	m.cache.Set(CacheKey, string(data), 0)
}

// remoteFileName derives the local file name from the URL path component.
// Data URIs and URLs without a file name are not mirrorable.
func remoteFileName(fileURL string) string {
	if strings.HasPrefix(fileURL, "data:") {
		return ""
	}
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return ""
	}
	return platform.CleanFileName(name)
}
