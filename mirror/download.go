package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Drain executes the queued downloads. It is meant to run after the current
// response has been produced; each task fetches into a temporary file, the
// payload is sanity-checked against its extension, and the file is moved into
// place atomically. Individual failures are aggregated and returned but never
// stop the remaining tasks. The queue is cleared regardless of outcome.
func (m *Mirror) Drain(ctx context.Context) (err error) {
	tasks := m.tasks
	m.tasks = nil

	if len(tasks) == 0 {
		return nil
	}
	m.log.Debug("Draining font downloads", zap.Int("count", len(tasks)))

	tmpDir := filepath.Join(m.rootDir, ".tmp")
	for _, t := range tasks {
		if ctx.Err() != nil {
			err = multierr.Append(err, ctx.Err())
			return
		}
		if m.fs.Exists(t.Dest) {
			// another request already mirrored it
			continue
		}
		if er := m.download(ctx, t, tmpDir); er != nil {
			m.log.Warn("Font download failed", zap.String("url", t.URL), zap.Error(er))
			err = multierr.Append(err, er)
		}
	}
	return
}

func (m *Mirror) download(ctx context.Context, t Task, tmpDir string) error {
	fetchURL := t.URL
	if strings.HasPrefix(fetchURL, "//") {
		fetchURL = "https:" + fetchURL
	}

	body, err := m.fetch.Fetch(ctx, fetchURL)
	if err != nil {
		return err
	}
	if !validFontPayload(t.Dest, body) {
		return fmt.Errorf("payload of '%s' does not look like a '%s' font", t.URL, filepath.Ext(t.Dest))
	}

	tmp, err := platformTempFile(tmpDir)
	if err != nil {
		return err
	}
	if err = os.WriteFile(tmp, body, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to write '%s': %w", tmp, err)
	}
	if err = m.fs.Move(tmp, t.Dest, true); err != nil {
		os.Remove(tmp)
		return err
	}
	m.log.Debug("Mirrored font file", zap.String("url", t.URL), zap.String("dest", t.Dest), zap.Int("bytes", len(body)))
	return nil
}

// platformTempFile creates a uniquely named temp file inside dir.
func platformTempFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create temp directory '%s': %w", dir, err)
	}
	return filepath.Join(dir, uuid.NewString()+".part"), nil
}

// validFontPayload sanity-checks downloaded bytes against the destination
// extension for known font formats. Unknown extensions pass through.
func validFontPayload(dest string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".woff":
		return filetype.Is(data, "woff")
	case ".woff2":
		return filetype.Is(data, "woff2")
	case ".ttf":
		return filetype.Is(data, "ttf")
	case ".otf":
		return filetype.Is(data, "otf")
	}
	return true
}
