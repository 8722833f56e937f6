package platform

import (
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteCache is a Cache backed by a single-file sqlite database so mirror
// state survives process restarts. Access is serialized on one connection -
// the pipeline is request-scoped and the cache is advisory, throughput is not
// a concern here.
type SQLiteCache struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	now  func() time.Time
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key     TEXT PRIMARY KEY,
	value   TEXT NOT NULL,
	expires INTEGER NOT NULL DEFAULT 0
);`

// OpenSQLiteCache opens (creating when necessary) the cache database at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	flags := sqlite.OpenReadWrite | sqlite.OpenCreate
	if path == ":memory:" {
		flags |= sqlite.OpenMemory
	}
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache database '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, cacheSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to initialize cache database '%s': %w", path, err)
	}
	return &SQLiteCache{conn: conn, now: time.Now}, nil
}

// Close releases the underlying connection.
func (c *SQLiteCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// Get returns the stored value if present and not expired. Expired rows are
// removed on read.
func (c *SQLiteCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var value string
	var expires int64
	found := false
	err := sqlitex.Execute(c.conn, `SELECT value, expires FROM kv WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value = stmt.ColumnText(0)
				expires = stmt.ColumnInt64(1)
				found = true
				return nil
			},
		})
	if err != nil || !found {
		return "", false
	}
	if expires != 0 && c.now().Unix() > expires {
		_ = sqlitex.Execute(c.conn, `DELETE FROM kv WHERE key = ?`,
			&sqlitex.ExecOptions{Args: []any{key}})
		return "", false
	}
	return value, true
}

// Set stores value under key. A positive ttl sets its expiry.
func (c *SQLiteCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).Unix()
	}
	// Advisory cache - nothing useful to do on failure, caller falls back to
	// the remote copy.
	_ = sqlitex.Execute(c.conn, `INSERT INTO kv (key, value, expires) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires = excluded.expires`,
		&sqlitex.ExecOptions{Args: []any{key, value, expires}})
}
