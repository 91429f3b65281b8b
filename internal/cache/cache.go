// Package cache stores compiled-graph dumps keyed by a hash of the
// source text, so repeated builds of unchanged input skip
// lexing/parsing/lowering/idealization/scheduling entirely.
//
// Driver selection follows the DSN-scheme dispatch in
// _examples/sentra-language-sentra/internal/database/db_manager.go: one
// database/sql-backed code path, not four bespoke ones, with the scheme
// prefix of the DSN picking the registered driver.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"golang.org/x/sync/singleflight"
)

// Entry is what a cache hit returns: the diagnostic output §6.3 of the
// spec names (a post-idealization graphviz dump and the GCM block
// listing) for a given source text.
type Entry struct {
	Graphviz   string
	BlockList  string
	SugarcVers string
}

// Cache wraps a database/sql handle. Queries never touch this package's
// own migration/placement logic beyond the one table it owns
// ("compile_cache"); callers provide an already-open DSN.
type Cache struct {
	db     *sql.DB
	driver string
	group  singleflight.Group
}

// Open resolves dsn's scheme to a registered driver and opens the
// underlying database/sql connection. Supported schemes: "sqlite:",
// "postgres:"/"postgresql:", "mysql:", "sqlserver:".
func Open(dsn string) (*Cache, error) {
	driverName, dataSource, err := splitDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", driverName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", driverName, err)
	}

	c := &Cache{db: db, driver: driverName}
	if err := c.ensureSchema(driverName); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// rebind rewrites "?" placeholders to whatever bind syntax driver
// actually understands. sqlite/mysql accept "?" natively; postgres wants
// "$1", "$2", ...; sqlserver wants "@p1", "@p2", ....
func (c *Cache) rebind(query string) string {
	if c.driver == "sqlite" || c.driver == "mysql" {
		return query
	}

	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		if c.driver == "sqlserver" {
			fmt.Fprintf(&b, "@p%d", n)
		} else {
			fmt.Fprintf(&b, "$%d", n)
		}
	}
	return b.String()
}

func (c *Cache) Close() error { return c.db.Close() }

// ensureSchema creates the cache table if absent. Column types are kept
// to the lowest common denominator (TEXT) across sqlite/postgres/mysql/
// sqlserver rather than branching per driver.
func (c *Cache) ensureSchema(driverName string) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS compile_cache (
			source_hash TEXT PRIMARY KEY,
			sugarc_version TEXT NOT NULL,
			graphviz TEXT NOT NULL,
			block_list TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("cache: create schema (%s): %w", driverName, err)
	}
	return nil
}

// Key hashes source text plus the compiler version: a cache entry from
// an older sugarc build must never be served to a newer one, since
// idealization/GCM output format can change between versions.
func Key(source, sugarcVersion string) string {
	h := sha256.New()
	h.Write([]byte(sugarcVersion))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns a cached entry for key, or (Entry{}, false, nil) on a
// miss. Concurrent lookups for the same key are deduplicated via
// singleflight so a cold cache under concurrent `sugarc build` (see
// cmd/sugarc's errgroup fan-out) issues one query, not N.
func (c *Cache) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		row := c.db.QueryRowContext(ctx, c.rebind(`
			SELECT sugarc_version, graphviz, block_list
			FROM compile_cache WHERE source_hash = ?
		`), key)

		var e Entry
		if err := row.Scan(&e.SugarcVers, &e.Graphviz, &e.BlockList); err != nil {
			if err == sql.ErrNoRows {
				return Entry{}, nil
			}
			return Entry{}, fmt.Errorf("cache: lookup %s: %w", key, err)
		}
		return e, nil
	})
	if err != nil {
		return Entry{}, false, err
	}

	e := v.(Entry)
	return e, e.SugarcVers != "", nil
}

// Store upserts a compile result under key.
//
// The ON CONFLICT upsert syntax below is sqlite/postgres dialect; mysql
// and sqlserver use different upsert statements (ON DUPLICATE KEY
// UPDATE / MERGE) which this toy cache does not translate — a delete+
// insert would be dialect-neutral but loses the single-statement
// atomicity, so for now Store targets sqlite/postgres DSNs only.
func (c *Cache) Store(ctx context.Context, key string, e Entry) error {
	_, err := c.db.ExecContext(ctx, c.rebind(`
		INSERT INTO compile_cache (source_hash, sugarc_version, graphviz, block_list)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source_hash) DO UPDATE SET
			sugarc_version = excluded.sugarc_version,
			graphviz = excluded.graphviz,
			block_list = excluded.block_list
	`), key, e.SugarcVers, e.Graphviz, e.BlockList)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", key, err)
	}
	return nil
}

func splitDSN(dsn string) (driverName, dataSource string, err error) {
	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return "", "", fmt.Errorf("cache: %q has no scheme (expected sqlite:/postgres:/mysql:/sqlserver:)", dsn)
	}

	switch scheme {
	case "sqlite":
		return "sqlite", rest, nil
	case "postgres", "postgresql":
		return "postgres", dsn, nil
	case "mysql":
		return "mysql", rest, nil
	case "sqlserver":
		return "sqlserver", dsn, nil
	default:
		return "", "", fmt.Errorf("cache: unsupported DSN scheme %q", scheme)
	}
}
