// Package catalog stores LV2 port metadata in sqlite so sessions can be
// fixed on machines where the plugins themselves are not installed.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Port is one port of a plugin.
type Port struct {
	Index  uint32
	Symbol string
}

// Plugin is a plugin's full port layout.
type Plugin struct {
	URI      string
	NumPorts uint32
	Ports    []Port
}

type Store struct {
	db *sql.DB
}

// Open opens the catalog at path, creating it when create is set. Opening a
// missing catalog without create fails with an error wrapping os.ErrNotExist.
func Open(path string, create bool) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("catalog path must not be empty")
	}
	info, err := os.Stat(cleanPath)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("catalog path %q is a directory, expected file", cleanPath)
	case errors.Is(err, os.ErrNotExist) && !create:
		return nil, fmt.Errorf("open catalog %q: %w", cleanPath, os.ErrNotExist)
	}

	if create {
		dir := filepath.Dir(cleanPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create catalog directory %q: %w", dir, err)
			}
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite catalog %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite catalog %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize catalog schema %q: %w", cleanPath, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Replace swaps the whole catalog content for plugins in one transaction.
// When a plugin lists a symbol twice the first port wins.
func (s *Store) Replace(ctx context.Context, plugins []Plugin) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plugins`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	pluginStmt, err := tx.PrepareContext(ctx, `INSERT INTO plugins (uri, num_ports) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare plugin insert: %w", err)
	}
	defer pluginStmt.Close()
	portStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO ports (uri, port_index, symbol) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare port insert: %w", err)
	}
	defer portStmt.Close()

	for _, p := range plugins {
		if _, err := pluginStmt.ExecContext(ctx, p.URI, int64(p.NumPorts)); err != nil {
			return fmt.Errorf("insert plugin %s: %w", p.URI, err)
		}
		for _, port := range p.Ports {
			if _, err := portStmt.ExecContext(ctx, p.URI, int64(port.Index), port.Symbol); err != nil {
				return fmt.Errorf("insert port %s/%s: %w", p.URI, port.Symbol, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog replace: %w", err)
	}
	return nil
}

// NumPorts returns the port count of uri and whether the plugin is known.
func (s *Store) NumPorts(ctx context.Context, uri string) (uint32, bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT num_ports FROM plugins WHERE uri = ?`, uri).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query plugin %s: %w", uri, err)
	}
	count, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, false, fmt.Errorf("plugin %s: bad port count %d: %w", uri, n, err)
	}
	return count, true, nil
}

// PortIndex returns the index of symbol in uri.
func (s *Store) PortIndex(ctx context.Context, uri, symbol string) (uint32, bool, error) {
	var i int64
	err := s.db.QueryRowContext(ctx, `SELECT port_index FROM ports WHERE uri = ? AND symbol = ?`, uri, symbol).Scan(&i)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query port %s/%s: %w", uri, symbol, err)
	}
	index, err := safecast.Conv[uint32](i)
	if err != nil {
		return 0, false, fmt.Errorf("port %s/%s: bad index %d: %w", uri, symbol, i, err)
	}
	return index, true, nil
}

// Plugins lists every plugin with its ports ordered by index.
func (s *Store) Plugins(ctx context.Context) ([]Plugin, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.uri, p.num_ports, po.port_index, po.symbol
FROM plugins p
LEFT JOIN ports po ON po.uri = p.uri
ORDER BY p.uri ASC, po.port_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("query plugins: %w", err)
	}
	defer rows.Close()

	var out []Plugin
	for rows.Next() {
		var (
			uri      string
			numPorts int64
			index    sql.NullInt64
			symbol   sql.NullString
		)
		if err := rows.Scan(&uri, &numPorts, &index, &symbol); err != nil {
			return nil, fmt.Errorf("scan plugin row: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].URI != uri {
			count, err := safecast.Conv[uint32](numPorts)
			if err != nil {
				return nil, fmt.Errorf("plugin %s: bad port count %d: %w", uri, numPorts, err)
			}
			out = append(out, Plugin{URI: uri, NumPorts: count})
		}
		if index.Valid && symbol.Valid {
			i, err := safecast.Conv[uint32](index.Int64)
			if err != nil {
				return nil, fmt.Errorf("port %s/%s: bad index %d: %w", uri, symbol.String, index.Int64, err)
			}
			last := &out[len(out)-1]
			last.Ports = append(last.Ports, Port{Index: i, Symbol: symbol.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plugin rows: %w", err)
	}
	return out, nil
}
