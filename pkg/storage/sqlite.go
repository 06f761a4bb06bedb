package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStorage persists tables in a SQLite database. Each table spec maps to
// one SQL table; the specs themselves are recorded in a catalog table so a
// reopened database rejects mismatching specs.
type SQLiteStorage struct {
	db    *sql.DB
	clock func() time.Time

	mu     sync.Mutex
	tables map[string]*sqliteTable
	closed bool
}

const ddlCatalog = `
CREATE TABLE IF NOT EXISTS storage_tables (
    name       TEXT    PRIMARY KEY,
    partitions INTEGER NOT NULL,
    expiration INTEGER NOT NULL
);
`

const ddlTable = `
CREATE TABLE IF NOT EXISTS %[1]s (
    part       TEXT    NOT NULL,
    id         TEXT    NOT NULL,
    expiration INTEGER NOT NULL, -- Unix milliseconds
    data       BLOB    NOT NULL,
    PRIMARY KEY (part, id)
);
CREATE INDEX IF NOT EXISTS idx_%[2]s_expiration ON %[1]s (expiration);
`

// OpenSQLite opens (or creates) the SQLite file at path with WAL journal mode.
func OpenSQLite(path string, opts ...StorageOption) (*SQLiteStorage, error) {
	cfg := newStorageConfig(opts)

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	// Single writer; WAL still lets readers proceed.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ddlCatalog); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		clock:  cfg.clock,
		tables: make(map[string]*sqliteTable),
	}, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// GetTable implements Storage.
func (s *SQLiteStorage) GetTable(ctx context.Context, spec TableSpec) (Table, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if t, ok := s.tables[spec.Name]; ok {
		if t.spec != spec {
			return nil, fmt.Errorf("%w: %s", ErrSpecMismatch, spec.Name)
		}
		return t, nil
	}

	var partitions, expiration bool
	err := s.db.QueryRowContext(ctx,
		`SELECT partitions, expiration FROM storage_tables WHERE name = ?`, spec.Name,
	).Scan(&partitions, &expiration)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO storage_tables (name, partitions, expiration) VALUES (?, ?, ?)`,
			spec.Name, spec.SupportPartitions, spec.SupportExpiration,
		); err != nil {
			return nil, fmt.Errorf("storage: register table %s: %w", spec.Name, err)
		}
	case err != nil:
		return nil, fmt.Errorf("storage: lookup table %s: %w", spec.Name, err)
	case partitions != spec.SupportPartitions || expiration != spec.SupportExpiration:
		return nil, fmt.Errorf("%w: %s", ErrSpecMismatch, spec.Name)
	}

	sqlName := "st_" + spec.Name
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(ddlTable, sqlName, spec.Name)); err != nil {
		return nil, fmt.Errorf("storage: create table %s: %w", spec.Name, err)
	}

	t := &sqliteTable{spec: spec, name: sqlName, storage: s}
	s.tables[spec.Name] = t
	return t, nil
}

type sqliteTable struct {
	spec    TableSpec
	name    string
	storage *SQLiteStorage
}

func (t *sqliteTable) Spec() TableSpec { return t.spec }

func (t *sqliteTable) now() int64 { return t.storage.clock().UnixMilli() }

func (t *sqliteTable) Get(ctx context.Context, key string, opts ...Option) ([]byte, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = t.storage.db.QueryRowContext(ctx,
		`SELECT data FROM `+t.name+` WHERE part = ? AND id = ? AND expiration > ?`,
		o.partition, key, t.now(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s/%s: %w", t.spec.Name, key, err)
	}
	return nonNil(data), nil
}

func (t *sqliteTable) Insert(ctx context.Context, key string, data []byte, opts ...Option) (string, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = uuid.NewString()
	}

	tx, err := t.storage.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	// An expired record does not block reuse of its key.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+t.name+` WHERE part = ? AND id = ? AND expiration <= ?`,
		o.partition, key, t.now(),
	); err != nil {
		return "", fmt.Errorf("storage: insert %s/%s: %w", t.spec.Name, key, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+t.name+` (part, id, expiration, data) VALUES (?, ?, ?, ?)`,
		o.partition, key, o.expiration.UnixMilli(), nonNil(data),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return "", fmt.Errorf("%w: %s", ErrKeyExists, key)
		}
		return "", fmt.Errorf("storage: insert %s/%s: %w", t.spec.Name, key, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: commit: %w", err)
	}
	return key, nil
}

func (t *sqliteTable) Update(ctx context.Context, key string, data []byte, opts ...Option) error {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return err
	}

	res, err := t.storage.db.ExecContext(ctx,
		`UPDATE `+t.name+` SET data = ?, expiration = ? WHERE part = ? AND id = ? AND expiration > ?`,
		nonNil(data), o.expiration.UnixMilli(), o.partition, key, t.now(),
	)
	if err != nil {
		return fmt.Errorf("storage: update %s/%s: %w", t.spec.Name, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: update %s/%s: %w", t.spec.Name, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return nil
}

func (t *sqliteTable) Delete(ctx context.Context, key string, opts ...Option) (bool, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return false, err
	}

	tx, err := t.storage.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	var live int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+t.name+` WHERE part = ? AND id = ? AND expiration > ?`,
		o.partition, key, t.now(),
	).Scan(&live); err != nil {
		return false, fmt.Errorf("storage: delete %s/%s: %w", t.spec.Name, key, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+t.name+` WHERE part = ? AND id = ?`, o.partition, key,
	); err != nil {
		return false, fmt.Errorf("storage: delete %s/%s: %w", t.spec.Name, key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("storage: commit: %w", err)
	}
	return live > 0, nil
}

func (t *sqliteTable) DeleteAll(ctx context.Context) error {
	if _, err := t.storage.db.ExecContext(ctx, `DELETE FROM `+t.name); err != nil {
		return fmt.Errorf("storage: delete all %s: %w", t.spec.Name, err)
	}
	return nil
}

func (t *sqliteTable) Enumerate(ctx context.Context, opts ...Option) ([]string, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return nil, err
	}
	limit := o.limit
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := t.storage.db.QueryContext(ctx,
		`SELECT id FROM `+t.name+` WHERE part = ? AND id > ? AND expiration > ? ORDER BY id LIMIT ?`,
		o.partition, o.afterKey, t.now(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: enumerate %s: %w", t.spec.Name, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("storage: enumerate %s: %w", t.spec.Name, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (t *sqliteTable) PurgeExpired(ctx context.Context) error {
	if !t.spec.SupportExpiration {
		return nil
	}
	if _, err := t.storage.db.ExecContext(ctx,
		`DELETE FROM `+t.name+` WHERE expiration <= ?`, t.now(),
	); err != nil {
		return fmt.Errorf("storage: purge %s: %w", t.spec.Name, err)
	}
	return nil
}

// nonNil maps nil to an empty slice. A nil slice binds as NULL, which the
// data column rejects, and Get must tell empty records from missing ones.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
