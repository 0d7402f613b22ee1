//go:build cgo

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angristan/music-tonight/internal/infra/repository/kvstore"
	_ "github.com/mattn/go-sqlite3"
)

// Backend keeps entries in a two column table (k, v) of a SQLite database.
type Backend struct {
	db    *sql.DB
	table string
}

// Open opens (or creates) the database file at path. WAL mode lets a scan
// run while visitors write.
func Open(path string, table string) (*Backend, error) {
	if err := kvstore.ValidateTableName(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	return &Backend{db: db, table: table}, nil
}

func (b *Backend) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		k VARCHAR(255) PRIMARY KEY,
		v TEXT NOT NULL
	)`, b.table)

	_, err := b.db.ExecContext(ctx, stmt)
	return err
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, "SELECT v FROM "+b.table+" WHERE k = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kvstore.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		"INSERT INTO "+b.table+" (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
		key, string(value),
	)
	return err
}

// Scan streams rows; the next row is not read until visit returns.
func (b *Backend) Scan(ctx context.Context, visit kvstore.Visitor) error {
	rows, err := b.db.QueryContext(ctx, "SELECT k, v FROM "+b.table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}

		if err := visit(ctx, key, value); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (b *Backend) Close() error {
	return b.db.Close()
}
