package kvstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrCacheMiss = errors.New("kvstore: key not found")
)

// Visitor is called once per stored pair during ForEach. The scan does not
// advance until it returns, and a non-nil error stops the scan.
type Visitor func(ctx context.Context, key string, value []byte) error

// Backend is the persistence medium behind a Store. Get returns ErrCacheMiss
// for absent keys. Scan must call visit synchronously for each pair.
type Backend interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, visit Visitor) error
	Close() error
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidateTableName rejects names that cannot be interpolated into a schema
// statement or a key pattern as-is.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("kvstore: invalid table name %q", name)
	}

	return nil
}
