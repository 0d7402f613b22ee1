//go:build !cgo

package sqlite

import (
	"context"
	"errors"

	"github.com/angristan/music-tonight/internal/infra/repository/kvstore"
)

var ErrUnavailable = errors.New("sqlite backend requires cgo")

type Backend struct{}

func Open(_ string, _ string) (*Backend, error) {
	return nil, ErrUnavailable
}

func (b *Backend) Init(context.Context) error                  { return ErrUnavailable }
func (b *Backend) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }
func (b *Backend) Put(context.Context, string, []byte) error   { return ErrUnavailable }
func (b *Backend) Scan(context.Context, kvstore.Visitor) error { return ErrUnavailable }
func (b *Backend) Close() error                                { return nil }
