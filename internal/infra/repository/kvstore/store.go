// Package kvstore is the persistent artist cache. Concurrent reads of the
// same key share a single backend read.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Soft limits inherited from the original MySQL schema. Exceeding them is
// logged, not rejected.
const (
	MaxKeyLength   = 255
	MaxValueLength = 21000
)

const defaultReadTimeout = 5 * time.Second

type Store struct {
	tracer      trace.Tracer
	logger      logrus.FieldLogger
	metrics     *metrics.Metrics
	backend     Backend
	readTimeout time.Duration

	inflight singleflight.Group
}

// Open initializes the backend (creating its table or keyspace when absent)
// and returns a Store over it.
func Open(
	ctx context.Context,
	tracer trace.Tracer,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
	backend Backend,
	readTimeout time.Duration,
) (*Store, error) {
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	if err := backend.Init(ctx); err != nil {
		return nil, fault.Cache("kvstore.Init", err)
	}

	return &Store{
		tracer:      tracer,
		logger:      logger,
		metrics:     m,
		backend:     backend,
		readTimeout: readTimeout,
	}, nil
}

// Get returns the raw JSON stored under key, or ErrCacheMiss. Callers
// racing on the same key receive the same slice and must not modify it.
//
// The shared read runs detached from the first caller's context, so a caller
// giving up does not fail the others.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "Store.Get")
	defer span.End()

	span.SetAttributes(attribute.String("key", key))

	// Only the caller whose function runs performs the read. The write to
	// leader happens before the result is delivered on ch.
	leader := false
	ch := s.inflight.DoChan(key, func() (any, error) {
		leader = true

		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.readTimeout)
		defer cancel()

		return s.backend.Get(readCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared && !leader {
			s.metrics.CacheCoalesced()
		}

		if res.Err != nil {
			if errors.Is(res.Err, ErrCacheMiss) {
				span.AddEvent("Cache miss")
				s.metrics.CacheGet("miss")
				return nil, ErrCacheMiss
			}

			span.RecordError(res.Err)
			s.metrics.CacheGet("error")
			return nil, fault.Cache("kvstore.Get", res.Err)
		}

		span.AddEvent("Cache hit")
		s.metrics.CacheGet("hit")
		return res.Val.([]byte), nil
	}
}

// Set JSON-encodes value and upserts it under key.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	ctx, span := s.tracer.Start(ctx, "Store.Set")
	defer span.End()

	span.SetAttributes(attribute.String("key", key))

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: encode %q: %w", key, err)
	}

	if len(key) > MaxKeyLength || len(data) > MaxValueLength {
		s.logger.WithFields(logrus.Fields{
			"key":          key,
			"key_length":   len(key),
			"value_length": len(data),
		}).Warn("Cache entry exceeds soft size limits")
	}

	if err := s.backend.Put(ctx, key, data); err != nil {
		span.RecordError(err)
		s.metrics.CacheWrite("error")
		return fault.Cache("kvstore.Set", err)
	}

	s.metrics.CacheWrite("ok")
	return nil
}

type visitError struct {
	key string
	err error
}

func (e *visitError) Error() string {
	return fmt.Sprintf("visit %q: %v", e.key, e.err)
}

func (e *visitError) Unwrap() error {
	return e.err
}

// ForEach streams every stored pair through visit. The backend cursor waits
// for each visit to return. An error from visit ends the iteration and is
// returned wrapped; backend failures are returned as cache faults.
func (s *Store) ForEach(ctx context.Context, visit Visitor) error {
	ctx, span := s.tracer.Start(ctx, "Store.ForEach")
	defer span.End()

	visited := 0
	err := s.backend.Scan(ctx, func(ctx context.Context, key string, value []byte) error {
		if err := visit(ctx, key, value); err != nil {
			return &visitError{key: key, err: err}
		}
		visited++
		return nil
	})
	span.SetAttributes(attribute.Int("visited", visited))

	if err != nil {
		span.RecordError(err)

		var ve *visitError
		if errors.As(err, &ve) {
			return fmt.Errorf("kvstore: %w", ve)
		}
		return fault.Cache("kvstore.ForEach", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}
