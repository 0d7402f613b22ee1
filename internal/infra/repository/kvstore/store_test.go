package kvstore_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/angristan/music-tonight/internal/infra/repository/kvstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// gatedBackend counts reads and holds them until release is closed.
type gatedBackend struct {
	*kvstore.MemoryBackend

	gets    atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	getErr  error
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		MemoryBackend: kvstore.NewMemoryBackend(),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (b *gatedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.gets.Add(1)
	b.once.Do(func() { close(b.entered) })
	<-b.release

	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.MemoryBackend.Get(ctx, key)
}

func openStore(t *testing.T, backend kvstore.Backend) *kvstore.Store {
	t.Helper()

	return openStoreWithMetrics(t, backend, nil)
}

func openStoreWithMetrics(t *testing.T, backend kvstore.Backend, m *metrics.Metrics) *kvstore.Store {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	store, err := kvstore.Open(context.Background(), otel.Tracer("test"), logger, m, backend, time.Second)
	require.NoError(t, err)

	return store
}

// counterValue sums the samples of the named counter family.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func concurrentGets(store *kvstore.Store, key string, n int) ([][]byte, []error, *sync.WaitGroup, *sync.WaitGroup) {
	values := make([][]byte, n)
	errs := make([]error, n)

	var started, done sync.WaitGroup
	for i := 0; i < n; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			values[i], errs[i] = store.Get(context.Background(), key)
		}(i)
	}

	return values, errs, &started, &done
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	key := "spotify:Radiohead"

	t.Run("concurrent reads share one backend read", func(t *testing.T) {
		backend := newGatedBackend()
		require.NoError(t, backend.Put(ctx, key, []byte(`{"id":"4Z8W4fKeB5YxbusRsdQVPb"}`)))
		store := openStore(t, backend)

		const callers = 25
		values, errs, started, done := concurrentGets(store, key, callers)

		started.Wait()
		<-backend.entered
		time.Sleep(50 * time.Millisecond)
		close(backend.release)
		done.Wait()

		assert.EqualValues(t, 1, backend.gets.Load())
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.JSONEq(t, `{"id":"4Z8W4fKeB5YxbusRsdQVPb"}`, string(values[i]))
		}
	})

	t.Run("coalesced reads exclude the caller doing the read", func(t *testing.T) {
		backend := newGatedBackend()
		require.NoError(t, backend.Put(ctx, key, []byte(`null`)))
		reg := prometheus.NewRegistry()
		store := openStoreWithMetrics(t, backend, metrics.New(reg))

		const callers = 8
		_, errs, started, done := concurrentGets(store, key, callers)

		started.Wait()
		<-backend.entered
		time.Sleep(50 * time.Millisecond)
		close(backend.release)
		done.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
		}

		reads := float64(backend.gets.Load())
		assert.Equal(t, callers-reads, counterValue(t, reg, "music_tonight_kvstore_coalesced_gets_total"))
		assert.Equal(t, float64(callers), counterValue(t, reg, "music_tonight_kvstore_gets_total"))
	})

	t.Run("a lone read is not coalesced", func(t *testing.T) {
		backend := newGatedBackend()
		close(backend.release)
		reg := prometheus.NewRegistry()
		store := openStoreWithMetrics(t, backend, metrics.New(reg))

		_, err := store.Get(ctx, key)
		require.ErrorIs(t, err, kvstore.ErrCacheMiss)

		assert.Zero(t, counterValue(t, reg, "music_tonight_kvstore_coalesced_gets_total"))
	})

	t.Run("a settled key is read again", func(t *testing.T) {
		backend := newGatedBackend()
		close(backend.release)
		require.NoError(t, backend.Put(ctx, key, []byte(`null`)))
		store := openStore(t, backend)

		_, err := store.Get(ctx, key)
		require.NoError(t, err)
		_, err = store.Get(ctx, key)
		require.NoError(t, err)

		assert.EqualValues(t, 2, backend.gets.Load())
	})

	t.Run("concurrent callers share the failure", func(t *testing.T) {
		backend := newGatedBackend()
		backend.getErr = errors.New("connection reset")
		store := openStore(t, backend)

		const callers = 10
		_, errs, started, done := concurrentGets(store, key, callers)

		started.Wait()
		<-backend.entered
		time.Sleep(50 * time.Millisecond)
		close(backend.release)
		done.Wait()

		assert.EqualValues(t, 1, backend.gets.Load())
		for i := 0; i < callers; i++ {
			assert.ErrorIs(t, errs[i], backend.getErr)
			assert.Equal(t, fault.KindCache, fault.KindOf(errs[i]))
		}
	})

	t.Run("a caller giving up does not fail the shared read", func(t *testing.T) {
		backend := newGatedBackend()
		require.NoError(t, backend.Put(ctx, key, []byte(`{"id":"1"}`)))
		store := openStore(t, backend)

		impatient, cancel := context.WithCancel(ctx)
		impatientErr := make(chan error, 1)
		go func() {
			_, err := store.Get(impatient, key)
			impatientErr <- err
		}()
		<-backend.entered

		patient := make(chan error, 1)
		go func() {
			_, err := store.Get(ctx, key)
			patient <- err
		}()

		cancel()
		assert.ErrorIs(t, <-impatientErr, context.Canceled)

		close(backend.release)
		assert.NoError(t, <-patient)
	})

	t.Run("missing key", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())

		_, err := store.Get(ctx, "deezer:Nobody")
		assert.ErrorIs(t, err, kvstore.ErrCacheMiss)
	})
}

func TestStore_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())

		type record struct {
			ID     string   `json:"id"`
			Tracks []string `json:"tracks"`
		}
		require.NoError(t, store.Set(ctx, "spotify:Björk", record{ID: "7w29UYBi0qsHi5RTcv3lmA", Tracks: []string{"Hyperballad"}}))

		value, err := store.Get(ctx, "spotify:Björk")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"7w29UYBi0qsHi5RTcv3lmA","tracks":["Hyperballad"]}`, string(value))
	})

	t.Run("negative results are stored as null", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())

		require.NoError(t, store.Set(ctx, "deezer:Unknown Band", nil))

		value, err := store.Get(ctx, "deezer:Unknown Band")
		require.NoError(t, err)
		assert.Equal(t, "null", string(value))
	})

	t.Run("last writer wins", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())

		require.NoError(t, store.Set(ctx, "k", "first"))
		require.NoError(t, store.Set(ctx, "k", "second"))

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"second"`, string(value))
	})

	t.Run("oversized entries are logged and stored", func(t *testing.T) {
		logger, hook := logtest.NewNullLogger()
		store, err := kvstore.Open(ctx, otel.Tracer("test"), logger, nil, kvstore.NewMemoryBackend(), time.Second)
		require.NoError(t, err)

		key := strings.Repeat("k", kvstore.MaxKeyLength+1)
		require.NoError(t, store.Set(ctx, key, strings.Repeat("v", kvstore.MaxValueLength)))

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

		_, err = store.Get(ctx, key)
		assert.NoError(t, err)
	})
}

type failingScanBackend struct {
	*kvstore.MemoryBackend
	err error
}

func (b *failingScanBackend) Scan(context.Context, kvstore.Visitor) error {
	return b.err
}

func TestStore_ForEach(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, store *kvstore.Store) {
		for _, name := range []string{"Arcade Fire", "Beach House", "Caribou", "Deerhunter"} {
			require.NoError(t, store.Set(ctx, "spotify:"+name, map[string]string{"name": name}))
		}
	}

	t.Run("visits every pair one at a time", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())
		seed(t, store)

		var (
			active, maxActive atomic.Int32
			keys              []string
		)
		err := store.ForEach(ctx, func(ctx context.Context, key string, value []byte) error {
			n := active.Add(1)
			if n > maxActive.Load() {
				maxActive.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
			keys = append(keys, key)
			active.Add(-1)
			return nil
		})

		require.NoError(t, err)
		assert.EqualValues(t, 1, maxActive.Load())
		assert.Equal(t, []string{"spotify:Arcade Fire", "spotify:Beach House", "spotify:Caribou", "spotify:Deerhunter"}, keys)
	})

	t.Run("visitor may write while iterating", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())
		seed(t, store)

		err := store.ForEach(ctx, func(ctx context.Context, key string, value []byte) error {
			return store.Set(ctx, key, nil)
		})
		require.NoError(t, err)

		value, err := store.Get(ctx, "spotify:Caribou")
		require.NoError(t, err)
		assert.Equal(t, "null", string(value))
	})

	t.Run("visitor failure stops the iteration", func(t *testing.T) {
		store := openStore(t, kvstore.NewMemoryBackend())
		seed(t, store)

		errStop := errors.New("disk full")
		visited := 0
		err := store.ForEach(ctx, func(ctx context.Context, key string, value []byte) error {
			visited++
			if visited == 2 {
				return errStop
			}
			return nil
		})

		assert.ErrorIs(t, err, errStop)
		assert.Equal(t, 2, visited)
		assert.Equal(t, fault.KindUnknown, fault.KindOf(err))
	})

	t.Run("backend failure is a cache fault", func(t *testing.T) {
		backend := &failingScanBackend{MemoryBackend: kvstore.NewMemoryBackend(), err: errors.New("broken pipe")}
		store := openStore(t, backend)

		err := store.ForEach(ctx, func(context.Context, string, []byte) error { return nil })
		assert.ErrorIs(t, err, backend.err)
		assert.Equal(t, fault.KindCache, fault.KindOf(err))
	})
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, kvstore.ValidateTableName("artists"))
	assert.NoError(t, kvstore.ValidateTableName("artists_v2"))
	assert.Error(t, kvstore.ValidateTableName(""))
	assert.Error(t, kvstore.ValidateTableName("artists; DROP TABLE x"))
	assert.Error(t, kvstore.ValidateTableName("2artists"))
}
