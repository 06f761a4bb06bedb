package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSpec = TableSpec{Name: "test"}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type storageFactory func(t *testing.T, clock *fakeClock) Storage

func implementations() map[string]storageFactory {
	return map[string]storageFactory{
		"ephemeral": func(t *testing.T, clock *fakeClock) Storage {
			return NewEphemeralStorage(WithClock(clock.Now))
		},
		"sqlite": func(t *testing.T, clock *fakeClock) Storage {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "storage.db"), WithClock(clock.Now))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestTableBasics(t *testing.T) {
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table, err := factory(t, newFakeClock()).GetTable(ctx, testSpec)
			require.NoError(t, err)

			keys, err := table.Enumerate(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)

			got, err := table.Get(ctx, "foo")
			require.NoError(t, err)
			assert.Nil(t, got)

			_, err = table.Insert(ctx, "foo", []byte{1, 2, 3})
			require.NoError(t, err)
			got, err = table.Get(ctx, "foo")
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, got)

			keys, err = table.Enumerate(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"foo"}, keys)

			_, err = table.Insert(ctx, "bar", []byte{4, 5, 6})
			require.NoError(t, err)
			keys, err = table.Enumerate(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"bar", "foo"}, keys)

			existed, err := table.Delete(ctx, "foo")
			require.NoError(t, err)
			assert.True(t, existed)
			got, err = table.Get(ctx, "foo")
			require.NoError(t, err)
			assert.Nil(t, got)

			existed, err = table.Delete(ctx, "foo")
			require.NoError(t, err)
			assert.False(t, existed)

			require.NoError(t, table.DeleteAll(ctx))
			keys, err = table.Enumerate(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestInsertUpdateErrors(t *testing.T) {
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table, err := factory(t, newFakeClock()).GetTable(ctx, testSpec)
			require.NoError(t, err)

			_, err = table.Insert(ctx, "k", []byte("a"))
			require.NoError(t, err)
			_, err = table.Insert(ctx, "k", []byte("b"))
			assert.ErrorIs(t, err, ErrKeyExists)

			err = table.Update(ctx, "missing", []byte("x"))
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, table.Update(ctx, "k", []byte("c")))
			got, err := table.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("c"), got)

			generated, err := table.Insert(ctx, "", []byte("d"))
			require.NoError(t, err)
			assert.NotEmpty(t, generated)
			got, err = table.Get(ctx, generated)
			require.NoError(t, err)
			assert.Equal(t, []byte("d"), got)
		})
	}
}

func TestUnsupportedOptions(t *testing.T) {
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table, err := factory(t, newFakeClock()).GetTable(ctx, testSpec)
			require.NoError(t, err)

			_, err = table.Insert(ctx, "k", nil, WithPartition("p"))
			assert.ErrorIs(t, err, ErrPartitionsNotSupported)

			_, err = table.Insert(ctx, "k", nil, WithExpiration(time.Now().Add(time.Hour)))
			assert.ErrorIs(t, err, ErrExpirationNotSupported)
		})
	}
}

func TestPartitions(t *testing.T) {
	spec := TableSpec{Name: "partitioned", SupportPartitions: true}
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table, err := factory(t, newFakeClock()).GetTable(ctx, spec)
			require.NoError(t, err)

			_, err = table.Insert(ctx, "k", []byte("a"), WithPartition("p1"))
			require.NoError(t, err)
			_, err = table.Insert(ctx, "k", []byte("b"), WithPartition("p2"))
			require.NoError(t, err)

			got, err := table.Get(ctx, "k", WithPartition("p1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("a"), got)

			got, err = table.Get(ctx, "k")
			require.NoError(t, err)
			assert.Nil(t, got, "default partition is separate")

			keys, err := table.Enumerate(ctx, WithPartition("p2"))
			require.NoError(t, err)
			assert.Equal(t, []string{"k"}, keys)
		})
	}
}

func TestExpiration(t *testing.T) {
	spec := TableSpec{Name: "expiring", SupportExpiration: true}
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			table, err := factory(t, clock).GetTable(ctx, spec)
			require.NoError(t, err)

			_, err = table.Insert(ctx, "short", []byte("x"), WithExpiration(clock.Now().Add(time.Minute)))
			require.NoError(t, err)
			_, err = table.Insert(ctx, "forever", []byte("y"))
			require.NoError(t, err)

			clock.Advance(2 * time.Minute)

			got, err := table.Get(ctx, "short")
			require.NoError(t, err)
			assert.Nil(t, got)

			keys, err := table.Enumerate(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"forever"}, keys)

			// An expired key can be reused.
			_, err = table.Insert(ctx, "short", []byte("z"))
			require.NoError(t, err)

			require.NoError(t, table.PurgeExpired(ctx))
			got, err = table.Get(ctx, "short")
			require.NoError(t, err)
			assert.Equal(t, []byte("z"), got)
		})
	}
}

func TestEnumeratePaging(t *testing.T) {
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			table, err := factory(t, newFakeClock()).GetTable(ctx, testSpec)
			require.NoError(t, err)

			for _, k := range []string{"d", "a", "c", "b", "e"} {
				_, err := table.Insert(ctx, k, []byte(k))
				require.NoError(t, err)
			}

			keys, err := table.Enumerate(ctx, WithLimit(2))
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)

			keys, err = table.Enumerate(ctx, WithAfterKey("b"), WithLimit(2))
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "d"}, keys)
		})
	}
}

func TestGetTableSpecChecks(t *testing.T) {
	for name, factory := range implementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t, newFakeClock())

			_, err := s.GetTable(ctx, testSpec)
			require.NoError(t, err)

			_, err = s.GetTable(ctx, TableSpec{Name: "test", SupportPartitions: true})
			assert.ErrorIs(t, err, ErrSpecMismatch)

			_, err = s.GetTable(ctx, TableSpec{Name: "bad name; DROP"})
			assert.ErrorIs(t, err, ErrInvalidTableName)
		})
	}
}

func TestEphemeralSerialize(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewEphemeralStorage(WithClock(clock.Now))

	table, err := s.GetTable(ctx, testSpec)
	require.NoError(t, err)
	_, err = table.Insert(ctx, "foo", []byte{1, 2, 3})
	require.NoError(t, err)

	exp, err := s.GetTable(ctx, TableSpec{Name: "exp", SupportExpiration: true, SupportPartitions: true})
	require.NoError(t, err)
	deadline := clock.Now().Add(time.Hour)
	_, err = exp.Insert(ctx, "soon", []byte("x"), WithPartition("p"), WithExpiration(deadline))
	require.NoError(t, err)

	data, err := s.Serialize()
	require.NoError(t, err)

	restored, err := DeserializeEphemeral(data, WithClock(clock.Now))
	require.NoError(t, err)

	table, err = restored.GetTable(ctx, testSpec)
	require.NoError(t, err)
	keys, err := table.Enumerate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, keys)
	got, err := table.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	exp, err = restored.GetTable(ctx, TableSpec{Name: "exp", SupportExpiration: true, SupportPartitions: true})
	require.NoError(t, err)
	got, err = exp.Get(ctx, "soon", WithPartition("p"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	clock.Advance(2 * time.Hour)
	got, err = exp.Get(ctx, "soon", WithPartition("p"))
	require.NoError(t, err)
	assert.Nil(t, got, "expiration survives serialization")

	again, err := s.Serialize()
	require.NoError(t, err)
	assert.NotEqual(t, data, again, "expired records are dropped")
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	table, err := s.GetTable(ctx, testSpec)
	require.NoError(t, err)
	_, err = table.Insert(ctx, "foo", []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.GetTable(ctx, testSpec)
	assert.ErrorIs(t, err, ErrClosed)

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetTable(ctx, TableSpec{Name: "test", SupportExpiration: true})
	assert.ErrorIs(t, err, ErrSpecMismatch)

	table, err = s.GetTable(ctx, testSpec)
	require.NoError(t, err)
	got, err := table.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
