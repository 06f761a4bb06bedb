package storage

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// Storage errors.
var (
	ErrKeyExists              = errors.New("key already exists")
	ErrKeyNotFound            = errors.New("key not found")
	ErrPartitionsNotSupported = errors.New("table does not support partitions")
	ErrExpirationNotSupported = errors.New("table does not support expiration")
	ErrSpecMismatch           = errors.New("table spec does not match existing table")
	ErrInvalidTableName       = errors.New("invalid table name")
	ErrClosed                 = errors.New("storage closed")
)

// NoExpiration marks a record that never expires.
var NoExpiration = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// TableSpec describes a table.
type TableSpec struct {
	Name              string `cbor:"1,keyasint"`
	SupportPartitions bool   `cbor:"2,keyasint"`
	SupportExpiration bool   `cbor:"3,keyasint"`
}

func (s TableSpec) validate() error {
	if !tableNamePattern.MatchString(s.Name) {
		return ErrInvalidTableName
	}
	return nil
}

// Storage hands out tables.
type Storage interface {
	// GetTable returns the table described by spec, creating it if needed.
	// Asking for an existing table with a different spec fails with
	// ErrSpecMismatch.
	GetTable(ctx context.Context, spec TableSpec) (Table, error)
}

// Table is a set of keyed records.
type Table interface {
	Spec() TableSpec

	// Get returns the data for key, or nil if there is no live record.
	Get(ctx context.Context, key string, opts ...Option) ([]byte, error)

	// Insert stores a new record and returns its key. An empty key makes the
	// table generate one. Inserting an existing live key fails with
	// ErrKeyExists.
	Insert(ctx context.Context, key string, data []byte, opts ...Option) (string, error)

	// Update replaces the data of an existing record. The expiration is
	// replaced too: NoExpiration unless WithExpiration is given.
	Update(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, key string, opts ...Option) (bool, error)

	// DeleteAll removes every record in every partition.
	DeleteAll(ctx context.Context) error

	// Enumerate lists live keys of a partition in ascending order.
	Enumerate(ctx context.Context, opts ...Option) ([]string, error)

	// PurgeExpired drops expired records. Reads never return expired
	// records, so this only reclaims space.
	PurgeExpired(ctx context.Context) error
}

// Option modifies a single table operation.
type Option func(*opOptions)

type opOptions struct {
	partition  string
	expiration time.Time
	afterKey   string
	limit      int
}

// WithPartition selects the partition an operation acts on.
func WithPartition(partition string) Option {
	return func(o *opOptions) { o.partition = partition }
}

// WithExpiration sets the expiration of an inserted or updated record.
func WithExpiration(t time.Time) Option {
	return func(o *opOptions) { o.expiration = t }
}

// WithAfterKey makes Enumerate start after the given key.
func WithAfterKey(key string) Option {
	return func(o *opOptions) { o.afterKey = key }
}

// WithLimit caps the number of keys Enumerate returns.
func WithLimit(n int) Option {
	return func(o *opOptions) { o.limit = n }
}

func applyOptions(spec TableSpec, opts []Option) (opOptions, error) {
	o := opOptions{expiration: NoExpiration}
	for _, opt := range opts {
		opt(&o)
	}
	if o.partition != "" && !spec.SupportPartitions {
		return o, ErrPartitionsNotSupported
	}
	if !o.expiration.Equal(NoExpiration) && !spec.SupportExpiration {
		return o, ErrExpirationNotSupported
	}
	return o, nil
}

// StorageOption configures a Storage implementation.
type StorageOption func(*storageConfig)

type storageConfig struct {
	clock func() time.Time
}

// WithClock overrides the time source used for expiration checks.
func WithClock(clock func() time.Time) StorageOption {
	return func(c *storageConfig) { c.clock = clock }
}

func newStorageConfig(opts []StorageOption) storageConfig {
	c := storageConfig{clock: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
