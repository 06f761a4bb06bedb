package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// EphemeralStorage keeps tables in memory.
type EphemeralStorage struct {
	mu     sync.Mutex
	clock  func() time.Time
	tables map[string]*ephemeralTable
}

// NewEphemeralStorage creates an empty in-memory storage.
func NewEphemeralStorage(opts ...StorageOption) *EphemeralStorage {
	cfg := newStorageConfig(opts)
	return &EphemeralStorage{
		clock:  cfg.clock,
		tables: make(map[string]*ephemeralTable),
	}
}

// GetTable implements Storage.
func (s *EphemeralStorage) GetTable(ctx context.Context, spec TableSpec) (Table, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tables[spec.Name]; ok {
		if t.spec != spec {
			return nil, fmt.Errorf("%w: %s", ErrSpecMismatch, spec.Name)
		}
		return t, nil
	}
	t := newEphemeralTable(spec, s)
	s.tables[spec.Name] = t
	return t, nil
}

type ephemeralEntry struct {
	data       []byte
	expiration time.Time
}

type ephemeralTable struct {
	spec    TableSpec
	storage *EphemeralStorage

	// partition -> key -> entry
	partitions map[string]map[string]ephemeralEntry
}

func newEphemeralTable(spec TableSpec, s *EphemeralStorage) *ephemeralTable {
	return &ephemeralTable{
		spec:       spec,
		storage:    s,
		partitions: make(map[string]map[string]ephemeralEntry),
	}
}

func (t *ephemeralTable) Spec() TableSpec { return t.spec }

// live returns the entry if present and not expired. Caller holds storage.mu.
func (t *ephemeralTable) live(partition, key string) (ephemeralEntry, bool) {
	e, ok := t.partitions[partition][key]
	if !ok {
		return e, false
	}
	if !e.expiration.After(t.storage.clock()) {
		return e, false
	}
	return e, true
}

func (t *ephemeralTable) Get(ctx context.Context, key string, opts ...Option) ([]byte, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return nil, err
	}

	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	e, ok := t.live(o.partition, key)
	if !ok {
		return nil, nil
	}
	return cloneBytes(e.data), nil
}

func (t *ephemeralTable) Insert(ctx context.Context, key string, data []byte, opts ...Option) (string, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return "", err
	}

	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	if key == "" {
		key = uuid.NewString()
	} else if _, ok := t.live(o.partition, key); ok {
		return "", fmt.Errorf("%w: %s", ErrKeyExists, key)
	}

	p, ok := t.partitions[o.partition]
	if !ok {
		p = make(map[string]ephemeralEntry)
		t.partitions[o.partition] = p
	}
	p[key] = ephemeralEntry{data: cloneBytes(data), expiration: o.expiration}
	return key, nil
}

func (t *ephemeralTable) Update(ctx context.Context, key string, data []byte, opts ...Option) error {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return err
	}

	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	if _, ok := t.live(o.partition, key); !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	t.partitions[o.partition][key] = ephemeralEntry{data: cloneBytes(data), expiration: o.expiration}
	return nil
}

func (t *ephemeralTable) Delete(ctx context.Context, key string, opts ...Option) (bool, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return false, err
	}

	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	_, existed := t.live(o.partition, key)
	if p, ok := t.partitions[o.partition]; ok {
		delete(p, key)
		if len(p) == 0 {
			delete(t.partitions, o.partition)
		}
	}
	return existed, nil
}

func (t *ephemeralTable) DeleteAll(ctx context.Context) error {
	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	t.partitions = make(map[string]map[string]ephemeralEntry)
	return nil
}

func (t *ephemeralTable) Enumerate(ctx context.Context, opts ...Option) ([]string, error) {
	o, err := applyOptions(t.spec, opts)
	if err != nil {
		return nil, err
	}

	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	keys := make([]string, 0, len(t.partitions[o.partition]))
	for k := range t.partitions[o.partition] {
		if _, ok := t.live(o.partition, k); !ok {
			continue
		}
		if o.afterKey != "" && k <= o.afterKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if o.limit > 0 && len(keys) > o.limit {
		keys = keys[:o.limit]
	}
	return keys, nil
}

func (t *ephemeralTable) PurgeExpired(ctx context.Context) error {
	if !t.spec.SupportExpiration {
		return nil
	}

	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	now := t.storage.clock()
	for name, p := range t.partitions {
		for k, e := range p {
			if !e.expiration.After(now) {
				delete(p, k)
			}
		}
		if len(p) == 0 {
			delete(t.partitions, name)
		}
	}
	return nil
}

// Serialized form of an EphemeralStorage.
type serializedStorage struct {
	Tables []serializedTable `cbor:"1,keyasint"`
}

type serializedTable struct {
	Spec    TableSpec         `cbor:"1,keyasint"`
	Records []serializedEntry `cbor:"2,keyasint,omitempty"`
}

type serializedEntry struct {
	Partition  string `cbor:"1,keyasint,omitempty"`
	Key        string `cbor:"2,keyasint"`
	Data       []byte `cbor:"3,keyasint"`
	Expiration int64  `cbor:"4,keyasint,omitempty"` // Unix milliseconds; 0 = never
}

var serialEncMode, serialDecMode = mustSerialModes()

func mustSerialModes() (cbor.EncMode, cbor.DecMode) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create storage CBOR encoder mode: %v", err))
	}
	dec, err := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create storage CBOR decoder mode: %v", err))
	}
	return enc, dec
}

// Serialize encodes the full contents of the storage as CBOR. Expired
// records are dropped. Tables are written in name order so the output is
// deterministic.
func (s *EphemeralStorage) Serialize() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	out := serializedStorage{Tables: make([]serializedTable, 0, len(names))}
	for _, name := range names {
		t := s.tables[name]
		st := serializedTable{Spec: t.spec}

		partitions := make([]string, 0, len(t.partitions))
		for p := range t.partitions {
			partitions = append(partitions, p)
		}
		sort.Strings(partitions)

		for _, p := range partitions {
			keys := make([]string, 0, len(t.partitions[p]))
			for k := range t.partitions[p] {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				e := t.partitions[p][k]
				if !e.expiration.After(now) {
					continue
				}
				rec := serializedEntry{Partition: p, Key: k, Data: e.data}
				if !e.expiration.Equal(NoExpiration) {
					rec.Expiration = e.expiration.UnixMilli()
				}
				st.Records = append(st.Records, rec)
			}
		}
		out.Tables = append(out.Tables, st)
	}

	data, err := serialEncMode.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode storage: %w", err)
	}
	return data, nil
}

// DeserializeEphemeral restores a storage produced by Serialize.
func DeserializeEphemeral(data []byte, opts ...StorageOption) (*EphemeralStorage, error) {
	var in serializedStorage
	if err := serialDecMode.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode storage: %w", err)
	}

	s := NewEphemeralStorage(opts...)
	for _, st := range in.Tables {
		if err := st.Spec.validate(); err != nil {
			return nil, fmt.Errorf("%w: %q", err, st.Spec.Name)
		}
		t := newEphemeralTable(st.Spec, s)
		for _, rec := range st.Records {
			exp := NoExpiration
			if rec.Expiration != 0 {
				exp = time.UnixMilli(rec.Expiration)
			}
			p, ok := t.partitions[rec.Partition]
			if !ok {
				p = make(map[string]ephemeralEntry)
				t.partitions[rec.Partition] = p
			}
			p[rec.Key] = ephemeralEntry{data: cloneBytes(rec.Data), expiration: exp}
		}
		s.tables[st.Spec.Name] = t
	}
	return s, nil
}

// cloneBytes never returns nil so an empty record is distinguishable from a
// missing one.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
