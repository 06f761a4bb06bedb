package settings

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// binding is the type-erased view of a Value the model iterates over.
type binding interface {
	Key() string
	current() any
	reset(ctx context.Context) error
	setYAML(ctx context.Context, node *yaml.Node) error
}

// Value is a setting of type T.
type Value[T any] struct {
	key      string
	def      T
	validate func(T) error
	model    *Model

	mu  sync.RWMutex
	cur T
}

// Key returns the storage key of the setting.
func (v *Value[T]) Key() string { return v.key }

// Default returns the default value.
func (v *Value[T]) Default() T { return v.def }

// Get returns the current value. Slice values must not be modified.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set changes the value and, unless the model is read-only, persists it.
func (v *Value[T]) Set(ctx context.Context, x T) error {
	if v.validate != nil {
		if err := v.validate(x); err != nil {
			return fmt.Errorf("setting %s: %w", v.key, err)
		}
	}

	v.mu.Lock()
	v.cur = x
	v.mu.Unlock()

	if v.model.readOnly {
		return nil
	}
	data, err := encMode.Marshal(x)
	if err != nil {
		return fmt.Errorf("setting %s: encode: %w", v.key, err)
	}
	return v.model.write(ctx, v.key, data)
}

func (v *Value[T]) current() any { return v.Get() }

func (v *Value[T]) reset(ctx context.Context) error {
	return v.Set(ctx, v.def)
}

func (v *Value[T]) setYAML(ctx context.Context, node *yaml.Node) error {
	var x T
	if err := node.Decode(&x); err != nil {
		return fmt.Errorf("setting %s: %w", v.key, err)
	}
	return v.Set(ctx, x)
}

// bind registers a setting with the model and loads its stored value.
func bind[T any](ctx context.Context, m *Model, key string, def T, validate func(T) error) (*Value[T], error) {
	v := &Value[T]{key: key, def: def, validate: validate, model: m, cur: def}

	data, err := m.table.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", key, err)
	}
	if data != nil {
		var stored T
		if err := decMode.Unmarshal(data, &stored); err != nil {
			return nil, fmt.Errorf("setting %s: decode: %w", key, err)
		}
		v.cur = stored
	}

	m.bindings = append(m.bindings, v)
	return v, nil
}
