// Package configstore persists typed configuration entries for any
// models.Configurable owner. Entries are keyed by (owner type, owner id, key)
// and written with upsert semantics.
package configstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nebari-dev/modelconfig/internal/hooks"
	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
	"gorm.io/gorm"
)

// Options configures a Store.
type Options struct {
	Keys  KeyPolicy
	Hooks *hooks.Dispatcher
}

// Store reads and writes configuration entries of type T. T is
// models.Configuration or a struct embedding it.
type Store[T any, PT models.Record[T]] struct {
	db    *gorm.DB
	keys  keyRules
	hooks *hooks.Dispatcher
}

// DefaultStore stores plain models.Configuration entries.
type DefaultStore = Store[models.Configuration, *models.Configuration]

// New creates a Store for entry type T.
func New[T any, PT models.Record[T]](db *gorm.DB, opts Options) *Store[T, PT] {
	return &Store[T, PT]{
		db:    db,
		keys:  newKeyRules(opts.Keys),
		hooks: opts.Hooks,
	}
}

// NewDefault creates a Store for models.Configuration.
func NewDefault(db *gorm.DB, opts Options) *DefaultStore {
	return New[models.Configuration](db, opts)
}

// SanitizeKey applies the store's key policy to key.
func (s *Store[T, PT]) SanitizeKey(key string) string {
	return SanitizeKey(key, s.keys.fold)
}

// Query returns the owner-scoped query used for listing, ordered by creation.
func (s *Store[T, PT]) Query(ctx context.Context, owner models.Configurable) *gorm.DB {
	var zero T
	return s.scoped(s.db.WithContext(ctx), owner).
		Model(PT(&zero)).
		Order("created_at ASC").
		Order("id ASC")
}

// Find runs a query produced by Query, possibly refined by hooks.
func (s *Store[T, PT]) Find(q *gorm.DB) ([]T, error) {
	entries := []T{}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return entries, nil
}

// List returns all entries for owner.
func (s *Store[T, PT]) List(ctx context.Context, owner models.Configurable) ([]T, error) {
	return s.Find(s.Query(ctx, owner))
}

// Get returns the owner's entry for key or ErrNotFound.
func (s *Store[T, PT]) Get(ctx context.Context, owner models.Configurable, key string) (PT, error) {
	k, ok := s.keys.sanitize(key)
	if !ok {
		return nil, ErrNotFound
	}
	return s.find(s.db.WithContext(ctx), owner, k)
}

// GetValue returns the typed value stored under key. The result is absent
// when there is no entry, when its type tag is unknown, or when a date no
// longer parses.
func (s *Store[T, PT]) GetValue(ctx context.Context, owner models.Configurable, key string) (valuetype.Value, error) {
	rec, err := s.Get(ctx, owner, key)
	if errors.Is(err, ErrNotFound) {
		return valuetype.None(), nil
	}
	if err != nil {
		return valuetype.None(), err
	}
	return Decode(rec.Entry())
}

// GetType returns the type tag recorded for key, or ErrNotFound when the entry
// is missing or carries an unknown tag.
func (s *Store[T, PT]) GetType(ctx context.Context, owner models.Configurable, key string) (valuetype.Type, error) {
	rec, err := s.Get(ctx, owner, key)
	if err != nil {
		return "", err
	}
	if t := rec.Entry().Type; t.Valid() {
		return t, nil
	}
	return "", ErrNotFound
}

// SetValue coerces value to tag and creates or updates the owner's entry for
// key. The returned bool reports whether the entry was created. Value-set
// hooks run after the write; a hook error is returned alongside the persisted
// entry.
func (s *Store[T, PT]) SetValue(ctx context.Context, owner models.Configurable, key string, value any, tag valuetype.Type) (PT, bool, error) {
	if !tag.Valid() {
		return nil, false, invalid("type", "unknown value type %q", tag)
	}
	k, ok := s.keys.sanitize(key)
	if !ok {
		return nil, false, invalid("key", "key must contain at least one letter, digit or one of - _ . +")
	}
	if !s.keys.writable(k) {
		return nil, false, invalid("key", "key %q is not allowed", k)
	}

	coerced := tag.Coerce(value)
	raw, err := json.Marshal(tag.Storable(coerced))
	if err != nil {
		return nil, false, invalid("value", "value cannot be stored: %v", err)
	}

	rec, created, err := s.upsert(ctx, owner, k, models.JSONValue(raw), tag)
	if err != nil {
		return nil, false, err
	}

	err = s.hooks.ValueSet(ctx, hooks.ValueSetEvent{
		Owner:   owner,
		Key:     k,
		Value:   coerced,
		Type:    tag,
		Entry:   rec.Entry(),
		Created: created,
	})
	return rec, created, err
}

// upsert writes the entry inside a transaction. An insert that loses a race
// against a concurrent insert of the same key is retried once as an update.
func (s *Store[T, PT]) upsert(ctx context.Context, owner models.Configurable, key string, raw models.JSONValue, tag valuetype.Type) (PT, bool, error) {
	var (
		rec     PT
		created bool
	)
	write := func(tx *gorm.DB) error {
		existing, err := s.find(tx, owner, key)
		switch {
		case errors.Is(err, ErrNotFound):
			var fresh T
			rec, created = PT(&fresh), true
			e := rec.Entry()
			e.ConfigurableType = owner.ConfigurableType()
			e.ConfigurableID = owner.ConfigurableID()
			e.Key = key
			e.Value = raw
			e.Type = tag
			return tx.Create(rec).Error
		case err != nil:
			return err
		}
		rec, created = existing, false
		e := rec.Entry()
		e.Value = raw
		e.Type = tag
		return tx.Save(rec).Error
	}

	err := s.db.WithContext(ctx).Transaction(write)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.db.WithContext(ctx).Transaction(write)
	}
	if err != nil {
		return nil, false, fmt.Errorf("save configuration %q: %w", key, err)
	}
	return rec, created, nil
}

// Delete removes the owner's entry for key or returns ErrNotFound.
func (s *Store[T, PT]) Delete(ctx context.Context, owner models.Configurable, key string) error {
	rec, err := s.Get(ctx, owner, key)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(rec)
	if res.Error != nil {
		return fmt.Errorf("delete configuration %q: %w", rec.Entry().Key, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store[T, PT]) scoped(tx *gorm.DB, owner models.Configurable) *gorm.DB {
	return tx.Where(map[string]any{
		"configurable_type": owner.ConfigurableType(),
		"configurable_id":   owner.ConfigurableID(),
	})
}

func (s *Store[T, PT]) find(tx *gorm.DB, owner models.Configurable, key string) (PT, error) {
	var rec T
	err := s.scoped(tx, owner).Where(map[string]any{"key": key}).First(PT(&rec)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get configuration %q: %w", key, err)
	}
	return PT(&rec), nil
}

// Decode reconstructs the typed value of a stored entry.
func Decode(e *models.Configuration) (valuetype.Value, error) {
	if !e.Type.Valid() {
		return valuetype.None(), nil
	}
	var raw any
	if len(e.Value) > 0 {
		dec := json.NewDecoder(bytes.NewReader(e.Value))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return valuetype.None(), fmt.Errorf("decode configuration %q: %w", e.Key, err)
		}
	}
	if e.Type != valuetype.Int {
		raw = floats(raw)
	}
	return e.Type.Coerce(raw), nil
}

// floats replaces the json.Number values left by a UseNumber decode with
// float64, the form encoding/json produces for nested numbers.
func floats(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case []any:
		for i := range t {
			t[i] = floats(t[i])
		}
	case map[string]any:
		for k := range t {
			t[k] = floats(t[k])
		}
	}
	return v
}
