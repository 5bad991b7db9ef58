package configstore

import (
	"context"

	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
)

// Configurable is a Store bound to a single owner.
type Configurable[T any, PT models.Record[T]] struct {
	store *Store[T, PT]
	owner models.Configurable
}

// Bind returns the owner's view of the store.
func (s *Store[T, PT]) Bind(owner models.Configurable) *Configurable[T, PT] {
	return &Configurable[T, PT]{store: s, owner: owner}
}

// Owner returns the bound owner.
func (c *Configurable[T, PT]) Owner() models.Configurable { return c.owner }

func (c *Configurable[T, PT]) Config(ctx context.Context, key string) (PT, error) {
	return c.store.Get(ctx, c.owner, key)
}

func (c *Configurable[T, PT]) Value(ctx context.Context, key string) (valuetype.Value, error) {
	return c.store.GetValue(ctx, c.owner, key)
}

func (c *Configurable[T, PT]) Type(ctx context.Context, key string) (valuetype.Type, error) {
	return c.store.GetType(ctx, c.owner, key)
}

func (c *Configurable[T, PT]) Set(ctx context.Context, key string, value any, tag valuetype.Type) (PT, bool, error) {
	return c.store.SetValue(ctx, c.owner, key, value, tag)
}

func (c *Configurable[T, PT]) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.owner, key)
}

// Configurations lists every entry of the owner.
func (c *Configurable[T, PT]) Configurations(ctx context.Context) ([]T, error) {
	return c.store.List(ctx, c.owner)
}

// Put is Set returning the base entry, for callers that do not know T.
func (c *Configurable[T, PT]) Put(ctx context.Context, key string, value any, tag valuetype.Type) (*models.Configuration, bool, error) {
	rec, created, err := c.Set(ctx, key, value, tag)
	if rec == nil {
		return nil, created, err
	}
	return rec.Entry(), created, err
}

// Entries lists the owner's base entries in creation order.
func (c *Configurable[T, PT]) Entries(ctx context.Context) ([]*models.Configuration, error) {
	entries, err := c.Configurations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Configuration, len(entries))
	for i := range entries {
		out[i] = PT(&entries[i]).Entry()
	}
	return out, nil
}

// Accessor is the entry-type independent view of a Configurable.
type Accessor interface {
	Owner() models.Configurable
	Value(ctx context.Context, key string) (valuetype.Value, error)
	Type(ctx context.Context, key string) (valuetype.Type, error)
	Put(ctx context.Context, key string, value any, tag valuetype.Type) (*models.Configuration, bool, error)
	Delete(ctx context.Context, key string) error
	Entries(ctx context.Context) ([]*models.Configuration, error)
}

var _ Accessor = (*Configurable[models.Configuration, *models.Configuration])(nil)
