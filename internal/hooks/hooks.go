// Package hooks dispatches configuration events to listeners registered at
// startup. Listeners run synchronously in registration order and their errors
// are returned to the caller unchanged.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
	"gorm.io/gorm"
)

// Action names the read operation a query hook is running for.
type Action string

const (
	ActionIndex Action = "index"
	ActionShow  Action = "show"
)

// ValueSetEvent describes a successful write of a configuration value.
type ValueSetEvent struct {
	Owner   models.Configurable
	Key     string
	Value   valuetype.Value
	Type    valuetype.Type
	Entry   *models.Configuration
	Created bool
}

// ValueSetListener is notified after every successful SetValue.
type ValueSetListener interface {
	OnValueSet(ctx context.Context, ev ValueSetEvent) error
}

// QueryContext carries what a query hook may inspect about the read.
type QueryContext struct {
	Action Action
	Owner  models.Configurable
	Params url.Values
}

// QueryListener shapes reads. BeforeQuery may narrow or reorder the owner
// scoped query; AfterQuery may replace the payload returned to the client.
type QueryListener interface {
	BeforeQuery(ctx context.Context, q *gorm.DB, qc QueryContext) (*gorm.DB, error)
	AfterQuery(ctx context.Context, results any, qc QueryContext) (any, error)
}

// Dispatcher fans events out to an ordered, immutable list of hooks.
// A nil *Dispatcher dispatches nothing.
type Dispatcher struct {
	valueSet []ValueSetListener
	query    []QueryListener
	closers  []io.Closer
}

// NewDispatcher builds a dispatcher from hooks implementing ValueSetListener,
// QueryListener or both. Anything else is rejected.
func NewDispatcher(hooks ...any) (*Dispatcher, error) {
	d := &Dispatcher{}
	for i, h := range hooks {
		matched := false
		if l, ok := h.(ValueSetListener); ok {
			d.valueSet = append(d.valueSet, l)
			matched = true
		}
		if l, ok := h.(QueryListener); ok {
			d.query = append(d.query, l)
			matched = true
		}
		if !matched {
			return nil, fmt.Errorf("hook %d (%T) implements no hook interface", i, h)
		}
		if c, ok := h.(io.Closer); ok {
			d.closers = append(d.closers, c)
		}
	}
	return d, nil
}

// ValueSet notifies every value-set listener. The first error aborts the chain.
func (d *Dispatcher) ValueSet(ctx context.Context, ev ValueSetEvent) error {
	if d == nil {
		return nil
	}
	for _, l := range d.valueSet {
		if err := l.OnValueSet(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// BeforeQuery threads q through every query listener.
func (d *Dispatcher) BeforeQuery(ctx context.Context, q *gorm.DB, qc QueryContext) (*gorm.DB, error) {
	if d == nil {
		return q, nil
	}
	var err error
	for _, l := range d.query {
		if q, err = l.BeforeQuery(ctx, q, qc); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// AfterQuery threads the result payload through every query listener.
func (d *Dispatcher) AfterQuery(ctx context.Context, results any, qc QueryContext) (any, error) {
	if d == nil {
		return results, nil
	}
	var err error
	for _, l := range d.query {
		if results, err = l.AfterQuery(ctx, results, qc); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Close releases hooks that hold external resources.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
