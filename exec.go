// This file contains the execution of the pending query.

package created

import (
	"context"
	"errors"
	"fmt"

	"github.com/globalsign/mgo/bson"
)

// ErrNoResolver is returned by Run if the builder has no Resolver.
var ErrNoResolver = errors.New("no collection resolver")

// ErrNilCollection is returned if the collection resolves to nil.
var ErrNilCollection = errors.New("nil collection")

// Mode is the shape of an execution's result.
type Mode int

// Possible Mode values.
const (
	// ModeArray materializes the documents (default).
	ModeArray Mode = iota
	// ModeCursor returns a live cursor.
	ModeCursor
	// ModeExplain returns the query plan.
	ModeExplain
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeArray:
		return "array"
	case ModeCursor:
		return "cursor"
	case ModeExplain:
		return "explain"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Result is the result of an execution. Mode tells which field is set.
type Result[T any] struct {
	Mode Mode

	// Docs holds the documents in ModeArray if there is no Map transform.
	Docs []T

	// Mapped holds the transformed documents in ModeArray if there is
	// a Map transform.
	Mapped []interface{}

	// Cursor is the live cursor in ModeCursor.
	Cursor *Cursor[T]

	// Plan is the (filtered) query plan in ModeExplain.
	Plan bson.M
}

// Run executes the pending query against the collection with the given name,
// resolved by the builder's Resolver. The builder is reset when Run returns,
// whether it succeeds or not.
func (c *Created[T]) Run(ctx context.Context, name string) (*Result[T], error) {
	c.mu.Lock()
	r := c.resolver
	c.mu.Unlock()

	return c.RunOn(ctx, func(ctx context.Context) (Collection, error) {
		if r == nil {
			return nil, ErrNoResolver
		}
		return r.Collection(ctx, name)
	})
}

// RunOn executes the pending query against the collection returned by resolve.
// The builder is reset when RunOn returns, whether it succeeds or not.
func (c *Created[T]) RunOn(ctx context.Context, resolve ResolveFunc) (*Result[T], error) {
	c.mu.Lock()
	d, log, planFilter := c.d, c.log, c.planFilter
	c.mu.Unlock()
	defer c.Reset()

	mode := d.mode()
	log = log.With().Stringer("mode", mode).Logger()
	log.Debug().
		Str("since", d.since).
		Str("to", d.to).
		Int("limit", d.limit).
		Msg("executing query")

	res, err := d.exec(ctx, resolve, planFilter)
	if err != nil {
		log.Debug().Err(err).Msg("query failed")
		return nil, err
	}
	return res, nil
}

// exec resolves the collection, and executes the query in d's mode.
func (d *descriptor[T]) exec(ctx context.Context, resolve ResolveFunc, planFilter PlanFilterFunc) (*Result[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coll, err := resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving collection: %w", err)
	}
	if coll == nil {
		return nil, ErrNilCollection
	}

	q, err := d.query()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	querier := coll.Query(q)

	res := &Result[T]{Mode: d.mode()}
	switch res.Mode {
	case ModeExplain:
		var plan bson.M
		if err := querier.Explain(&plan); err != nil {
			return nil, err
		}
		if len(d.explainKeepKeys) > 0 {
			plan = planFilter(d.explainKeepKeys, plan)
		}
		res.Plan = plan

	case ModeCursor:
		res.Cursor = newCursor[T](querier.Iter())

	case ModeArray:
		var docs []T
		if err := querier.All(&docs); err != nil {
			return nil, err
		}
		if d.mapFunc == nil {
			res.Docs = docs
			break
		}
		res.Mapped = make([]interface{}, len(docs))
		for i, doc := range docs {
			res.Mapped[i] = d.mapFunc(doc, i, docs)
		}

	default:
		panic(fmt.Sprintf("created: unhandled mode %v", res.Mode))
	}

	return res, nil
}
