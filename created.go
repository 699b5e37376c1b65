// This file contains the Created builder and its configuration methods.

package created

import (
	"sync"
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/rs/zerolog"

	"github.com/icza/created/plantree"
)

// CreatedAtField is the name of the creation timestamp field queries filter
// and sort by.
const CreatedAtField = "createdAt"

// Inclusion tells if a projected field is included or excluded.
type Inclusion int

// Possible Inclusion values.
const (
	Exclude Inclusion = 0
	Include Inclusion = 1
)

// Projection selects which fields of the result documents are retrieved.
type Projection map[string]Inclusion

// MapFunc transforms a result document. It receives the document, its index
// and all result documents.
type MapFunc[T any] func(doc T, i int, all []T) interface{}

// PlanFilterFunc filters an explain plan document by a keep-list.
type PlanFilterFunc func(keepKeys []string, plan bson.M) bson.M

// descriptor holds the settings of the pending query.
// Its zero value is the default state.
type descriptor[T any] struct {
	// projection document, nil means all fields
	projection Projection

	// inclusive bounds of createdAt, unparsed; empty means no bound
	since, to string

	// limit is the max number of results, 0 means no limit
	limit int

	// returnCursor asks for a live cursor instead of materialized results
	returnCursor bool

	// explain asks for the query plan, wins over returnCursor
	explain bool

	// explainKeepKeys is the keep-list applied to the query plan
	explainKeepKeys []string

	// mapFunc is applied to the results in array mode
	mapFunc MapFunc[T]
}

// mode returns the terminal mode selected by the descriptor.
func (d *descriptor[T]) mode() Mode {
	switch {
	case d.explain:
		return ModeExplain
	case d.returnCursor:
		return ModeCursor
	default:
		return ModeArray
	}
}

// Created is a query builder listing documents of type T by their creation
// timestamp. Configuration methods record settings and return the builder
// so calls can be chained in any order; Run and RunOn execute the query
// and reset the builder.
//
// A Created must not be configured from multiple goroutines concurrently:
// although it is safe for concurrent use in the data race sense, interleaved
// chains would mix their settings.
type Created[T any] struct {
	// resolver resolves collection names for Run
	resolver Resolver

	// planFilter filters explain plans by the keep-list
	planFilter PlanFilterFunc

	log zerolog.Logger

	// mu guards d
	mu sync.Mutex

	// d is the pending query
	d descriptor[T]
}

// New returns a new Created which resolves collection names using r.
// r may be nil if only RunOn is used.
func New[T any](r Resolver) *Created[T] {
	return &Created[T]{
		resolver:   r,
		planFilter: plantree.Keep,
		log:        zerolog.Nop(),
	}
}

// Logger sets the logger used to report executions. It is not reset by
// executions.
func (c *Created[T]) Logger(log zerolog.Logger) *Created[T] {
	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
	return c
}

// PlanFilter sets the function used to filter explain plans by the keep-list.
// Defaults to plantree.Keep. It is not reset by executions.
func (c *Created[T]) PlanFilter(f PlanFilterFunc) *Created[T] {
	c.mu.Lock()
	if f == nil {
		f = plantree.Keep
	}
	c.planFilter = f
	c.mu.Unlock()
	return c
}

// set applies f to the pending query under lock.
func (c *Created[T]) set(f func(d *descriptor[T])) *Created[T] {
	c.mu.Lock()
	f(&c.d)
	c.mu.Unlock()
	return c
}

// Select sets the projection. An empty projection selects all fields.
func (c *Created[T]) Select(p Projection) *Created[T] {
	return c.set(func(d *descriptor[T]) {
		if len(p) == 0 {
			p = nil
		}
		d.projection = p
	})
}

// Take limits the number of results to n. n <= 0 means no limit.
func (c *Created[T]) Take(n int) *Created[T] {
	return c.set(func(d *descriptor[T]) {
		if n < 0 {
			n = 0
		}
		d.limit = n
	})
}

// Since sets the inclusive lower bound of createdAt. date is only parsed
// when the query is executed, an invalid date makes Run fail.
// An empty date removes the bound.
//
// Accepted formats are RFC 3339 and its prefixes down to the year,
// e.g. "2018", "2018-02", "2018-02-09" and "2018-02-09T10:30".
func (c *Created[T]) Since(date string) *Created[T] {
	return c.set(func(d *descriptor[T]) { d.since = date })
}

// SinceTime is like Since but takes a time.Time.
func (c *Created[T]) SinceTime(t time.Time) *Created[T] {
	return c.Since(t.Format(time.RFC3339Nano))
}

// To sets the inclusive upper bound of createdAt, see Since for the
// accepted formats.
func (c *Created[T]) To(date string) *Created[T] {
	return c.set(func(d *descriptor[T]) { d.to = date })
}

// UpTo is an alias of To.
func (c *Created[T]) UpTo(date string) *Created[T] {
	return c.To(date)
}

// ToTime is like To but takes a time.Time.
func (c *Created[T]) ToTime(t time.Time) *Created[T] {
	return c.To(t.Format(time.RFC3339Nano))
}

// Cursor asks for a live cursor instead of materialized results.
// Explain wins over Cursor.
func (c *Created[T]) Cursor() *Created[T] {
	return c.set(func(d *descriptor[T]) { d.returnCursor = true })
}

// Explain asks for the query plan instead of the documents. If keepKeys are
// given, the plan is filtered to the branches containing any of them.
// Calling Explain without keys keeps the keep-list of a previous call.
func (c *Created[T]) Explain(keepKeys ...string) *Created[T] {
	return c.set(func(d *descriptor[T]) {
		d.explain = true
		if len(keepKeys) > 0 {
			d.explainKeepKeys = append([]string(nil), keepKeys...)
		}
	})
}

// Map sets a transform applied to each result document. It is ignored in
// cursor and explain modes.
func (c *Created[T]) Map(f MapFunc[T]) *Created[T] {
	return c.set(func(d *descriptor[T]) { d.mapFunc = f })
}

// Reset restores the default settings, abandoning the pending query.
func (c *Created[T]) Reset() {
	c.set(func(d *descriptor[T]) { *d = descriptor[T]{} })
}
