// This file contains the collection abstraction queries are executed against,
// and its mgo implementation.

package created

import (
	"context"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
)

// Query is a compiled query.
type Query struct {
	// Filter document
	Filter bson.M

	// Projection document, nil means all fields
	Projection bson.M

	// Limit is the max number of results, 0 means no limit
	Limit int

	// Sort lists the fields to order by, in mgo's Query.Sort() format
	Sort []string
}

// Collection is a collection a Query can be executed against.
type Collection interface {
	// Query returns the deferred execution of q.
	Query(q Query) Querier
}

// Querier executes a deferred query.
type Querier interface {
	// All retrieves all documents into the slice pointed by result.
	All(result interface{}) error

	// Iter returns an iterator over the documents.
	Iter() Iter

	// Explain retrieves the query plan into result.
	Explain(result interface{}) error
}

// Iter iterates over query results. *mgo.Iter implements Iter.
type Iter interface {
	// Next retrieves the next document into result, and reports whether
	// it was successful.
	Next(result interface{}) bool

	// Close closes the iterator and returns the error that stopped it, if any.
	Close() error
}

// Resolver resolves collections by name.
type Resolver interface {
	Collection(ctx context.Context, name string) (Collection, error)
}

// ResolveFunc resolves a collection.
type ResolveFunc func(ctx context.Context) (Collection, error)

// MgoCollection returns a Collection executing queries using c.
func MgoCollection(c *mgo.Collection) Collection {
	return mgoCollection{c}
}

// mgoCollection implements Collection using mgo.
type mgoCollection struct {
	c *mgo.Collection
}

// Query implements Collection.Query().
func (mc mgoCollection) Query(q Query) Querier {
	mq := mc.c.Find(q.Filter).Sort(q.Sort...)
	if q.Projection != nil {
		mq = mq.Select(q.Projection)
	}
	if q.Limit > 0 {
		mq = mq.Limit(q.Limit)
	}
	return mgoQuerier{mq}
}

// mgoQuerier implements Querier using mgo.
type mgoQuerier struct {
	q *mgo.Query
}

// All implements Querier.All().
func (mq mgoQuerier) All(result interface{}) error {
	return mq.q.All(result)
}

// Iter implements Querier.Iter().
func (mq mgoQuerier) Iter() Iter {
	return mq.q.Iter()
}

// Explain implements Querier.Explain().
func (mq mgoQuerier) Explain(result interface{}) error {
	return mq.q.Explain(result)
}
