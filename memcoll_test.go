package created

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/globalsign/mgo/bson"
)

// memColl is an in-memory Collection evaluating compiled queries,
// used to test the builder without a MongoDB server.
type memColl struct {
	docs []bson.M

	// queries records the executed queries
	queries []Query

	// errors to return from the Querier methods, if set
	allErr, iterErr, explainErr error
}

// call is the document type of the tests.
type call struct {
	ID        int       `bson:"_id"`
	N         int       `bson:"n"`
	CreatedAt time.Time `bson:"createdAt"`
}

// day is the creation time of the test document n.
func day(n int) time.Time {
	return time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// newMemColl returns a memColl with count documents created on consecutive
// days from 2018-01-01, inserted in a scrambled order.
func newMemColl(count int) *memColl {
	mc := &memColl{}
	for i := 0; i < count; i++ {
		n := (i * 7) % count
		if count%7 == 0 {
			n = count - 1 - i
		}
		mc.docs = append(mc.docs, bson.M{"_id": n + 100, "n": n, CreatedAtField: day(n)})
	}
	return mc
}

// resolve is a ResolveFunc returning mc.
func (mc *memColl) resolve(context.Context) (Collection, error) {
	return mc, nil
}

// Query implements Collection.Query().
func (mc *memColl) Query(q Query) Querier {
	mc.queries = append(mc.queries, q)
	return &memQuerier{mc: mc, q: q}
}

// memResolver implements Resolver over named memColls.
type memResolver map[string]*memColl

// Collection implements Resolver.Collection().
func (r memResolver) Collection(_ context.Context, name string) (Collection, error) {
	mc, ok := r[name]
	if !ok {
		return nil, errors.New("unknown collection: " + name)
	}
	return mc, nil
}

// memQuerier implements Querier.
type memQuerier struct {
	mc *memColl
	q  Query
}

// run returns the matching, sorted, limited and projected documents.
func (mq *memQuerier) run() []bson.M {
	var res []bson.M
	for _, doc := range mq.mc.docs {
		if match(doc, mq.q.Filter) {
			res = append(res, doc)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		for _, field := range mq.q.Sort {
			desc := strings.HasPrefix(field, "-")
			field = strings.TrimLeft(field, "+-")
			if c := compare(res[i][field], res[j][field]); c != 0 {
				return (c < 0) != desc
			}
		}
		return false
	})

	if mq.q.Limit > 0 && len(res) > mq.q.Limit {
		res = res[:mq.q.Limit]
	}

	for i, doc := range res {
		res[i] = project(doc, mq.q.Projection)
	}
	return res
}

// All implements Querier.All().
func (mq *memQuerier) All(result interface{}) error {
	if mq.mc.allErr != nil {
		return mq.mc.allErr
	}

	slicev := reflect.ValueOf(result).Elem()
	slicev = slicev.Slice(0, 0)
	for _, doc := range mq.run() {
		elemp := reflect.New(slicev.Type().Elem())
		if err := decode(doc, elemp.Interface()); err != nil {
			return err
		}
		slicev = reflect.Append(slicev, elemp.Elem())
	}
	reflect.ValueOf(result).Elem().Set(slicev)
	return nil
}

// Iter implements Querier.Iter().
func (mq *memQuerier) Iter() Iter {
	return &memIter{docs: mq.run(), err: mq.mc.iterErr}
}

// Explain implements Querier.Explain().
func (mq *memQuerier) Explain(result interface{}) error {
	if mq.mc.explainErr != nil {
		return mq.mc.explainErr
	}

	n := len(mq.run())
	plan := bson.M{
		"queryPlanner": bson.M{
			"namespace":   "test.demo",
			"parsedQuery": mq.q.Filter,
			"winningPlan": bson.M{
				"stage":       "LIMIT",
				"limitAmount": mq.q.Limit,
				"inputStage": bson.M{
					"stage": "FETCH",
					"inputStage": bson.M{
						"stage":      "IXSCAN",
						"keyPattern": bson.M{CreatedAtField: 1},
						"indexName":  "createdAt_1",
						"direction":  "forward",
					},
				},
			},
			"rejectedPlans": []interface{}{},
		},
		"executionStats": bson.M{
			"nReturned":         n,
			"totalKeysExamined": n,
			"executionStages": bson.M{
				"stage": "LIMIT",
				"inputStage": bson.M{
					"stage": "FETCH",
					"inputStage": bson.M{
						"stage":        "IXSCAN",
						"indexName":    "createdAt_1",
						"direction":    "forward",
						"keysExamined": n,
					},
				},
			},
		},
		"serverInfo": bson.M{"host": "localhost", "version": "3.6.3"},
	}
	return decode(plan, result)
}

// memIter implements Iter.
type memIter struct {
	docs []bson.M
	err  error
}

// Next implements Iter.Next().
func (it *memIter) Next(result interface{}) bool {
	if it.err != nil || len(it.docs) == 0 {
		return false
	}
	if err := decode(it.docs[0], result); err != nil {
		it.err = err
		return false
	}
	it.docs = it.docs[1:]
	return true
}

// Close implements Iter.Close().
func (it *memIter) Close() error {
	return it.err
}

// decode converts v into result through BSON, like a server round trip.
func decode(v interface{}, result interface{}) error {
	data, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, result)
}

// match tells if doc matches filter. Supported: $and, $gte, $lte
// and equality.
func match(doc bson.M, filter bson.M) bool {
	for k, v := range filter {
		if k == "$and" {
			for _, sub := range v.([]bson.M) {
				if !match(doc, sub) {
					return false
				}
			}
			continue
		}

		conds, ok := v.(bson.M)
		if !ok {
			if compare(doc[k], v) != 0 {
				return false
			}
			continue
		}
		val, ok := doc[k]
		if !ok {
			return false
		}
		for op, arg := range conds {
			c := compare(val, arg)
			switch op {
			case "$gte":
				if c < 0 {
					return false
				}
			case "$lte":
				if c > 0 {
					return false
				}
			default:
				panic("unsupported operator: " + op)
			}
		}
	}
	return true
}

// compare compares ints and times; missing values sort first.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch a := a.(type) {
	case time.Time:
		b := b.(time.Time)
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	case int:
		return a - b.(int)
	}
	panic("uncomparable values")
}

// project applies a projection to doc.
func project(doc bson.M, p bson.M) bson.M {
	if len(p) == 0 {
		return doc
	}

	include := false
	for k, v := range p {
		if k != "_id" && v == 1 {
			include = true
		}
	}

	res := bson.M{}
	for k, v := range doc {
		inc, listed := p[k]
		switch {
		case include && k == "_id":
			if !listed || inc == 1 {
				res[k] = v
			}
		case include:
			if listed && inc == 1 {
				res[k] = v
			}
		default:
			if !listed {
				res[k] = v
			}
		}
	}
	return res
}
