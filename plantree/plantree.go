// Package plantree prunes document trees, such as MongoDB query plans,
// to the branches containing given keys.
package plantree

import "github.com/globalsign/mgo/bson"

// IndexKeys is a keep-list reducing a query plan to its index usage.
var IndexKeys = []string{"direction", "indexName", "keysExamined", "totalKeysExamined"}

// Keep returns a copy of doc holding only the branches that lead to any of
// the keys. A kept key keeps its whole value. Array elements are kept if they
// contain any of the keys, scalar elements are dropped.
// doc is not modified. The result is never nil.
func Keep(keys []string, doc bson.M) bson.M {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}

	if res, ok := keepMap(set, doc); ok {
		return res
	}
	return bson.M{}
}

// keepMap prunes m, and reports whether anything was kept.
func keepMap(set map[string]bool, m map[string]interface{}) (bson.M, bool) {
	res := bson.M{}
	for k, v := range m {
		if set[k] {
			res[k] = v
			continue
		}
		if kept, ok := keep(set, v); ok {
			res[k] = kept
		}
	}
	return res, len(res) > 0
}

// keep prunes v if it is a document or an array, and reports whether
// anything was kept.
func keep(set map[string]bool, v interface{}) (interface{}, bool) {
	switch v := v.(type) {
	case bson.M:
		return keepMap(set, v)
	case map[string]interface{}:
		return keepMap(set, v)
	case bson.D:
		m := make(bson.M, len(v))
		for _, e := range v {
			m[e.Name] = e.Value
		}
		return keepMap(set, m)
	case []interface{}:
		var res []interface{}
		for _, e := range v {
			if kept, ok := keep(set, e); ok {
				res = append(res, kept)
			}
		}
		return res, len(res) > 0
	}
	return nil, false
}
