// This file contains parsing of createdAt bounds and filter compilation.

package created

import (
	"errors"
	"fmt"
	"time"

	"github.com/globalsign/mgo/bson"
)

// ErrInvalidDate is returned (wrapped) by Run if a bound set by Since or To
// cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts lists the accepted bound formats, most specific last.
// Layouts without a zone offset are interpreted in UTC.
var dateLayouts = []string{
	"2006",
	"2006-01",
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// parseDate parses a bound.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		// Fractional seconds are accepted after the seconds field
		// even if the layout has none.
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// filter compiles the createdAt filter of the bounds.
// Both bounds are combined with $and.
func (d *descriptor[T]) filter() (bson.M, error) {
	var conds []bson.M

	if d.since != "" {
		t, err := parseDate(d.since)
		if err != nil {
			return nil, fmt.Errorf("since: %w", err)
		}
		conds = append(conds, bson.M{CreatedAtField: bson.M{"$gte": t}})
	}
	if d.to != "" {
		t, err := parseDate(d.to)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		conds = append(conds, bson.M{CreatedAtField: bson.M{"$lte": t}})
	}

	switch len(conds) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conds[0], nil
	default:
		return bson.M{"$and": conds}, nil
	}
}

// query compiles the pending query.
func (d *descriptor[T]) query() (Query, error) {
	filter, err := d.filter()
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Filter: filter,
		Limit:  d.limit,
		Sort:   []string{CreatedAtField},
	}
	if len(d.projection) > 0 {
		q.Projection = make(bson.M, len(d.projection))
		for field, inc := range d.projection {
			q.Projection[field] = int(inc)
		}
	}
	return q, nil
}
