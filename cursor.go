// This file contains the Cursor type returned in cursor mode.

package created

// Cursor is a live, typed cursor over query results.
// It must be closed by the caller.
type Cursor[T any] struct {
	it  Iter
	err error
}

// newCursor returns a Cursor iterating it.
func newCursor[T any](it Iter) *Cursor[T] {
	return &Cursor[T]{it: it}
}

// Next retrieves the next document into doc, and reports whether there
// was one. If it returns false, the cursor is exhausted or failed, Close
// reports which.
func (c *Cursor[T]) Next(doc *T) bool {
	if c.it == nil {
		return false
	}
	return c.it.Next(doc)
}

// All retrieves the remaining documents and closes the cursor.
func (c *Cursor[T]) All() ([]T, error) {
	var docs []T
	for {
		var doc T
		if !c.Next(&doc) {
			break
		}
		docs = append(docs, doc)
	}
	return docs, c.Close()
}

// Close closes the cursor, and returns the error that stopped the iteration,
// if any. Close may be called multiple times.
func (c *Cursor[T]) Close() error {
	if c.it != nil {
		c.err, c.it = c.it.Close(), nil
	}
	return c.err
}
