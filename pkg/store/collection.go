package store

// collection is an ordered list of items keyed by id. It is not safe for
// concurrent use; Store guards it.
type collection[T any] struct {
	items []T
	key   func(T) string
}

func newCollection[T any](key func(T) string) collection[T] {
	return collection[T]{key: key}
}

func (c collection[T]) list() []T {
	return append([]T(nil), c.items...)
}

func (c collection[T]) index(id string) int {
	for i, item := range c.items {
		if c.key(item) == id {
			return i
		}
	}
	return -1
}

func (c collection[T]) get(id string) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// replaced returns a copy of c holding items.
func (c collection[T]) replaced(items []T) collection[T] {
	return collection[T]{items: append([]T(nil), items...), key: c.key}
}

// upserted returns a copy of c with item replacing the element of the same
// id in place, or appended. The bool reports whether it was an insert.
func (c collection[T]) upserted(item T) (collection[T], bool) {
	next := c.list()
	if i := c.index(c.key(item)); i >= 0 {
		next[i] = item
		return collection[T]{items: next, key: c.key}, false
	}
	return collection[T]{items: append(next, item), key: c.key}, true
}

// removed returns a copy of c without id. The bool reports whether id was present.
func (c collection[T]) removed(id string) (collection[T], bool) {
	next := make([]T, 0, len(c.items))
	found := false
	for _, item := range c.items {
		if c.key(item) == id {
			found = true
			continue
		}
		next = append(next, item)
	}
	return collection[T]{items: next, key: c.key}, found
}
