package memory

import (
	"fmt"

	"github.com/vsinha/baleyard/pkg/domain/repositories"
)

// collection is an insertion-ordered set of records with an id index
type collection[T any] struct {
	name  string
	items []T
	index map[string]int
}

func newCollection[T any](name string) *collection[T] {
	return &collection[T]{name: name, index: make(map[string]int)}
}

func (c *collection[T]) get(id string) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

func (c *collection[T]) mustGet(id string) (T, error) {
	v, ok := c.get(id)
	if !ok {
		return v, fmt.Errorf("%s %s: %w", c.name, id, repositories.ErrNotFound)
	}
	return v, nil
}

// add appends a new record and returns its sequence number
func (c *collection[T]) add(id string, v T) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("%s: id cannot be empty", c.name)
	}
	if _, exists := c.index[id]; exists {
		return 0, fmt.Errorf("%s %s: %w", c.name, id, repositories.ErrAlreadyExists)
	}
	c.items = append(c.items, v)
	c.index[id] = len(c.items) - 1
	return len(c.items) - 1, nil
}

// put inserts or replaces the record and returns its sequence number
func (c *collection[T]) put(id string, v T) int {
	if i, ok := c.index[id]; ok {
		c.items[i] = v
		return i
	}
	c.items = append(c.items, v)
	c.index[id] = len(c.items) - 1
	return len(c.items) - 1
}

func (c *collection[T]) seq(id string) int {
	return c.index[id]
}

// list returns copies of every record in insertion order
func (c *collection[T]) list(clone func(T) T) []T {
	out := make([]T, len(c.items))
	for i, v := range c.items {
		out[i] = clone(v)
	}
	return out
}

func (c *collection[T]) copy(clone func(T) T) *collection[T] {
	cp := &collection[T]{
		name:  c.name,
		items: c.list(clone),
		index: make(map[string]int, len(c.index)),
	}
	for k, v := range c.index {
		cp.index[k] = v
	}
	return cp
}
