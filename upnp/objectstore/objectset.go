package objectstore

import (
	"fmt"
	"iter"
)

type Object interface {
	Name() string
	TypeID() string
}

// ObjectSet stores objects by name and iterates them in insertion order.
type ObjectSet[T Object] struct {
	index map[string]int
	items []T
}

func (m *ObjectSet[T]) Insert(obj T) error {
	if m.Contains(obj) {
		return fmt.Errorf("%s %s already present in set", obj.TypeID(), obj.Name())
	}
	m.InsertOrReplace(obj)
	return nil
}

func (m *ObjectSet[T]) InsertOrReplace(obj T) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[obj.Name()]; ok {
		m.items[i] = obj
		return
	}
	m.index[obj.Name()] = len(m.items)
	m.items = append(m.items, obj)
}

func (m *ObjectSet[T]) Contains(obj T) bool {
	_, ok := m.index[obj.Name()]
	return ok
}

func (m *ObjectSet[T]) Get(name string) (T, bool) {
	i, ok := m.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return m.items[i], true
}

func (m *ObjectSet[T]) Len() int {
	return len(m.items)
}

func (m *ObjectSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, sv := range m.items {
			if !yield(sv) {
				return
			}
		}
	}
}
