package types

import (
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Map[T,V] is a generic thread safe map of key type [T] and value type [V]
type Map[T constraints.Ordered, V any] struct {
	m    map[T]V
	lock *sync.Mutex
}

// NewMap[T,V] creates an empty Map
func NewMap[T constraints.Ordered, V any]() *Map[T, V] {
	return &Map[T, V]{
		m:    make(map[T]V),
		lock: new(sync.Mutex),
	}
}

func (s *Map[T, V]) Get(key T) (V, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	val, ok := s.m[key]
	return val, ok
}

func (s *Map[T, V]) Add(key T, val V) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.m[key] = val
}

func (s *Map[T, V]) Remove(key T) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.m, key)
}

func (s *Map[T, V]) Exists(key T) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.m[key]
	return ok
}

func (s *Map[T, V]) Size() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.m)
}

func (s *Map[T, V]) RemoveAll() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.m = make(map[T]V)
}

// Keys returns the keys sorted ascending.
func (s *Map[T, V]) Keys() []T {
	s.lock.Lock()
	defer s.lock.Unlock()
	keys := make([]T, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// List[V] is a generic thread safe list
type List[V any] struct {
	elems []V
	lock  *sync.Mutex
}

// NewEmptyList[V] creates an empty list
func NewEmptyList[V any]() *List[V] {
	return &List[V]{
		elems: make([]V, 0),
		lock:  new(sync.Mutex),
	}
}

func (l *List[V]) Append(el V) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.elems = append(l.elems, el)
}

func (l *List[V]) Elem(index int) (V, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if index < 0 || index >= len(l.elems) {
		var result V
		return result, false
	}
	return l.elems[index], true
}

func (l *List[V]) Size() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.elems)
}

func (l *List[V]) RemoveAll() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.elems = make([]V, 0)
}

// Iter returns a copy of the underlying slice.
func (l *List[V]) Iter() []V {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]V, len(l.elems))
	copy(out, l.elems)
	return out
}
