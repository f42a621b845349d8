package memdb

import "sort"

// Memdb holds the four collections of a database: hashes, sets, strings and
// integers. Each collection is a separate key namespace.
//
// Lookups of missing keys return zero values rather than errors.
//
// A Memdb is not safe for concurrent use; callers must serialize access.
type Memdb struct {
	hashes   map[string]map[string]string
	sets     map[string]map[string]struct{}
	strings  map[string]string
	integers map[string]uint64
}

// Counts gives the number of keys in each collection.
type Counts struct {
	Hashes   int
	Sets     int
	Strings  int
	Integers int
}

func New() *Memdb {
	m := &Memdb{}
	m.Flush()
	return m
}

// Flush empties all four collections.
func (m *Memdb) Flush() {
	m.hashes = make(map[string]map[string]string)
	m.sets = make(map[string]map[string]struct{})
	m.strings = make(map[string]string)
	m.integers = make(map[string]uint64)
}

func (m *Memdb) Counts() Counts {
	return Counts{
		Hashes:   len(m.hashes),
		Sets:     len(m.sets),
		Strings:  len(m.strings),
		Integers: len(m.integers),
	}
}

// SetHash sets field within the hash at key, creating the hash if needed.
func (m *Memdb) SetHash(key, field, value string) {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	h[field] = value
}

func (m *Memdb) GetHash(key, field string) string {
	return m.hashes[key][field]
}

// GetHashMap returns a copy of the hash at key, or nil if there is none.
func (m *Memdb) GetHashMap(key string) map[string]string {
	h, ok := m.hashes[key]
	if !ok {
		return nil
	}
	c := make(map[string]string, len(h))
	for f, v := range h {
		c[f] = v
	}
	return c
}

// AddSet inserts member into the set at key, and reports whether it was newly
// added.
func (m *Memdb) AddSet(key, member string) bool {
	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{})
		m.sets[key] = s
	}
	if _, ok := s[member]; ok {
		return false
	}
	s[member] = struct{}{}
	return true
}

func (m *Memdb) CheckSet(key, member string) bool {
	_, ok := m.sets[key][member]
	return ok
}

// RemoveSet removes member from the set at key, and reports whether it was
// present. Removing the last member deletes the set.
func (m *Memdb) RemoveSet(key, member string) bool {
	s := m.sets[key]
	if _, ok := s[member]; !ok {
		return false
	}
	delete(s, member)
	if len(s) == 0 {
		delete(m.sets, key)
	}
	return true
}

// GetSet returns the members of the set at key in sorted order, or nil if
// there is no such set.
func (m *Memdb) GetSet(key string) []string {
	s, ok := m.sets[key]
	if !ok {
		return nil
	}
	return sortedKeys(s)
}

func (m *Memdb) SetString(key, value string) {
	m.strings[key] = value
}

func (m *Memdb) GetString(key string) string {
	return m.strings[key]
}

func (m *Memdb) UnsetString(key string) {
	delete(m.strings, key)
}

func (m *Memdb) SetInteger(key string, value uint64) {
	m.integers[key] = value
}

func (m *Memdb) GetInteger(key string) uint64 {
	return m.integers[key]
}

// IncrementInteger adds one to the integer at key (starting from 0 if it is
// unset) and returns the new value. Overflow wraps around.
func (m *Memdb) IncrementInteger(key string) uint64 {
	m.integers[key]++
	return m.integers[key]
}

// DecrementInteger is IncrementInteger subtracting one; 0 wraps to the
// maximum uint64.
func (m *Memdb) DecrementInteger(key string) uint64 {
	m.integers[key]--
	return m.integers[key]
}

func (m *Memdb) UnsetInteger(key string) {
	delete(m.integers, key)
}

// Iteration
//
// The Each* functions visit keys in sorted order, which makes anything built
// from them (snapshots in particular) deterministic. Visitors must not modify
// the Memdb or the maps they are passed.

// EachHash calls fn for every hash.
func (m *Memdb) EachHash(fn func(key string, fields map[string]string) error) error {
	for _, k := range sortedKeys(m.hashes) {
		if err := fn(k, m.hashes[k]); err != nil {
			return err
		}
	}
	return nil
}

// EachSet calls fn for every set, with its members in sorted order.
func (m *Memdb) EachSet(fn func(key string, members []string) error) error {
	for _, k := range sortedKeys(m.sets) {
		if err := fn(k, sortedKeys(m.sets[k])); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memdb) EachString(fn func(key, value string) error) error {
	for _, k := range sortedKeys(m.strings) {
		if err := fn(k, m.strings[k]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memdb) EachInteger(fn func(key string, value uint64) error) error {
	for _, k := range sortedKeys(m.integers) {
		if err := fn(k, m.integers[k]); err != nil {
			return err
		}
	}
	return nil
}

// SortedFields returns the field names of a hash in sorted order.
func SortedFields(fields map[string]string) []string {
	return sortedKeys(fields)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
