package main

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/tchajed/snapdb/db/memdb"
)

// Dump is the JSON form of a whole database.
type Dump struct {
	Hashes   map[string]map[string]string `json:"hashes"`
	Sets     map[string][]string          `json:"sets"`
	Strings  map[string]string            `json:"strings"`
	Integers map[string]uint64            `json:"integers"`
}

func newDump(m *memdb.Memdb) (Dump, error) {
	c := m.Counts()
	d := Dump{
		Hashes:   make(map[string]map[string]string, c.Hashes),
		Sets:     make(map[string][]string, c.Sets),
		Strings:  make(map[string]string, c.Strings),
		Integers: make(map[string]uint64, c.Integers),
	}
	err := m.EachHash(func(key string, fields map[string]string) error {
		d.Hashes[key] = fields
		return nil
	})
	if err != nil {
		return d, err
	}
	err = m.EachSet(func(key string, members []string) error {
		d.Sets[key] = members
		return nil
	})
	if err != nil {
		return d, err
	}
	err = m.EachString(func(key, value string) error {
		d.Strings[key] = value
		return nil
	})
	if err != nil {
		return d, err
	}
	err = m.EachInteger(func(key string, value uint64) error {
		d.Integers[key] = value
		return nil
	})
	return d, err
}

// dumpJSON writes m as indented JSON with sorted object keys. Values are
// arbitrary bytes, so invalid UTF-8 is passed through rather than rejected.
func dumpJSON(m *memdb.Memdb, w io.Writer) error {
	d, err := newDump(m)
	if err != nil {
		return err
	}
	enc := jsontext.NewEncoder(w,
		jsontext.WithIndent("  "),
		jsontext.AllowInvalidUTF8(true))
	return json.MarshalEncode(enc, d, json.Deterministic(true))
}
