package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tchajed/snapdb/db"
)

// seed is the TOML layout accepted by import:
//
//	[strings]
//	greeting = "hello"
//
//	[integers]
//	visits = 3
//
//	[sets]
//	colors = ["red", "green"]
//
//	[hashes."user:1"]
//	name = "alice"
type seed struct {
	Strings  map[string]string            `toml:"strings"`
	Integers map[string]uint64            `toml:"integers"`
	Sets     map[string][]string          `toml:"sets"`
	Hashes   map[string]map[string]string `toml:"hashes"`
}

func readSeed(path string) (seed, error) {
	var s seed
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return s, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return s, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return s, nil
}

// apply writes every entry of s into store and returns how many values were
// written.
func (s seed) apply(store db.Store) int {
	n := 0
	for k, v := range s.Strings {
		store.SetString(k, v)
		n++
	}
	for k, v := range s.Integers {
		store.SetInteger(k, v)
		n++
	}
	for k, members := range s.Sets {
		for _, m := range members {
			store.AddSet(k, m)
			n++
		}
	}
	for k, fields := range s.Hashes {
		for f, v := range fields {
			store.SetHash(k, f, v)
			n++
		}
	}
	return n
}

func importSeed(store db.Store, path string) (int, error) {
	s, err := readSeed(path)
	if err != nil {
		return 0, err
	}
	return s.apply(store), nil
}
