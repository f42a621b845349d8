package db

import "github.com/tchajed/snapdb/db/memdb"

// Store is the data API shared by the in-memory collections and a Database.
//
// Missing keys are not errors: getters return "", 0 or false.
type Store interface {
	SetHash(key, field, value string)
	GetHash(key, field string) string

	AddSet(key, member string) bool
	CheckSet(key, member string) bool
	RemoveSet(key, member string) bool

	SetString(key, value string)
	GetString(key string) string
	UnsetString(key string)

	SetInteger(key string, value uint64)
	GetInteger(key string) uint64
	IncrementInteger(key string) uint64
	DecrementInteger(key string) uint64
	UnsetInteger(key string)

	Flush()
}

var _ Store = &memdb.Memdb{}
var _ Store = &Database{}
