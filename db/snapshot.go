package db

// A snapshot is the entire contents of a database, written in full on every
// save. There is no header, version or checksum.
//
// on-disk representation (all integers little endian, str = len uint32, bytes):
// numHashes uint32
// hashes [numHashes]{key str, numFields uint32, fields [numFields]{field str, value str}}
// numSets uint32
// sets [numSets]{key str, numMembers uint32, members [numMembers]str}
// numStrings uint32
// strings [numStrings]{key str, value str}
// numIntegers uint32
// integers [numIntegers]{key str, value uint64}
//
// An empty file is an empty database.

import (
	"fmt"
	"io"

	"github.com/tchajed/snapdb/bin"
	"github.com/tchajed/snapdb/db/memdb"
)

// smallest encoding of each kind of element, used to bound counts
const (
	minHashSize    = 4 + 4
	minFieldSize   = 4 + 4
	minSetSize     = 4 + 4
	minMemberSize  = 4
	minStringSize  = 4 + 4
	minIntegerSize = 4 + 8
)

type encoder struct {
	*bin.Encoder
}

func newEncoder(w io.Writer) encoder {
	return encoder{bin.NewEncoder(w)}
}

func (e encoder) Hashes(m *memdb.Memdb) error {
	e.Count(m.Counts().Hashes)
	return m.EachHash(func(key string, fields map[string]string) error {
		e.String32(key)
		e.Count(len(fields))
		for _, f := range memdb.SortedFields(fields) {
			e.String32(f)
			e.String32(fields[f])
		}
		return e.Err()
	})
}

func (e encoder) Sets(m *memdb.Memdb) error {
	e.Count(m.Counts().Sets)
	return m.EachSet(func(key string, members []string) error {
		e.String32(key)
		e.Count(len(members))
		for _, member := range members {
			e.String32(member)
		}
		return e.Err()
	})
}

func (e encoder) Strings(m *memdb.Memdb) error {
	e.Count(m.Counts().Strings)
	return m.EachString(func(key, value string) error {
		e.String32(key)
		e.String32(value)
		return e.Err()
	})
}

func (e encoder) Integers(m *memdb.Memdb) error {
	e.Count(m.Counts().Integers)
	return m.EachInteger(func(key string, value uint64) error {
		e.String32(key)
		e.Uint64(value)
		return e.Err()
	})
}

// encodeSnapshot writes all of m to w and returns the number of bytes
// written.
func encodeSnapshot(w io.Writer, m *memdb.Memdb) (int, error) {
	e := newEncoder(w)
	for _, section := range []func(*memdb.Memdb) error{
		e.Hashes, e.Sets, e.Strings, e.Integers,
	} {
		if err := section(m); err != nil {
			return e.BytesWritten(), err
		}
	}
	return e.BytesWritten(), e.Err()
}

type decoder struct {
	*bin.Decoder
}

func newDecoder(data []byte) decoder {
	return decoder{bin.NewDecoder(data)}
}

func (d decoder) ok() bool {
	return d.Err() == nil
}

func (d decoder) Hashes(m *memdb.Memdb) {
	n := d.Count(minHashSize)
	for i := uint32(0); i < n && d.ok(); i++ {
		key := d.String32()
		numFields := d.Count(minFieldSize)
		for j := uint32(0); j < numFields && d.ok(); j++ {
			field := d.String32()
			value := d.String32()
			if d.ok() {
				m.SetHash(key, field, value)
			}
		}
	}
}

func (d decoder) Sets(m *memdb.Memdb) {
	n := d.Count(minSetSize)
	for i := uint32(0); i < n && d.ok(); i++ {
		key := d.String32()
		numMembers := d.Count(minMemberSize)
		for j := uint32(0); j < numMembers && d.ok(); j++ {
			member := d.String32()
			if d.ok() {
				m.AddSet(key, member)
			}
		}
	}
}

func (d decoder) Strings(m *memdb.Memdb) {
	n := d.Count(minStringSize)
	for i := uint32(0); i < n && d.ok(); i++ {
		key := d.String32()
		value := d.String32()
		if d.ok() {
			m.SetString(key, value)
		}
	}
}

func (d decoder) Integers(m *memdb.Memdb) {
	n := d.Count(minIntegerSize)
	for i := uint32(0); i < n && d.ok(); i++ {
		key := d.String32()
		value := d.Uint64()
		if d.ok() {
			m.SetInteger(key, value)
		}
	}
}

// decodeSnapshot inserts the contents of a snapshot into m, using the same
// operations as ordinary updates.
//
// Truncated or malformed data is reported as ErrCorrupt; m may then hold part
// of the snapshot.
func decodeSnapshot(data []byte, m *memdb.Memdb) error {
	if len(data) == 0 {
		return nil
	}
	d := newDecoder(data)
	d.Hashes(m)
	d.Sets(m)
	d.Strings(m)
	d.Integers(m)
	if err := d.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if d.RemainingBytes() > 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, d.RemainingBytes())
	}
	return nil
}
