package db

import (
	"io"

	"github.com/stretchr/testify/suite"
	"github.com/tchajed/snapdb/db/memdb"
	"github.com/tchajed/snapdb/fs"
)

const dbFile = "data.db"

type DbSuite struct {
	suite.Suite
	fs fs.Filesys
	db *Database
}

func (suite *DbSuite) SetupTest() {
	suite.fs = fs.MemFs()
	db, err := Open(suite.fs, dbFile)
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *DbSuite) TearDownTest() {
	if suite.db != nil && suite.db.IsOpen() {
		suite.NoError(suite.db.Close())
	}
}

// Restart closes the database (saving it) and opens it again from the same
// file system.
func (suite *DbSuite) Restart() {
	suite.Require().NoError(suite.db.Close())
	db, err := Open(suite.fs, dbFile)
	suite.Require().NoError(err)
	suite.db = db
}

// contents is a comparable view of everything in a Memdb.
type contents struct {
	Hashes   map[string]map[string]string
	Sets     map[string][]string
	Strings  map[string]string
	Integers map[string]uint64
}

func dump(m *memdb.Memdb) contents {
	c := contents{
		Hashes:   make(map[string]map[string]string),
		Sets:     make(map[string][]string),
		Strings:  make(map[string]string),
		Integers: make(map[string]uint64),
	}
	m.EachHash(func(key string, fields map[string]string) error {
		c.Hashes[key] = m.GetHashMap(key)
		return nil
	})
	m.EachSet(func(key string, members []string) error {
		c.Sets[key] = members
		return nil
	})
	m.EachString(func(key, value string) error {
		c.Strings[key] = value
		return nil
	})
	m.EachInteger(func(key string, value uint64) error {
		c.Integers[key] = value
		return nil
	})
	return c
}

func writeFile(filesys fs.Filesys, fname string, data []byte) {
	h := filesys.Handle(fname)
	if err := h.Clear(); err != nil {
		panic(err)
	}
	if _, err := h.Write(data); err != nil {
		panic(err)
	}
	if err := h.Close(); err != nil {
		panic(err)
	}
}

func readFile(filesys fs.Filesys, fname string) []byte {
	h := filesys.Handle(fname)
	if err := h.Open(); err != nil {
		panic(err)
	}
	defer h.Close()
	data, err := io.ReadAll(h)
	if err != nil {
		panic(err)
	}
	return data
}
