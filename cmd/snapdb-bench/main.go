package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/tchajed/snapdb/db"
	"github.com/tchajed/snapdb/db/memdb"
	"github.com/tchajed/snapdb/fs"
	"github.com/tchajed/snapdb/leveldb"
	"github.com/tchajed/snapdb/logging"
)

const (
	dbPath = "benchmark.db"
	dbFile = "snapshot"
)

// database is the part of the API every backend supports.
type database interface {
	SetString(k, v string)
	GetString(k string) string
	Save() error
	Close() error
}

// typed is implemented by backends that hold all four collections.
type typed interface {
	database
	db.Store
}

// memDatabase is a Memdb with no persistence, as a baseline.
type memDatabase struct {
	*memdb.Memdb
}

func (d memDatabase) Save() error  { return nil }
func (d memDatabase) Close() error { return nil }

var errUnsupported = errors.New("not supported by this database")

func initFs() (fs.Filesys, error) {
	switch *fsType {
	case "dir":
		if err := os.RemoveAll(dbPath); err != nil {
			return fs.Filesys{}, err
		}
		return fs.DirFs(dbPath)
	case "mem":
		return fs.MemFs(), nil
	}
	return fs.Filesys{}, fmt.Errorf("unknown file system %s", *fsType)
}

func initDb(filesys fs.Filesys) (database, error) {
	switch *dbType {
	case "snapdb":
		return db.Open(filesys, dbFile)
	case "leveldb":
		path := filepath.Join(dbPath, "leveldb")
		if err := os.RemoveAll(path); err != nil {
			return nil, err
		}
		return leveldb.New(path)
	case "mem":
		return memDatabase{memdb.New()}, nil
	}
	return nil, fmt.Errorf("unknown database type %s", *dbType)
}

func showNum(i int) string {
	if i > 2000 {
		if i%1000 == 0 {
			return fmt.Sprintf("%dK", i/1000)
		}
		return fmt.Sprintf("%.1fK", float64(i)/1000)
	}
	return fmt.Sprintf("%d", i)
}

var benchmarks = flag.String("benchmarks", "fillstrings,readstrings,fillintegers,fillsets,fillhashes,save,reopen", "comma-separated list of benchmarks to run")
var dbType = flag.String("db", "snapdb", "database to use (snapdb|leveldb|mem)")
var fsType = flag.String("fs", "dir", "filesystem to use for snapdb (dir|mem)")
var numEntries = flag.Int("entries", 100000, "number of entries to put in each collection")
var numReads = flag.Int("reads", -1, "number of reads to perform (-1 to copy entries)")
var deleteDatabase = flag.Bool("delete-db", false, "delete database directory on completion")
var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory cpu profile to `file`")
var printStats = flag.Bool("stats", false, "print out filesystem stats")
var logLevel = flag.String("loglevel", "warn", "log level (debug|info|warn|error)")

func writeMemProfile(fname string) {
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal("could not create memory profile: ", err)
	}
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Fatal("could not write memory profile: ", err)
	}
	f.Close()
}

type benchConfig struct {
	entries int
	reads   int
}

// runBenchmark runs and reports a single benchmark. It returns the database
// to use from then on, which "reopen" replaces.
func runBenchmark(name string, cfg benchConfig, d database, reopen func() (database, error)) (database, error) {
	s := NewBench(name)
	t, isTyped := d.(typed)
	switch name {
	case "fillstrings":
		for i := 0; i < cfg.entries; i++ {
			k, v := s.NextKey(), s.Value()
			d.SetString(k, v)
			s.FinishedSingleOp(len(k) + len(v))
		}
	case "readstrings":
		// read in a different random order from the fill
		s.ReSeed(1)
		for i := 0; i < cfg.reads; i++ {
			v := d.GetString(s.RandomKey(cfg.entries))
			if v != "" {
				s.FinishedSingleOp(len(v))
			}
		}
	case "fillintegers":
		if !isTyped {
			return d, errUnsupported
		}
		for i := 0; i < cfg.entries; i++ {
			k := s.RandomKey(cfg.entries)
			t.IncrementInteger(k)
			s.FinishedSingleOp(len(k) + 8)
		}
	case "fillsets":
		if !isTyped {
			return d, errUnsupported
		}
		for i := 0; i < cfg.entries; i++ {
			k, member := s.RandomKey(cfg.entries/10+1), s.NextKey()
			t.AddSet(k, member)
			s.FinishedSingleOp(len(k) + len(member))
		}
	case "fillhashes":
		if !isTyped {
			return d, errUnsupported
		}
		for i := 0; i < cfg.entries; i++ {
			k, field, v := s.RandomKey(cfg.entries/10+1), s.NextKey(), s.Value()
			t.SetHash(k, field, v)
			s.FinishedSingleOp(len(k) + len(field) + len(v))
		}
	case "save":
		if err := d.Save(); err != nil {
			return d, err
		}
		s.FinishedSingleOp(0)
	case "reopen":
		if err := d.Close(); err != nil {
			return d, err
		}
		var err error
		d, err = reopen()
		if err != nil {
			return d, err
		}
		s.FinishedSingleOp(0)
	default:
		return d, fmt.Errorf("unknown benchmark %s", name)
	}
	s.Report()
	return d, nil
}

func runBenchmarks(filesys fs.Filesys, d database) (time.Time, error) {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *memprofile != "" {
		defer writeMemProfile(*memprofile)
	}

	cfg := benchConfig{entries: *numEntries, reads: *numReads}
	reopen := func() (database, error) {
		switch *dbType {
		case "snapdb":
			return db.Open(filesys, dbFile)
		case "leveldb":
			return leveldb.New(filepath.Join(dbPath, "leveldb"))
		}
		return d, nil
	}
	for _, name := range strings.Split(*benchmarks, ",") {
		var err error
		d, err = runBenchmark(name, cfg, d, reopen)
		if errors.Is(err, errUnsupported) {
			fmt.Printf("%-20s : skipped (%v)\n", name, err)
			continue
		}
		if err != nil {
			return time.Now(), fmt.Errorf("%s: %w", name, err)
		}
	}
	end := time.Now()
	return end, d.Close()
}

func main() {
	flag.Parse()

	if len(flag.Args()) > 0 {
		fmt.Fprintln(os.Stderr, "extra command line arguments", flag.Args())
		flag.Usage()
		os.Exit(1)
	}
	logging.Init(*logLevel, "text")

	if *numReads == -1 {
		*numReads = *numEntries
	}

	reportedDatabase := *dbType
	if *dbType == "snapdb" && *fsType != "dir" {
		reportedDatabase += fmt.Sprintf(" (%s)", *fsType)
	}
	for _, info := range []struct {
		Key   string
		Value string
	}{
		{"database", reportedDatabase},
		{"entries", showNum(*numEntries)},
		{"reads", showNum(*numReads)},
	} {
		fmt.Printf("%20s %s\n", info.Key+":", info.Value)
	}
	fmt.Println(strings.Repeat("-", 30))

	filesys, err := initFs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	d, err := initDb(filesys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	start := time.Now()
	end, err := runBenchmarks(filesys, d)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *printStats {
		fsstats := filesys.GetStats()
		writes := stats{fsstats.WriteOps, fsstats.WriteBytes, start, &end}
		reads := stats{fsstats.ReadOps, fsstats.ReadBytes, start, &end}
		fmt.Printf("%-20s : %s [%6d kops]\n", "[meta] fs-writes", writes.formatStats(), writes.Ops/1000)
		fmt.Printf("%-20s : %s [%6d kops]\n", "[meta] fs-reads", reads.formatStats(), reads.Ops/1000)
	}

	if *deleteDatabase {
		os.RemoveAll(dbPath)
	}
}
