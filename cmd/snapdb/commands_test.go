package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tchajed/snapdb/db"
)

func openTemp(t *testing.T) (*db.Database, string) {
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.OpenPath(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if d.IsOpen() {
			d.Close()
		}
	})
	return d, path
}

func exec(t *testing.T, d *db.Database, line string) string {
	var out bytes.Buffer
	require.NoError(t, execLine(d, line, &out), line)
	return out.String()
}

func TestSplitLine(t *testing.T) {
	assert := assert.New(t)
	words, err := splitLine(`  set-hash  user:1 "full name" "Ada\tLovelace" `)
	assert.NoError(err)
	assert.Equal([]string{"set-hash", "user:1", "full name", "Ada\tLovelace"}, words)

	words, err = splitLine("")
	assert.NoError(err)
	assert.Empty(words)

	_, err = splitLine(`get-string "unterminated`)
	assert.Error(err)
}

func TestCommands(t *testing.T) {
	assert := assert.New(t)
	d, _ := openTemp(t)

	assert.Equal("\"\"\n", exec(t, d, "get-string missing"))
	exec(t, d, `set-string greeting "hello world"`)
	assert.Equal("\"hello world\"\n", exec(t, d, "get-string greeting"))
	exec(t, d, "unset-string greeting")
	assert.Equal("\"\"\n", exec(t, d, "get-string greeting"))

	assert.Equal("1\n", exec(t, d, "incr visits"))
	assert.Equal("2\n", exec(t, d, "incr visits"))
	assert.Equal("1\n", exec(t, d, "decr visits"))
	exec(t, d, "set-integer visits 18446744073709551615")
	assert.Equal("0\n", exec(t, d, "incr visits"))
	exec(t, d, "unset-integer visits")
	assert.Equal("0\n", exec(t, d, "get-integer visits"))

	assert.Equal("true\n", exec(t, d, "add-set colors red"))
	assert.Equal("false\n", exec(t, d, "add-set colors red"))
	exec(t, d, "add-set colors blue")
	assert.Equal("\"blue\"\n\"red\"\n", exec(t, d, "get-set colors"))
	assert.Equal("true\n", exec(t, d, "check-set colors blue"))
	assert.Equal("true\n", exec(t, d, "remove-set colors blue"))
	assert.Equal("false\n", exec(t, d, "check-set colors blue"))

	exec(t, d, "set-hash user:1 name ada")
	exec(t, d, "set-hash user:1 age 36")
	assert.Equal("\"ada\"\n", exec(t, d, "get-hash user:1 name"))
	assert.Equal("\"age\" \"36\"\n\"name\" \"ada\"\n", exec(t, d, "get-hashmap user:1"))

	assert.Equal("hashes=1 sets=1 strings=0 integers=0\n", exec(t, d, "counts"))
	exec(t, d, "flush")
	assert.Equal("hashes=0 sets=0 strings=0 integers=0\n", exec(t, d, "counts"))
}

func TestCommandErrors(t *testing.T) {
	assert := assert.New(t)
	d, _ := openTemp(t)
	var out bytes.Buffer
	assert.ErrorIs(execLine(d, "get-string", &out), errUsage)
	assert.ErrorIs(execLine(d, "set-string a b c", &out), errUsage)
	assert.Error(execLine(d, "frobnicate", &out))
	assert.Error(execLine(d, "set-integer x -1", &out))
	assert.NoError(execLine(d, "   ", &out))
	assert.NoError(execLine(d, "# comment", &out))
	assert.Empty(out.String())
}

func TestUsageListsCommands(t *testing.T) {
	var out bytes.Buffer
	usage(&out)
	for name := range commands {
		assert.Contains(t, out.String(), name)
	}
}

func TestRunScriptPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.db")
	c := Default()
	c.File = path
	script := strings.Join([]string{
		"set-string name ada",
		"incr visits",
		"add-set tags x",
		"set-hash h f v",
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, run(c, strings.NewReader(script), &out))
	assert.Equal(t, "1\ntrue\n", out.String())

	out.Reset()
	c.Command = "get-string name"
	require.NoError(t, run(c, nil, &out))
	assert.Equal(t, "\"ada\"\n", out.String())

	d, err := db.OpenPath(path)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, uint64(1), d.GetInteger("visits"))
	assert.True(t, d.CheckSet("tags", "x"))
	assert.Equal(t, "v", d.GetHash("h", "f"))
}

func TestRunScriptReportsLine(t *testing.T) {
	c := Default()
	c.File = filepath.Join(t.TempDir(), "bad.db")
	err := run(c, strings.NewReader("set-string a b\nnope\n"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDump(t *testing.T) {
	assert := assert.New(t)
	d, _ := openTemp(t)
	exec(t, d, "set-string s v")
	exec(t, d, "set-integer n 7")
	exec(t, d, "add-set tags b")
	exec(t, d, "add-set tags a")
	exec(t, d, "set-hash h f v")
	exec(t, d, `set-string bin "\xff\x00"`)

	out := exec(t, d, "dump")
	var got Dump
	require.NoError(t, json.Unmarshal([]byte(out), &got, json.RejectUnknownMembers(true)))
	assert.Equal(map[string]map[string]string{"h": {"f": "v"}}, got.Hashes)
	assert.Equal(map[string][]string{"tags": {"a", "b"}}, got.Sets)
	assert.Equal("v", got.Strings["s"])
	assert.Equal(map[string]uint64{"n": 7}, got.Integers)
	assert.Contains(got.Strings, "bin")

	assert.Equal(out, exec(t, d, "dump"), "dump should be deterministic")
}

func TestImportSeed(t *testing.T) {
	assert := assert.New(t)
	d, _ := openTemp(t)
	seedFile := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
[strings]
greeting = "hello"

[integers]
visits = 3

[sets]
colors = ["red", "green"]

[hashes."user:1"]
name = "ada"
age = "36"
`), 0644))

	assert.Equal("imported 6 values\n", exec(t, d, "import "+strconv.Quote(seedFile)))
	assert.Equal("hello", d.GetString("greeting"))
	assert.Equal(uint64(3), d.GetInteger("visits"))
	assert.Equal([]string{"green", "red"}, d.GetSet("colors"))
	assert.Equal("ada", d.GetHash("user:1", "name"))
	assert.Equal("36", d.GetHash("user:1", "age"))
}

func TestImportRejectsUnknownKeys(t *testing.T) {
	seedFile := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(seedFile, []byte("[strings]\na = \"b\"\n[lists]\nx = [\"y\"]\n"), 0644))
	_, err := readSeed(seedFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lists")
}

func TestImportMissingFile(t *testing.T) {
	d, _ := openTemp(t)
	_, err := importSeed(d, filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
