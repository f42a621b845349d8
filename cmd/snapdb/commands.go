package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/tchajed/snapdb/db"
)

type command struct {
	args  []string
	usage string
	run   func(d *db.Database, args []string, out io.Writer) error
}

var errUsage = errors.New("usage")

func printBool(out io.Writer, b bool) error {
	_, err := fmt.Fprintln(out, strconv.FormatBool(b))
	return err
}

func printUint(out io.Writer, n uint64) error {
	_, err := fmt.Fprintln(out, strconv.FormatUint(n, 10))
	return err
}

func printString(out io.Writer, s string) error {
	_, err := fmt.Fprintln(out, strconv.Quote(s))
	return err
}

var commands = map[string]command{
	"get-string": {[]string{"key"}, "print a string", func(d *db.Database, args []string, out io.Writer) error {
		return printString(out, d.GetString(args[0]))
	}},
	"set-string": {[]string{"key", "value"}, "set a string", func(d *db.Database, args []string, out io.Writer) error {
		d.SetString(args[0], args[1])
		return nil
	}},
	"unset-string": {[]string{"key"}, "delete a string", func(d *db.Database, args []string, out io.Writer) error {
		d.UnsetString(args[0])
		return nil
	}},
	"get-integer": {[]string{"key"}, "print an integer", func(d *db.Database, args []string, out io.Writer) error {
		return printUint(out, d.GetInteger(args[0]))
	}},
	"set-integer": {[]string{"key", "n"}, "set an integer", func(d *db.Database, args []string, out io.Writer) error {
		n, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}
		d.SetInteger(args[0], n)
		return nil
	}},
	"incr": {[]string{"key"}, "increment an integer and print it", func(d *db.Database, args []string, out io.Writer) error {
		return printUint(out, d.IncrementInteger(args[0]))
	}},
	"decr": {[]string{"key"}, "decrement an integer and print it", func(d *db.Database, args []string, out io.Writer) error {
		return printUint(out, d.DecrementInteger(args[0]))
	}},
	"unset-integer": {[]string{"key"}, "delete an integer", func(d *db.Database, args []string, out io.Writer) error {
		d.UnsetInteger(args[0])
		return nil
	}},
	"get-hash": {[]string{"key", "field"}, "print a hash field", func(d *db.Database, args []string, out io.Writer) error {
		return printString(out, d.GetHash(args[0], args[1]))
	}},
	"set-hash": {[]string{"key", "field", "value"}, "set a hash field", func(d *db.Database, args []string, out io.Writer) error {
		d.SetHash(args[0], args[1], args[2])
		return nil
	}},
	"get-hashmap": {[]string{"key"}, "print every field of a hash", func(d *db.Database, args []string, out io.Writer) error {
		h := d.GetHashMap(args[0])
		fields := make([]string, 0, len(h))
		for f := range h {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			if _, err := fmt.Fprintf(out, "%s %s\n", strconv.Quote(f), strconv.Quote(h[f])); err != nil {
				return err
			}
		}
		return nil
	}},
	"add-set": {[]string{"key", "member"}, "add to a set; prints whether it was new", func(d *db.Database, args []string, out io.Writer) error {
		return printBool(out, d.AddSet(args[0], args[1]))
	}},
	"check-set": {[]string{"key", "member"}, "print whether a set has a member", func(d *db.Database, args []string, out io.Writer) error {
		return printBool(out, d.CheckSet(args[0], args[1]))
	}},
	"remove-set": {[]string{"key", "member"}, "remove from a set; prints whether it was present", func(d *db.Database, args []string, out io.Writer) error {
		return printBool(out, d.RemoveSet(args[0], args[1]))
	}},
	"get-set": {[]string{"key"}, "print the members of a set", func(d *db.Database, args []string, out io.Writer) error {
		for _, m := range d.GetSet(args[0]) {
			if err := printString(out, m); err != nil {
				return err
			}
		}
		return nil
	}},
	"counts": {nil, "print the number of keys in each collection", func(d *db.Database, args []string, out io.Writer) error {
		c := d.Counts()
		_, err := fmt.Fprintf(out, "hashes=%d sets=%d strings=%d integers=%d\n",
			c.Hashes, c.Sets, c.Strings, c.Integers)
		return err
	}},
	"flush": {nil, "delete everything (written on the next save)", func(d *db.Database, args []string, out io.Writer) error {
		d.Flush()
		return nil
	}},
	"save": {nil, "write the snapshot now", func(d *db.Database, args []string, out io.Writer) error {
		return d.Save()
	}},
	"dump": {nil, "print the whole database as JSON", func(d *db.Database, args []string, out io.Writer) error {
		return dumpJSON(d.Memdb, out)
	}},
	"import": {[]string{"file.toml"}, "load strings, integers, sets and hashes from a TOML file", func(d *db.Database, args []string, out io.Writer) error {
		n, err := importSeed(d, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "imported %d values\n", n)
		return err
	}},
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "commands (strings may be double-quoted Go literals):")
	for _, name := range names {
		c := commands[name]
		line := strings.Join(append([]string{name}, c.args...), " ")
		fmt.Fprintf(w, "  %-32s %s\n", line, c.usage)
	}
}

// splitLine splits a command line on whitespace. Words starting with a double
// quote are parsed as Go string literals, so they may contain spaces and
// escapes.
func splitLine(line string) ([]string, error) {
	var words []string
	for {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if line == "" {
			return words, nil
		}
		if line[0] == '"' {
			quoted, err := strconv.QuotedPrefix(line)
			if err != nil {
				return nil, fmt.Errorf("bad quoted string: %s", line)
			}
			w, _ := strconv.Unquote(quoted)
			words = append(words, w)
			line = line[len(quoted):]
			continue
		}
		end := strings.IndexFunc(line, unicode.IsSpace)
		if end < 0 {
			end = len(line)
		}
		words = append(words, line[:end])
		line = line[end:]
	}
}

// execLine runs one command line against d. Blank lines and lines starting
// with # are ignored.
func execLine(d *db.Database, line string, out io.Writer) error {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return nil
	}
	words, err := splitLine(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	c, ok := commands[words[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", words[0])
	}
	args := words[1:]
	if len(args) != len(c.args) {
		return fmt.Errorf("%w: %s %s", errUsage, words[0], strings.Join(c.args, " "))
	}
	return c.run(d, args, out)
}
