package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/tchajed/snapdb/db"
	"github.com/tchajed/snapdb/logging"
)

// runScript executes one command per line of r, stopping at the first error.
func runScript(d *db.Database, r io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := execLine(d, scanner.Text(), out); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}

func run(c Configuration, stdin io.Reader, stdout io.Writer) (err error) {
	d, err := db.OpenPath(c.File)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}()
	if c.Command != "" {
		return execLine(d, c.Command, stdout)
	}
	return runScript(d, stdin, stdout)
}

func main() {
	c := Default()
	goconfig.Read(&c)

	logging.Init(c.LogLevel, c.LogFormat)

	out := bufio.NewWriter(os.Stdout)
	err := run(c, os.Stdin, out)
	out.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
		}
		os.Exit(1)
	}
}
