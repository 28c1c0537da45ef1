package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seqio/sequencefile"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	version string

	keys   = kingpin.Flag("keys", "Display keys.").Short('k').Bool()
	values = kingpin.Flag("values", "Display values.").Short('v').Bool()
	header = kingpin.Flag("header", "Display the file header before the records.").Bool()

	paths = kingpin.Arg("PATH", "Files or directories to dump").Required().Strings()
)

type dumper struct {
	out    io.Writer
	keys   bool
	values bool
	header bool
}

func main() {
	kingpin.Version("seqdump version " + version)
	kingpin.Parse()

	d := &dumper{out: os.Stdout, keys: *keys, values: *values, header: *header}

	// By default, display keys and values.
	if !d.keys && !d.values {
		d.keys = true
		d.values = true
	}

	for _, path := range *paths {
		if err := d.dumpPath(path); err != nil {
			fatal(err)
		}
	}
}

// dumpPath dumps a single file, or every visible file in a directory.
func (d *dumper) dumpPath(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !stat.IsDir() {
		return d.dump(path)
	}

	infos, err := ioutil.ReadDir(path)
	if err != nil {
		return err
	}

	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || name[0] == '.' || name[0] == '_' {
			continue
		}

		if err := d.dump(filepath.Join(path, name)); err != nil {
			return err
		}
	}

	return nil
}

func (d *dumper) dump(path string) error {
	reader, err := sequencefile.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer reader.Close()

	if d.header {
		d.printHeader(path, &reader.Header)
	}

	for reader.Scan() {
		row := make([]string, 0, 2)

		if d.keys {
			row = append(row, string(reader.Key()))
		}

		if d.values {
			row = append(row, string(reader.Value()))
		}

		fmt.Fprintln(d.out, strings.Join(row, "\t"))
	}

	if err = reader.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

func (d *dumper) printHeader(path string, h *sequencefile.Header) {
	fmt.Fprintf(d.out, "# %s\n", path)
	fmt.Fprintf(d.out, "# version: %d\n", h.Version)
	fmt.Fprintf(d.out, "# key class: %s\n", h.KeyClassName)
	fmt.Fprintf(d.out, "# value class: %s\n", h.ValueClassName)
	fmt.Fprintf(d.out, "# compression: %s\n", h.Compression)
	if h.IsCompressed() {
		fmt.Fprintf(d.out, "# codec: %s\n", h.CompressionCodecClassName)
	}

	names := make([]string, 0, len(h.Metadata))
	for name := range h.Metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(d.out, "# metadata: %s=%s\n", name, h.Metadata[name])
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
