// Suffix converter takes a public suffix list in the publicsuffix.org format
// and converts it to a plain suffix list with one suffix per line.

package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/database64128/regdomain/mmap"
	"github.com/database64128/regdomain/registry"
	"github.com/database64128/regdomain/suffixlist"
)

var (
	in        = flag.String("in", "", "Path to input suffix list file in the publicsuffix.org format.")
	out       = flag.String("out", "", "Path to output suffix list file in plaintext format.")
	icannOnly = flag.Bool("icannOnly", false, "Skip rules in the private domains section.")
	sorted    = flag.Bool("sort", false, "Sort the output and remove duplicate suffixes.")
)

func main() {
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "Both -in and -out must be specified.")
		flag.Usage()
		os.Exit(1)
	}

	data, close, err := mmap.ReadFile[string](*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to read input file:", err)
		os.Exit(1)
	}
	defer close()

	c := suffixlist.ConvertPSL(data, *icannOnly)
	suffixes := c.Suffixes
	if *sorted {
		suffixes = registry.Load(*in, slices.Values(c.Suffixes), nil).Suffixes()
	}

	fout, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create output file:", err)
		return
	}
	defer fout.Close()

	if err = suffixlist.WriteText(fout, suffixes); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to write output file:", err)
		return
	}

	fmt.Fprintf(os.Stderr, "Wrote %d suffixes, dropped %d wildcard, %d exception, and %d private rules.\n",
		len(suffixes), c.Wildcards, c.Exceptions, c.Private)
}
