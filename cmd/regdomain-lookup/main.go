// Lookup resolves the registrable domains of hostnames given as arguments
// or read from standard input, one per line.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/database64128/regdomain/registry"
	"github.com/database64128/regdomain/resolver"
	"github.com/database64128/regdomain/stats"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	batchSize    = 4096
	registryName = "lookup"
)

var (
	suffixes   = flag.String("suffixes", "", "Path to the plain suffix list file.")
	hash       = flag.String("hash", "", "Index hash function: time33 (default) or xxh3.")
	workers    = flag.Int("workers", runtime.GOMAXPROCS(0), "Number of lookup workers.")
	compare    = flag.Bool("compare", false, "Also print the eTLD+1 from the built-in publicsuffix.org list.")
	printStats = flag.Bool("stats", false, "Print lookup statistics to stderr when done.")
)

type result struct {
	hostname string
	domain   string
	err      error
	compared string
}

func (r *result) lookup(reg resolver.Registry, sc stats.Collector) {
	res, err := resolver.Lookup(r.hostname, reg)
	sc.Collect(res.Match, err)
	r.domain, r.err = res.Domain, err

	if *compare {
		etld1, err := publicsuffix.EffectiveTLDPlusOne(r.hostname)
		if err != nil {
			r.compared = "error: " + err.Error()
		} else {
			r.compared = etld1
		}
	}
}

func (r *result) writeTo(w *bufio.Writer) {
	w.WriteString(r.hostname)
	w.WriteByte('\t')
	if r.err != nil {
		w.WriteString("error: ")
		w.WriteString(r.err.Error())
	} else {
		w.WriteString(r.domain)
	}
	if *compare {
		w.WriteByte('\t')
		w.WriteString(r.compared)
	}
	w.WriteByte('\n')
}

func main() {
	flag.Parse()

	if *suffixes == "" {
		fmt.Fprintln(os.Stderr, "Missing -suffixes.")
		flag.Usage()
		os.Exit(1)
	}

	if *workers <= 0 {
		fmt.Fprintln(os.Stderr, "-workers must be positive.")
		os.Exit(1)
	}

	reg, err := registry.Config{
		Name: registryName,
		Path: *suffixes,
		Hash: *hash,
	}.Registry()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load suffix list:", err)
		os.Exit(1)
	}

	pool, err := ants.NewPool(*workers, ants.WithPreAlloc(true))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create worker pool:", err)
		os.Exit(1)
	}
	defer pool.Release()

	sc := stats.NewCollector()
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	run := func(hostnames []string) error {
		return lookupBatch(pool, reg, sc, hostnames, w)
	}

	if args := flag.Args(); len(args) > 0 {
		err = run(args)
	} else {
		err = readBatches(os.Stdin, run)
	}
	if err != nil {
		w.Flush()
		fmt.Fprintln(os.Stderr, "Lookup failed:", err)
		os.Exit(1)
	}

	if *printStats {
		s := sc.Snapshot()
		fmt.Fprintf(os.Stderr, "total %d, whole %d, two-level %d, one-level %d, unrecognized %d, invalid %d\n",
			s.Total(), s.Whole, s.TwoLevel, s.OneLevel, s.Unrecognized, s.Invalid)
	}
}

// readBatches reads hostnames from r, one per line, and calls fn with batches of them.
// Blank lines are skipped.
func readBatches(r io.Reader, fn func([]string) error) error {
	s := bufio.NewScanner(r)
	batch := make([]string, 0, batchSize)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		batch = append(batch, line)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// lookupBatch resolves hostnames on the pool and writes the results in input order.
func lookupBatch(pool *ants.Pool, reg resolver.Registry, sc stats.Collector, hostnames []string, w *bufio.Writer) error {
	results := make([]result, len(hostnames))
	var wg sync.WaitGroup

	for i, hostname := range hostnames {
		r := &results[i]
		r.hostname = hostname
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			r.lookup(reg, sc)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()

	for i := range results {
		results[i].writeTo(w)
	}
	return nil
}
