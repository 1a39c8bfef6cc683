// Package stats counts lookup outcomes.
package stats

import (
	"errors"
	"sync/atomic"

	"github.com/database64128/regdomain/resolver"
)

// Lookups stores lookup counts by outcome.
type Lookups struct {
	Whole        uint64 `json:"whole"`
	TwoLevel     uint64 `json:"twoLevel"`
	OneLevel     uint64 `json:"oneLevel"`
	Unrecognized uint64 `json:"unrecognized"`
	Invalid      uint64 `json:"invalid"`
}

// Total returns the number of lookups of all outcomes.
func (l Lookups) Total() uint64 {
	return l.Whole + l.TwoLevel + l.OneLevel + l.Unrecognized + l.Invalid
}

// Collector collects lookup statistics.
type Collector interface {
	// Collect records the outcome of one lookup.
	// match is ignored when err is not nil.
	Collect(match resolver.Match, err error)

	// Snapshot returns the lookup statistics.
	Snapshot() Lookups

	// SnapshotAndReset returns the lookup statistics and resets the statistics.
	SnapshotAndReset() Lookups
}

type lookupCollector struct {
	whole        atomic.Uint64
	twoLevel     atomic.Uint64
	oneLevel     atomic.Uint64
	unrecognized atomic.Uint64
	invalid      atomic.Uint64
}

// NewCollector returns a new collector safe for concurrent use.
func NewCollector() Collector {
	return &lookupCollector{}
}

// Collect implements the Collector Collect method.
func (lc *lookupCollector) Collect(match resolver.Match, err error) {
	switch {
	case errors.Is(err, resolver.ErrInvalidArgument):
		lc.invalid.Add(1)
	case err != nil:
		lc.unrecognized.Add(1)
	case match == resolver.MatchWhole:
		lc.whole.Add(1)
	case match == resolver.MatchTwoLevel:
		lc.twoLevel.Add(1)
	case match == resolver.MatchOneLevel:
		lc.oneLevel.Add(1)
	}
}

// Snapshot implements the Collector Snapshot method.
func (lc *lookupCollector) Snapshot() Lookups {
	return Lookups{
		Whole:        lc.whole.Load(),
		TwoLevel:     lc.twoLevel.Load(),
		OneLevel:     lc.oneLevel.Load(),
		Unrecognized: lc.unrecognized.Load(),
		Invalid:      lc.invalid.Load(),
	}
}

// SnapshotAndReset implements the Collector SnapshotAndReset method.
func (lc *lookupCollector) SnapshotAndReset() Lookups {
	return Lookups{
		Whole:        lc.whole.Swap(0),
		TwoLevel:     lc.twoLevel.Swap(0),
		OneLevel:     lc.oneLevel.Swap(0),
		Unrecognized: lc.unrecognized.Swap(0),
		Invalid:      lc.invalid.Swap(0),
	}
}

// NoopCollector is a no-op collector.
// Its collect method does nothing and its snapshot methods return empty statistics.
type NoopCollector struct{}

// Collect implements the Collector Collect method.
func (NoopCollector) Collect(resolver.Match, error) {}

// Snapshot implements the Collector Snapshot method.
func (NoopCollector) Snapshot() Lookups {
	return Lookups{}
}

// SnapshotAndReset implements the Collector SnapshotAndReset method.
func (NoopCollector) SnapshotAndReset() Lookups {
	return Lookups{}
}

// Config stores configuration for the stats collector.
type Config struct {
	Enabled bool `json:"enabled" toml:"enabled"`
}

// Collector returns a new stats collector from the config.
func (c Config) Collector() Collector {
	if c.Enabled {
		return NewCollector()
	}
	return NoopCollector{}
}
