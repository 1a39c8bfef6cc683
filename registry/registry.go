// Package registry holds the set of public suffixes used to resolve registrable domains.
package registry

import (
	"encoding/hex"
	"io"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/database64128/regdomain/hashindex"
	"lukechampine.com/blake3"
)

// Registry is a set of public suffixes.
//
// Each suffix maps to the number of dots it contains.
// A Registry is immutable once [Load] returns, and is safe for
// concurrent reads until [Registry.Unload] is called.
type Registry struct {
	name        string
	index       *hashindex.Index[int]
	fingerprint [32]byte
	loadedAt    time.Time
}

// Load builds a registry from a sequence of suffixes.
// Duplicate suffixes overwrite earlier ones.
// If hash is nil, the index uses its default hash function.
func Load(name string, suffixes iter.Seq[string], hash hashindex.HashFunc) *Registry {
	r := Registry{
		name:     name,
		index:    hashindex.New[int](nil, hash),
		loadedAt: time.Now(),
	}

	h := blake3.New(len(r.fingerprint), nil)
	for s := range suffixes {
		r.index.InsertString(s, strings.Count(s, "."))
		io.WriteString(h, s)
		h.Write([]byte{'\n'})
	}
	h.Sum(r.fingerprint[:0])

	return &r
}

// Contains returns whether candidate is a registered suffix.
// A nil registry contains nothing.
func (r *Registry) Contains(candidate string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index.SearchString(candidate)
	return ok
}

// Dots returns the number of dots in the registered suffix.
func (r *Registry) Dots(suffix string) (int, bool) {
	if r == nil {
		return 0, false
	}
	return r.index.SearchString(suffix)
}

// Len returns the number of registered suffixes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.index.Len()
}

// Suffixes returns all registered suffixes in lexical order.
func (r *Registry) Suffixes() []string {
	if r == nil {
		return nil
	}
	suffixes := make([]string, 0, r.index.Len())
	for k := range r.index.All() {
		suffixes = append(suffixes, string(k))
	}
	slices.Sort(suffixes)
	return suffixes
}

// Fingerprint returns the BLAKE3-256 digest of the source suffixes,
// each followed by a newline, in source order.
func (r *Registry) Fingerprint() [32]byte {
	if r == nil {
		return [32]byte{}
	}
	return r.fingerprint
}

// Unload drops all suffixes. The registry contains nothing afterwards.
func (r *Registry) Unload() {
	if r == nil {
		return
	}
	r.index.Destroy()
}

// Info describes a loaded registry.
type Info struct {
	Name        string    `json:"name"`
	Suffixes    int       `json:"suffixes"`
	Slots       int       `json:"slots"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// Info returns a description of the registry.
func (r *Registry) Info() Info {
	if r == nil {
		return Info{}
	}
	return Info{
		Name:        r.name,
		Suffixes:    r.index.Len(),
		Slots:       r.index.Tier().Slots,
		Fingerprint: hex.EncodeToString(r.fingerprint[:]),
		LoadedAt:    r.loadedAt,
	}
}
