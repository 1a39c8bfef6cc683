package registry

import (
	"errors"
	"fmt"

	"github.com/database64128/regdomain/hashindex"
	"github.com/database64128/regdomain/mmap"
	"github.com/database64128/regdomain/suffixlist"
)

// ErrConfiguration is returned when a registry cannot be built from its configuration.
var ErrConfiguration = errors.New("bad suffix list configuration")

// Config is the configuration for a suffix list file.
type Config struct {
	// Name identifies the list in logs and API responses.
	Name string `json:"name" toml:"name"`

	// Path is the path to the suffix list file.
	Path string `json:"path" toml:"path"`

	// Hash selects the index hash function: "time33" (default) or "xxh3".
	Hash string `json:"hash,omitempty" toml:"hash"`

	// MaxLineLength and MaxSuffixLength override the parser limits.
	MaxLineLength   int `json:"maxLineLength,omitempty" toml:"maxLineLength"`
	MaxSuffixLength int `json:"maxSuffixLength,omitempty" toml:"maxSuffixLength"`
}

// Registry loads the suffix list file and builds a registry.
func (c Config) Registry() (*Registry, error) {
	hash, err := hashindex.HashFuncByName(c.Hash)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConfiguration, c.Name, err)
	}

	data, close, err := mmap.ReadFile[string](c.Path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: failed to read %s: %w", ErrConfiguration, c.Name, c.Path, err)
	}
	defer close()

	opts := suffixlist.Options{
		MaxLineLength:   c.MaxLineLength,
		MaxSuffixLength: c.MaxSuffixLength,
	}
	return Load(c.Name, opts.Parse(data), hash), nil
}
