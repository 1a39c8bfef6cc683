package hashindex

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// HashFunc computes the hash of a key.
// It must not modify or retain key.
type HashFunc func(key []byte) uint32

const time33Seed = 5318

// Time33 is the default hash function: h = h*33 + b over every byte.
func Time33(key []byte) uint32 {
	h := uint32(time33Seed)
	for _, b := range key {
		h = h*33 + uint32(b)
	}
	return h
}

// XXH3 hashes key with 64-bit XXH3 and folds the result to 32 bits.
func XXH3(key []byte) uint32 {
	h := xxh3.Hash(key)
	return uint32(h) ^ uint32(h>>32)
}

// HashFuncByName returns the hash function with the given name.
// The empty name selects [Time33].
func HashFuncByName(name string) (HashFunc, error) {
	switch name {
	case "", "time33":
		return Time33, nil
	case "xxh3":
		return XXH3, nil
	default:
		return nil, fmt.Errorf("unknown hash function: %q", name)
	}
}
