// Package hashindex implements a chained hash table keyed by byte strings.
//
// The table grows through a fixed schedule of tiers instead of doubling.
// Each tier pairs a power-of-two slot count with the element count that
// triggers growth to the next tier. Growing re-links existing entries into
// a larger bucket array without reallocating them.
//
// An Index is not safe for concurrent use. Concurrent readers are fine
// as long as nothing mutates the index while they run.
package hashindex

import (
	"iter"
	"math"
	"unsafe"
)

// Tier is one step of the growth schedule.
type Tier struct {
	// Slots is the number of buckets. Always a power of two.
	Slots int

	// MaxElements is the element count at which the index
	// grows to the next tier.
	MaxElements int
}

var tiers = [...]Tier{
	{Slots: 1 << 3, MaxElements: 24},
	{Slots: 1 << 4, MaxElements: 64},
	{Slots: 1 << 6, MaxElements: 320},
	{Slots: 1 << 8, MaxElements: 1536},
	{Slots: 1 << 10, MaxElements: 7168},
	{Slots: 1 << 12, MaxElements: math.MaxInt32},
}

// Tiers returns a copy of the growth schedule.
func Tiers() []Tier {
	t := tiers
	return t[:]
}

type entry[V any] struct {
	key   []byte
	hash  uint32
	value V
	next  *entry[V]
}

// Index maps byte-string keys to values of type V.
//
// The zero value is not usable. Use [New] to create an Index.
type Index[V any] struct {
	slots   []*entry[V]
	tier    int
	count   int
	hash    HashFunc
	release func(V)
}

// New returns an empty index at the smallest tier.
//
// release, if not nil, is called on a value when it is overwritten,
// deleted, or dropped by [Index.Destroy]. It must not modify the index.
//
// hash, if nil, defaults to [Time33].
func New[V any](release func(V), hash HashFunc) *Index[V] {
	if hash == nil {
		hash = Time33
	}
	return &Index[V]{
		slots:   make([]*entry[V], tiers[0].Slots),
		hash:    hash,
		release: release,
	}
}

// Len returns the number of entries in the index.
func (x *Index[V]) Len() int {
	return x.count
}

// Tier returns the current tier of the index.
func (x *Index[V]) Tier() Tier {
	return tiers[x.tier]
}

func (x *Index[V]) find(key []byte, hash uint32) *entry[V] {
	if len(x.slots) == 0 {
		return nil
	}
	for e := x.slots[hash&uint32(len(x.slots)-1)]; e != nil; e = e.next {
		if e.hash == hash && string(e.key) == string(key) {
			return e
		}
	}
	return nil
}

// Insert associates value with key.
//
// If key is already present, its value is replaced and the old value
// is released. The stored key is not copied again. Otherwise a copy
// of key is stored at the head of its bucket's chain.
func (x *Index[V]) Insert(key []byte, value V) {
	if x.slots == nil {
		panic("hashindex: insert into destroyed index")
	}

	hash := x.hash(key)
	if e := x.find(key, hash); e != nil {
		if x.release != nil {
			x.release(e.value)
		}
		e.value = value
		return
	}

	i := hash & uint32(len(x.slots)-1)
	x.slots[i] = &entry[V]{
		key:   append([]byte(nil), key...),
		hash:  hash,
		value: value,
		next:  x.slots[i],
	}
	x.count++

	if x.count >= tiers[x.tier].MaxElements {
		x.grow()
	}
}

// InsertString is like [Index.Insert] but takes the key as a string.
func (x *Index[V]) InsertString(key string, value V) {
	x.Insert(stringBytes(key), value)
}

// grow moves the index to the next tier.
// It is a no-op at the last tier.
func (x *Index[V]) grow() {
	if x.tier == len(tiers)-1 {
		return
	}

	next := tiers[x.tier+1]
	slots := make([]*entry[V], next.Slots)
	mask := uint32(next.Slots - 1)

	for _, e := range x.slots {
		for e != nil {
			n := e.next
			i := e.hash & mask
			e.next = slots[i]
			slots[i] = e
			e = n
		}
	}

	x.slots = slots
	x.tier++
}

// Search returns the value associated with key.
func (x *Index[V]) Search(key []byte) (value V, ok bool) {
	if e := x.find(key, x.hash(key)); e != nil {
		return e.value, true
	}
	return value, false
}

// SearchString is like [Index.Search] but takes the key as a string.
// It does not allocate.
func (x *Index[V]) SearchString(key string) (V, bool) {
	return x.Search(stringBytes(key))
}

// Delete removes key from the index and releases its value.
// It returns whether the key was found.
func (x *Index[V]) Delete(key []byte) bool {
	if len(x.slots) == 0 {
		return false
	}

	hash := x.hash(key)
	link := &x.slots[hash&uint32(len(x.slots)-1)]

	for e := *link; e != nil; link, e = &e.next, e.next {
		if e.hash != hash || string(e.key) != string(key) {
			continue
		}
		*link = e.next
		x.count--
		if x.release != nil {
			x.release(e.value)
		}
		return true
	}
	return false
}

// DeleteString is like [Index.Delete] but takes the key as a string.
func (x *Index[V]) DeleteString(key string) bool {
	return x.Delete(stringBytes(key))
}

// Destroy releases every value and drops all entries and buckets.
// The index must not be inserted into afterwards.
func (x *Index[V]) Destroy() {
	for i, e := range x.slots {
		for e != nil {
			n := e.next
			if x.release != nil {
				x.release(e.value)
			}
			e.next = nil
			e = n
		}
		x.slots[i] = nil
	}
	x.slots = nil
	x.count = 0
	x.tier = 0
}

// Walk calls fn on every entry in bucket order.
//
// If fn returns a non-nil error, Walk stops and returns that error.
// fn may delete the entry it is visiting, but no other entry.
// The key passed to fn must not be modified or retained.
func (x *Index[V]) Walk(fn func(key []byte, value V) error) error {
	for _, e := range x.slots {
		for e != nil {
			n := e.next
			if err := fn(e.key, e.value); err != nil {
				return err
			}
			e = n
		}
	}
	return nil
}

// All returns an iterator over all entries in bucket order.
// The same deletion rules as [Index.Walk] apply.
func (x *Index[V]) All() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		for _, e := range x.slots {
			for e != nil {
				n := e.next
				if !yield(e.key, e.value) {
					return
				}
				e = n
			}
		}
	}
}

// stringBytes returns the bytes of s without copying.
// The returned slice must not be modified.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
