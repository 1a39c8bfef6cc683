package hashindex

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect[V any](x *Index[V]) map[string]V {
	m := make(map[string]V, x.Len())
	for k, v := range x.All() {
		m[string(k)] = v
	}
	return m
}

func TestIndexRoundTrip(t *testing.T) {
	x := New[int](nil, nil)

	x.InsertString("com.cn", 1)
	v, ok := x.SearchString("com.cn")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, x.Len())

	_, ok = x.SearchString("com")
	require.False(t, ok)
	_, ok = x.SearchString("com.c")
	require.False(t, ok)

	require.True(t, x.DeleteString("com.cn"))
	_, ok = x.SearchString("com.cn")
	require.False(t, ok)
	require.Zero(t, x.Len())
	require.False(t, x.DeleteString("com.cn"))
}

func TestIndexEmptyKey(t *testing.T) {
	x := New[string](nil, nil)
	x.Insert(nil, "empty")

	v, ok := x.Search([]byte{})
	require.True(t, ok)
	require.Equal(t, "empty", v)
	require.True(t, x.DeleteString(""))
}

func TestIndexKeyIsCopied(t *testing.T) {
	x := New[int](nil, nil)
	key := []byte("net")
	x.Insert(key, 7)
	key[0] = 'x'

	v, ok := x.SearchString("net")
	require.True(t, ok)
	require.Equal(t, 7, v)
	_, ok = x.SearchString("xet")
	require.False(t, ok)
}

func TestIndexOverwriteReleasesOldValue(t *testing.T) {
	var released []string
	x := New(func(v string) { released = append(released, v) }, nil)

	x.InsertString("com", "old")
	x.InsertString("com", "new")

	require.Equal(t, []string{"old"}, released)
	require.Equal(t, 1, x.Len())
	v, ok := x.SearchString("com")
	require.True(t, ok)
	require.Equal(t, "new", v)

	// Reinserting the same pair still releases the previous value.
	x.InsertString("com", "new")
	require.Equal(t, []string{"old", "new"}, released)
	require.Equal(t, 1, x.Len())
}

func TestIndexDeleteReleasesValue(t *testing.T) {
	var released []int
	x := New(func(v int) { released = append(released, v) }, nil)

	x.InsertString("a", 1)
	x.InsertString("b", 2)
	require.True(t, x.DeleteString("a"))
	require.Equal(t, []int{1}, released)
	require.False(t, x.DeleteString("a"))
	require.Equal(t, []int{1}, released)
}

func TestIndexGrowth(t *testing.T) {
	x := New[int](nil, nil)
	schedule := Tiers()
	require.Equal(t, schedule[0], x.Tier())

	for i := 0; i < schedule[0].MaxElements-1; i++ {
		x.InsertString(strconv.Itoa(i), i)
	}
	require.Equal(t, schedule[0].Slots, x.Tier().Slots)
	before := collect(x)

	x.InsertString("trigger", -1)
	require.Equal(t, schedule[1].Slots, x.Tier().Slots)

	after := collect(x)
	require.Len(t, after, len(before)+1)
	for k, v := range before {
		require.Equal(t, v, after[k], "key %q", k)
	}
	require.Equal(t, -1, after["trigger"])
}

func TestIndexGrowthInvariant(t *testing.T) {
	const n = 100000
	x := New[int](nil, nil)
	last := Tiers()[len(Tiers())-1]

	for i := 0; i < n; i++ {
		x.InsertString(fmt.Sprintf("%dabc", i), i)

		tier := x.Tier()
		require.Zero(t, tier.Slots&(tier.Slots-1), "slot count must be a power of two")
		if tier != last {
			require.Less(t, x.Len(), tier.MaxElements)
		}
	}
	require.Equal(t, n, x.Len())
	require.Equal(t, last, x.Tier())

	require.True(t, x.DeleteString("123abc"))
	_, ok := x.SearchString("123abc")
	require.False(t, ok)

	for _, key := range []string{"456abc", "789abc", "10086abc"} {
		v, ok := x.SearchString(key)
		require.True(t, ok, key)
		require.Equal(t, key, strconv.Itoa(v)+"abc")
	}
	_, ok = x.SearchString("123abcd")
	require.False(t, ok)

	for i := 0; i < n; i++ {
		x.DeleteString(fmt.Sprintf("%dabc", i))
	}
	require.Zero(t, x.Len())
}

func TestIndexCollidingHash(t *testing.T) {
	x := New[int](nil, func([]byte) uint32 { return 42 })

	for i := 0; i < 100; i++ {
		x.InsertString(strconv.Itoa(i), i)
	}
	require.Equal(t, 100, x.Len())

	for i := 0; i < 100; i += 2 {
		require.True(t, x.DeleteString(strconv.Itoa(i)))
	}
	for i := 0; i < 100; i++ {
		v, ok := x.SearchString(strconv.Itoa(i))
		require.Equal(t, i%2 == 1, ok, "key %d", i)
		if ok {
			require.Equal(t, i, v)
		}
	}
}

func TestIndexDestroy(t *testing.T) {
	released := 0
	x := New(func(int) { released++ }, XXH3)

	for i := 0; i < 1000; i++ {
		x.InsertString(strconv.Itoa(i), i)
	}
	x.Destroy()

	require.Equal(t, 1000, released)
	require.Zero(t, x.Len())
	_, ok := x.SearchString("1")
	require.False(t, ok)
	require.False(t, x.DeleteString("1"))
	require.Panics(t, func() { x.InsertString("1", 1) })
}

func TestIndexWalk(t *testing.T) {
	x := New[int](nil, nil)
	for i := 0; i < 50; i++ {
		x.InsertString(strconv.Itoa(i), i)
	}

	t.Run("Complete", func(t *testing.T) {
		sum := 0
		err := x.Walk(func(key []byte, value int) error {
			require.Equal(t, strconv.Itoa(value), string(key))
			sum += value
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 49*50/2, sum)
	})

	t.Run("Stop", func(t *testing.T) {
		errStop := errors.New("stop")
		const k = 7
		visited := 0
		err := x.Walk(func([]byte, int) error {
			visited++
			if visited == k {
				return errStop
			}
			return nil
		})
		require.ErrorIs(t, err, errStop)
		require.Equal(t, k, visited)
	})

	t.Run("DeleteVisited", func(t *testing.T) {
		err := x.Walk(func(key []byte, value int) error {
			if value%3 == 0 {
				require.True(t, x.Delete(key))
			}
			return nil
		})
		require.NoError(t, err)
		for k, v := range collect(x) {
			require.NotZero(t, v%3, "key %q should have been deleted", k)
		}
		require.Equal(t, 50-17, x.Len())
	})
}

func TestTime33(t *testing.T) {
	require.Equal(t, uint32(5318), Time33(nil))
	require.Equal(t, uint32(5318*33+'a'), Time33([]byte("a")))
	require.Equal(t, uint32((5318*33+'a')*33+'b'), Time33([]byte("ab")))
}

func TestHashFuncByName(t *testing.T) {
	for _, name := range []string{"", "time33", "xxh3"} {
		fn, err := HashFuncByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, fn, name)
	}
	_, err := HashFuncByName("crc32")
	require.Error(t, err)
}

func BenchmarkIndexSearch(b *testing.B) {
	for _, hf := range []struct {
		name string
		fn   HashFunc
	}{
		{"Time33", Time33},
		{"XXH3", XXH3},
	} {
		x := New[int](nil, hf.fn)
		for i := 0; i < 8192; i++ {
			x.InsertString(fmt.Sprintf("suffix%d.example", i), i)
		}
		b.Run(hf.name+"/Hit", func(b *testing.B) {
			for b.Loop() {
				if _, ok := x.SearchString("suffix4096.example"); !ok {
					b.Fatal("unexpected miss")
				}
			}
		})
		b.Run(hf.name+"/Miss", func(b *testing.B) {
			for b.Loop() {
				if _, ok := x.SearchString("nonexistent.example"); ok {
					b.Fatal("unexpected hit")
				}
			}
		})
	}
}
