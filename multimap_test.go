package triemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gholt/triemap/engine"
)

func newTestMultiMap(t *testing.T, opts ...func(*config)) *multiMap[uint64] {
	t.Helper()
	m, err := NewMultiMap[uint64](opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m.(*multiMap[uint64])
}

func findSlice(t *testing.T, m MultiMap[uint64], key uint64) []uint64 {
	t.Helper()
	v, ok := m.Find(key)
	require.True(t, ok, "key %d missing", key)
	return v.Slice()
}

func kindOf(m *multiMap[uint64], key uint64) cellKind {
	slot := m.eng.Slot(m.key(key))
	if slot == nil {
		return cellEmpty
	}
	return m.cell(slot).kind
}

type countingOwner struct {
	released []uint64
}

func (o *countingOwner) Release(v uint64) {
	o.released = append(o.released, v)
}

type duplicatingOwner struct {
	countingOwner
	dups int
}

func (o *duplicatingOwner) Duplicate(v uint64) uint64 {
	o.dups++
	return v + 1000
}

func TestMultiMapInlineCapacity(t *testing.T) {
	m := newTestMultiMap(t)
	assert.Equal(t, 3, m.InlineCapacity())
	h := newTestMultiMap(t, OptHeapCells(true))
	assert.Equal(t, 0, h.InlineCapacity())
}

func TestMultiMapPromotionIsInvisible(t *testing.T) {
	m := newTestMultiMap(t)
	k := m.InlineCapacity()
	var want []uint64
	for i := 0; i < k; i++ {
		want = append(want, uint64('a'))
		require.NoError(t, m.Insert(7, uint64('a')))
		assert.Equal(t, cellInline, kindOf(m, 7))
		assert.Equal(t, want, findSlice(t, m, 7))
	}
	assert.Zero(t, m.Stats(false).HeapAllocs)
	want = append(want, uint64('e'))
	require.NoError(t, m.Insert(7, uint64('e')))
	assert.Equal(t, cellHeap, kindOf(m, 7))
	assert.Equal(t, want, findSlice(t, m, 7))
	assert.Equal(t, uint64(1), m.Stats(false).HeapAllocs)

	for i := 0; i < 10; i++ {
		want = append(want, uint64(i))
		require.NoError(t, m.Insert(7, uint64(i)))
	}
	assert.Equal(t, want, findSlice(t, m, 7))
	assert.Equal(t, uint64(1), m.Stats(false).HeapAllocs)
	assert.Equal(t, uint64(len(want)), m.Stats(false).Values)
}

func TestMultiMapHeapCells(t *testing.T) {
	m := newTestMultiMap(t, OptHeapCells(true))
	require.NoError(t, m.Insert(1, 5))
	assert.Equal(t, cellHeap, kindOf(m, 1))
	require.NoError(t, m.Insert(1, 6))
	assert.Equal(t, []uint64{5, 6}, findSlice(t, m, 1))
	assert.True(t, m.RemoveEntry(1))
	s := m.Stats(false)
	assert.Equal(t, uint64(1), s.HeapAllocs)
	assert.Equal(t, uint64(1), s.HeapReleases)
}

func TestMultiMapFindMiss(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.Insert(5, 12))
	require.NoError(t, m.Insert(6, 2))
	require.NoError(t, m.Insert(7, 312))
	require.NoError(t, m.Insert(11, 412))
	require.NoError(t, m.Insert(7, 313))

	p, ok := m.AtOrAfter(4)
	require.True(t, ok)
	assert.Equal(t, uint64(5), p.Key)
	assert.Equal(t, []uint64{12}, p.Values.Slice())

	v, ok := m.Find(8)
	assert.False(t, ok)
	assert.Zero(t, v.Len())
	assert.False(t, m.Success())

	v, ok = m.Find(11)
	assert.True(t, ok)
	assert.True(t, m.Success())
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, uint64(412), v.At(0))
	assert.Equal(t, []uint64{312, 313}, findSlice(t, m, 7))
}

func TestMultiMapRemoveEntry(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.Insert(11, 9))
	assert.True(t, m.RemoveEntry(11))
	_, ok := m.Find(11)
	assert.False(t, ok)
	assert.True(t, m.IsEmpty())
	assert.False(t, m.RemoveEntry(11))
	assert.Zero(t, m.Stats(false).HeapReleases)

	for i := 0; i <= m.InlineCapacity(); i++ {
		require.NoError(t, m.Insert(3, uint64(i)))
	}
	require.NoError(t, m.Insert(2, 1))
	require.NoError(t, m.Insert(4, 1))
	assert.True(t, m.RemoveEntry(3))
	s := m.Stats(false)
	assert.Equal(t, uint64(1), s.HeapAllocs)
	assert.Equal(t, uint64(1), s.HeapReleases)
	assert.Equal(t, uint64(2), s.Keys)
	assert.Equal(t, uint64(2), s.Values)

	p, ok := m.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(4), p.Key)
}

func TestMultiMapReusesStorage(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.Insert(1, 1))
	used := m.eng.Stats().AuxUsed
	assert.True(t, m.RemoveEntry(1))
	require.NoError(t, m.Insert(2, 2))
	assert.Equal(t, used, m.eng.Stats().AuxUsed)
	assert.Len(t, m.cells, 1)
	assert.Equal(t, []uint64{2}, findSlice(t, m, 2))
}

func TestMultiMapInsertAll(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.InsertAll(1, []uint64{1, 2}, false))
	assert.Equal(t, cellHeap, kindOf(m, 1))
	assert.Equal(t, []uint64{1, 2}, findSlice(t, m, 1))

	require.NoError(t, m.InsertAll(1, []uint64{3}, false))
	assert.Equal(t, []uint64{1, 2, 3}, findSlice(t, m, 1))

	require.NoError(t, m.InsertAll(1, []uint64{9, 8}, true))
	assert.Equal(t, []uint64{9, 8}, findSlice(t, m, 1))

	require.NoError(t, m.Insert(2, 5))
	assert.Equal(t, cellInline, kindOf(m, 2))
	require.NoError(t, m.InsertAll(2, []uint64{6, 7}, false))
	assert.Equal(t, cellHeap, kindOf(m, 2))
	assert.Equal(t, []uint64{5, 6, 7}, findSlice(t, m, 2))

	require.NoError(t, m.Insert(3, 5))
	require.NoError(t, m.InsertAll(3, []uint64{4}, true))
	assert.Equal(t, []uint64{4}, findSlice(t, m, 3))

	require.NoError(t, m.InsertAll(4, nil, false))
	_, ok := m.Find(4)
	assert.False(t, ok)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, uint64(2+3+1), m.Stats(false).Values)
}

func TestMultiMapInsertAllCopies(t *testing.T) {
	m := newTestMultiMap(t)
	in := []uint64{1, 2, 3}
	require.NoError(t, m.InsertAll(1, in, false))
	in[0] = 100
	assert.Equal(t, []uint64{1, 2, 3}, findSlice(t, m, 1))
}

func TestMultiMapTraversal(t *testing.T) {
	m := newTestMultiMap(t)
	for _, k := range []uint64{300, 2, 70000, 1} {
		require.NoError(t, m.Insert(k, k))
		require.NoError(t, m.Insert(k, k+1))
	}
	var keys []uint64
	for p, ok := m.Begin(); ok; p, ok = m.Next() {
		assert.Equal(t, []uint64{p.Key, p.Key + 1}, p.Values.Slice())
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []uint64{1, 2, 300, 70000}, keys)
	keys = keys[:0]
	for p, ok := m.End(); ok; p, ok = m.Previous() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []uint64{70000, 300, 2, 1}, keys)
}

func TestMultiMapValuesAll(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.InsertAll(1, []uint64{4, 5, 6, 7, 8}, false))
	v, ok := m.Find(1)
	require.True(t, ok)
	var got []uint64
	for i, x := range v.All() {
		assert.Equal(t, v.At(i), x)
		got = append(got, x)
		if i == 2 {
			break
		}
	}
	assert.Equal(t, []uint64{4, 5, 6}, got)
	assert.Nil(t, Values{}.Slice())
}

func TestMultiMapClear(t *testing.T) {
	owner := &countingOwner{}
	m := newTestMultiMap(t, OptValueOwner(owner))
	m.Clear()
	assert.True(t, m.IsEmpty())
	for k := uint64(0); k < 20; k++ {
		for i := uint64(0); i < k%6; i++ {
			require.NoError(t, m.Insert(k, k*100+i))
		}
	}
	require.NoError(t, m.InsertAll(99, []uint64{1}, false))
	assert.False(t, m.IsEmpty())
	s := m.Stats(false)
	values := s.Values
	heaps := s.HeapCells
	assert.NotZero(t, s.InlineCells)
	assert.NotZero(t, heaps)

	m.Clear()
	assert.True(t, m.IsEmpty())
	assert.Len(t, owner.released, int(values))
	s = m.Stats(false)
	assert.Equal(t, heaps, s.HeapReleases)
	assert.Zero(t, s.Values)
	assert.Zero(t, s.InlineCells+s.HeapCells)
	m.Clear()
	assert.True(t, m.IsEmpty())
	_, ok := m.Begin()
	assert.False(t, ok)

	require.NoError(t, m.Insert(1, 1))
	assert.Equal(t, []uint64{1}, findSlice(t, m, 1))
}

func TestMultiMapOwnerReleases(t *testing.T) {
	owner := &countingOwner{}
	m := newTestMultiMap(t, OptValueOwner(ReleaseFunc(owner.Release)))
	require.NoError(t, m.Insert(1, 10))
	require.NoError(t, m.Insert(1, 11))
	assert.True(t, m.RemoveEntry(1))
	assert.Equal(t, []uint64{10, 11}, owner.released)

	require.NoError(t, m.InsertAll(2, []uint64{20, 21}, false))
	require.NoError(t, m.InsertAll(2, []uint64{22}, true))
	assert.Equal(t, []uint64{10, 11, 20, 21}, owner.released)

	require.NoError(t, m.Close())
	assert.Equal(t, []uint64{10, 11, 20, 21, 22}, owner.released)
	require.NoError(t, m.Close())
	assert.Len(t, owner.released, 5)
}

func TestMultiMapExhaustion(t *testing.T) {
	m := newTestMultiMap(t, OptMaxCells(1))
	require.NoError(t, m.Insert(1, 1))
	err := m.Insert(2, 2)
	assert.True(t, errors.Is(err, engine.ErrExhausted))
	assert.False(t, m.Success())
	err = m.InsertAll(3, []uint64{3}, false)
	assert.ErrorIs(t, err, engine.ErrExhausted)
	_, ok := m.Find(2)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
	assert.Len(t, m.cells, 1)
	require.NoError(t, m.Insert(1, 4))
	assert.Equal(t, []uint64{1, 4}, findSlice(t, m, 1))
}

func TestMultiMapAuxFallback(t *testing.T) {
	m := newTestMultiMap(t, OptEngine(func(maxKeyLen int, depth int) (engine.Engine, error) {
		return engine.Open(maxKeyLen, depth, engine.WithMaxAuxWords(1))
	}))
	require.NoError(t, m.Insert(1, 1))
	require.NoError(t, m.Insert(1, 2))
	assert.Equal(t, cellInline, kindOf(m, 1))
	assert.Equal(t, []uint64{1, 2}, findSlice(t, m, 1))
	assert.Zero(t, m.eng.Stats().AuxUsed)
}

func TestMultiMapClone(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.Insert(1, 10))
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, m.Insert(2, 20+i))
	}
	require.NoError(t, m.Insert(3, 30))
	_, ok := m.Find(2)
	require.True(t, ok)

	c, err := m.Clone()
	require.NoError(t, err)
	defer c.Close()
	p, ok := c.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(3), p.Key)

	require.NoError(t, c.Insert(1, 11))
	require.NoError(t, c.Insert(2, 25))
	assert.True(t, c.RemoveEntry(3))
	require.NoError(t, c.Insert(4, 40))

	assert.Equal(t, []uint64{10}, findSlice(t, m, 1))
	assert.Equal(t, []uint64{20, 21, 22, 23, 24}, findSlice(t, m, 2))
	assert.Equal(t, []uint64{30}, findSlice(t, m, 3))
	_, ok = m.Find(4)
	assert.False(t, ok)

	assert.Equal(t, []uint64{10, 11}, findSlice(t, c, 1))
	assert.Equal(t, []uint64{20, 21, 22, 23, 24, 25}, findSlice(t, c, 2))
	assert.Equal(t, uint64(9), c.Stats(false).Values)
	assert.Equal(t, uint64(7), m.Stats(false).Values)
}

func TestMultiMapCloneOwnership(t *testing.T) {
	owner := &countingOwner{}
	m := newTestMultiMap(t, OptValueOwner(owner))
	require.NoError(t, m.Insert(1, 1))
	c, err := m.Clone()
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Empty(t, owner.released)

	dup := &duplicatingOwner{}
	d := newTestMultiMap(t, OptValueOwner(dup))
	require.NoError(t, d.Insert(1, 1))
	require.NoError(t, d.Insert(2, 2))
	dc, err := d.Clone()
	require.NoError(t, err)
	assert.Equal(t, 2, dup.dups)
	assert.Equal(t, []uint64{1001}, findSlice(t, dc, 1))
	require.NoError(t, dc.Close())
	assert.ElementsMatch(t, []uint64{1001, 1002}, dup.released)
}

func TestMultiMapClosed(t *testing.T) {
	m, err := NewMultiMap[uint32]()
	require.NoError(t, err)
	require.NoError(t, m.Insert(1, 1))
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Insert(1, 1), ErrClosed)
	assert.ErrorIs(t, m.InsertAll(1, []uint64{1}, false), ErrClosed)
	assert.True(t, m.IsEmpty())
	m.Clear()
	_, err = m.Clone()
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, m.RemoveEntry(1))
}

func TestMultiMapStatsString(t *testing.T) {
	m := newTestMultiMap(t)
	require.NoError(t, m.Insert(1, 1))
	s := m.Stats(true)
	assert.Equal(t, uint64(1), s.InlineCells)
	out := s.String()
	assert.Contains(t, out, "InlineCells")
	assert.Contains(t, out, "inlineCapacity")
	assert.Contains(t, out, "cellTable")
}

func TestMultiMapLastValue(t *testing.T) {
	m := newTestMultiMap(t)
	_, ok := m.LastValue()
	assert.False(t, ok)
	assert.False(t, m.Success())

	for v := uint64(1); v <= 5; v++ {
		require.NoError(t, m.Insert(3, v))
	}
	require.NoError(t, m.Insert(9, 90))
	vals, ok := m.LastValue()
	require.True(t, ok)
	assert.Equal(t, []uint64{90}, vals.Slice())

	_, ok = m.Begin()
	require.True(t, ok)
	vals, ok = m.LastValue()
	require.True(t, ok)
	assert.True(t, m.Success())
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, vals.Slice())

	require.True(t, m.RemoveEntry(3))
	_, ok = m.LastValue()
	assert.False(t, ok)
}
