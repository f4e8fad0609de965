package triemap

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/gholt/triemap/engine"
)

// MultiMap is an ordered mapping from unsigned integer keys to sequences of
// uint64 values. Values for a key keep their insertion order and may repeat.
type MultiMap[K Unsigned] interface {
	// Insert appends value to the values for key. If the engine cannot make
	// room for a new key the error wraps engine.ErrExhausted and the map is
	// unchanged.
	Insert(key K, value uint64) error
	// InsertAll appends values to the values for key, or replaces them if
	// overwrite is true, in which case owned values being replaced are
	// released. The key is always left with heap storage. Passing no values
	// for a key that is not present does nothing.
	InsertAll(key K, values []uint64, overwrite bool) error
	// Find returns the values for key, or false if the key is not present.
	Find(key K) (Values, bool)
	// AtOrAfter returns the key >= key with its values.
	AtOrAfter(key K) (MultiPair[K], bool)
	// Begin returns the smallest key with its values.
	Begin() (MultiPair[K], bool)
	// End returns the largest key with its values.
	End() (MultiPair[K], bool)
	// Next returns the key after the cursor with its values.
	Next() (MultiPair[K], bool)
	// Previous returns the key before the cursor with its values.
	Previous() (MultiPair[K], bool)
	// LastValue returns the values under the cursor without another lookup.
	// It reports false if there is no cursor.
	LastValue() (Values, bool)
	// RemoveEntry drops key and all its values, releasing any storage and
	// owned values. The cursor moves to the predecessor of key. It reports
	// whether key was present.
	RemoveEntry(key K) bool
	// Clear removes every key as RemoveEntry would. It is safe to call at
	// any time, including more than once.
	Clear()
	// IsEmpty reports whether the map has no keys.
	IsEmpty() bool
	// Success reports the outcome of the most recent call.
	Success() bool
	// InlineCapacity is how many values a key holds before moving them to a
	// heap slice; zero with OptHeapCells(true).
	InlineCapacity() int
	// Len returns the number of keys.
	Len() int
	// Clone returns an independent copy whose cursor is on the same key.
	Clone() (MultiMap[K], error)
	// Stats returns a Stats instance giving information about the map.
	Stats(debug bool) *Stats
	// Close clears the map and releases the engine. Close may be called more
	// than once.
	Close() error
}

// MultiPair is a key and a view of its values.
type MultiPair[K Unsigned] struct {
	Key    K
	Values Values
}

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellInline
	cellHeap
)

// valueCell is the storage behind one MultiMap key. Exactly one of inline
// (with n values in use) or heap is in play, according to kind.
type valueCell struct {
	kind   cellKind
	n      int
	inline []uint64
	heap   []uint64
}

// sliceHeaderWords is the inline capacity: a heap cell costs one slice
// header, so an inline block of the same size costs nothing extra.
const sliceHeaderWords = int(unsafe.Sizeof([]uint64(nil)) / unsafe.Sizeof(uint64(0)))

type multiMap[K Unsigned] struct {
	cfg          *config
	eng          engine.Engine
	cur          *cursor
	kbuf         []byte
	inlineCap    int
	cells        []valueCell
	freeHandles  []uint64
	spare        [][]uint64
	values       uint64
	heapAllocs   uint64
	heapReleases uint64
	closed       bool
}

// NewMultiMap returns an empty MultiMap using the options given;
// OptMaxKeyLen is ignored.
func NewMultiMap[K Unsigned](opts ...func(*config)) (MultiMap[K], error) {
	cfg := resolveConfig(opts...)
	eng, err := cfg.openEngine(keyWidth[K](), 1)
	if err != nil {
		return nil, fmt.Errorf("triemap: open engine: %w", err)
	}
	mm := &multiMap[K]{
		cfg:       cfg,
		eng:       eng,
		cur:       newCursor(eng),
		kbuf:      make([]byte, keyWidth[K]()),
		inlineCap: sliceHeaderWords,
	}
	if cfg.heapCells {
		mm.inlineCap = 0
	}
	return mm, nil
}

func (mm *multiMap[K]) key(k K) []byte {
	putKey(mm.kbuf, k)
	return mm.kbuf
}

func (mm *multiMap[K]) cell(slot *uint64) *valueCell {
	return &mm.cells[*slot-1]
}

func (mm *multiMap[K]) newHandle() uint64 {
	if n := len(mm.freeHandles); n > 0 {
		h := mm.freeHandles[n-1]
		mm.freeHandles = mm.freeHandles[:n-1]
		return h
	}
	mm.cells = append(mm.cells, valueCell{})
	return uint64(len(mm.cells))
}

func (mm *multiMap[K]) newHeap(n int) []uint64 {
	mm.heapAllocs++
	return make([]uint64, 0, max(n, 2*mm.inlineCap, 4))
}

// inlineBlock returns a zeroed block of inlineCap words, reusing blocks from
// removed keys before carving new aux memory.
func (mm *multiMap[K]) inlineBlock() []uint64 {
	if n := len(mm.spare); n > 0 {
		b := mm.spare[n-1]
		mm.spare = mm.spare[:n-1]
		clear(b)
		return b
	}
	b, err := mm.eng.AllocAux(mm.inlineCap)
	if err != nil {
		mm.cfg.logger.Debug("triemap: aux memory unavailable, using heap block", "error", err)
		return make([]uint64, mm.inlineCap)
	}
	return b
}

// promote moves an inline cell's values into a new heap slice with room for
// extra more.
func (mm *multiMap[K]) promote(c *valueCell, extra int) {
	h := mm.newHeap(c.n + extra)
	h = append(h, c.inline[:c.n]...)
	mm.spare = append(mm.spare, c.inline)
	c.kind = cellHeap
	c.inline = nil
	c.n = 0
	c.heap = h
}

func (mm *multiMap[K]) push(c *valueCell, value uint64) {
	switch c.kind {
	case cellEmpty:
		if mm.inlineCap == 0 {
			c.kind = cellHeap
			c.heap = append(mm.newHeap(1), value)
			break
		}
		c.kind = cellInline
		c.inline = mm.inlineBlock()
		c.inline[0] = value
		c.n = 1
	case cellInline:
		if c.n < mm.inlineCap {
			c.inline[c.n] = value
			c.n++
			break
		}
		mm.promote(c, 1)
		c.heap = append(c.heap, value)
	case cellHeap:
		c.heap = append(c.heap, value)
	}
	mm.values++
}

func (mm *multiMap[K]) view(c *valueCell) Values {
	switch c.kind {
	case cellInline:
		return Values{vals: c.inline[:c.n:c.n]}
	case cellHeap:
		return Values{vals: c.heap[:len(c.heap):len(c.heap)]}
	}
	return Values{}
}

func (mm *multiMap[K]) drop(vals []uint64) {
	if mm.cfg.owner != nil {
		for _, v := range vals {
			mm.cfg.owner.Release(v)
		}
	}
	mm.values -= uint64(len(vals))
}

// release frees everything held by the cell behind handle h and returns the
// handle for reuse.
func (mm *multiMap[K]) release(h uint64) {
	if h == 0 {
		return
	}
	c := &mm.cells[h-1]
	mm.drop(mm.view(c).vals)
	switch c.kind {
	case cellInline:
		mm.spare = append(mm.spare, c.inline)
	case cellHeap:
		mm.heapReleases++
	}
	*c = valueCell{}
	mm.freeHandles = append(mm.freeHandles, h)
}

// slotFor gets or creates the engine cell for key and makes sure it has a
// handle.
func (mm *multiMap[K]) slotFor(key K) (*uint64, error) {
	if mm.closed {
		mm.cur.fail()
		return nil, ErrClosed
	}
	slot, err := mm.eng.Cell(mm.key(key))
	if err != nil {
		mm.cur.fail()
		mm.cfg.logger.Warn("triemap: insert failed", "key", uint64(key), "error", err)
		return nil, fmt.Errorf("triemap: insert %d: %w", uint64(key), err)
	}
	if *slot == 0 {
		*slot = mm.newHandle()
	}
	return slot, nil
}

func (mm *multiMap[K]) Insert(key K, value uint64) error {
	slot, err := mm.slotFor(key)
	if err != nil {
		return err
	}
	mm.push(mm.cell(slot), value)
	mm.cur.land(slot)
	return nil
}

func (mm *multiMap[K]) InsertAll(key K, values []uint64, overwrite bool) error {
	if len(values) == 0 && !mm.closed && mm.eng.Slot(mm.key(key)) == nil {
		mm.cur.land(nil)
		mm.cur.success = true
		return nil
	}
	slot, err := mm.slotFor(key)
	if err != nil {
		return err
	}
	c := mm.cell(slot)
	switch c.kind {
	case cellEmpty:
		c.kind = cellHeap
		c.heap = mm.newHeap(len(values))
	case cellInline:
		if overwrite {
			mm.drop(c.inline[:c.n])
			mm.spare = append(mm.spare, c.inline)
			*c = valueCell{kind: cellHeap, heap: mm.newHeap(len(values))}
		} else {
			mm.promote(c, len(values))
		}
	case cellHeap:
		if overwrite {
			mm.drop(c.heap)
			clear(c.heap)
			c.heap = c.heap[:0]
		}
	}
	c.heap = append(c.heap, values...)
	mm.values += uint64(len(values))
	mm.cur.land(slot)
	return nil
}

func (mm *multiMap[K]) Find(key K) (Values, bool) {
	if !mm.cur.find(mm.key(key)) {
		return Values{}, false
	}
	return mm.view(mm.cell(mm.cur.slot)), true
}

func (mm *multiMap[K]) pair(ok bool) (MultiPair[K], bool) {
	if !ok {
		return MultiPair[K]{}, false
	}
	return MultiPair[K]{Key: getKey[K](mm.cur.key), Values: mm.view(mm.cell(mm.cur.slot))}, true
}

func (mm *multiMap[K]) AtOrAfter(key K) (MultiPair[K], bool) {
	return mm.pair(mm.cur.atOrAfter(mm.key(key)))
}

func (mm *multiMap[K]) Begin() (MultiPair[K], bool) {
	return mm.pair(mm.cur.begin())
}

func (mm *multiMap[K]) End() (MultiPair[K], bool) {
	return mm.pair(mm.cur.end())
}

func (mm *multiMap[K]) Next() (MultiPair[K], bool) {
	return mm.pair(mm.cur.next())
}

func (mm *multiMap[K]) Previous() (MultiPair[K], bool) {
	return mm.pair(mm.cur.previous())
}

func (mm *multiMap[K]) LastValue() (Values, bool) {
	if mm.cur.slot == nil {
		mm.cur.fail()
		return Values{}, false
	}
	mm.cur.success = true
	return mm.view(mm.cell(mm.cur.slot)), true
}

func (mm *multiMap[K]) RemoveEntry(key K) bool {
	slot := mm.eng.Slot(mm.key(key))
	if !mm.cur.land(slot) {
		return false
	}
	mm.release(*slot)
	*slot = 0
	return mm.cur.remove()
}

func (mm *multiMap[K]) Clear() {
	if mm.closed {
		return
	}
	n := 0
	for slot := mm.eng.Begin(); slot != nil; slot = mm.eng.Begin() {
		mm.release(*slot)
		*slot = 0
		mm.eng.DeleteCurrent()
		n++
	}
	mm.cells = mm.cells[:0]
	mm.freeHandles = mm.freeHandles[:0]
	mm.cur.reset()
	if n > 0 {
		mm.cfg.logger.Debug("triemap: cleared multimap", "keys", n)
	}
}

func (mm *multiMap[K]) IsEmpty() bool {
	return mm.eng.Len() == 0
}

func (mm *multiMap[K]) Success() bool {
	return mm.cur.success
}

func (mm *multiMap[K]) InlineCapacity() int {
	return mm.inlineCap
}

func (mm *multiMap[K]) Len() int {
	return mm.eng.Len()
}

func (mm *multiMap[K]) Clone() (MultiMap[K], error) {
	if mm.closed {
		return nil, ErrClosed
	}
	eng, err := mm.eng.Clone()
	if err != nil {
		return nil, fmt.Errorf("triemap: clone engine: %w", err)
	}
	cfg := mm.cfg
	dup, canDup := cfg.owner.(ValueDuplicator)
	if cfg.owner != nil && !canDup {
		c := *cfg
		c.owner = nil
		cfg = &c
		mm.cfg.logger.Warn("triemap: clone does not own its values; owner cannot duplicate")
	}
	cl := &multiMap[K]{
		cfg:         cfg,
		eng:         eng,
		kbuf:        make([]byte, len(mm.kbuf)),
		inlineCap:   mm.inlineCap,
		cells:       make([]valueCell, len(mm.cells)),
		freeHandles: slices.Clone(mm.freeHandles),
		values:      mm.values,
	}
	for i := range mm.cells {
		src := &mm.cells[i]
		dst := &cl.cells[i]
		dst.kind = src.kind
		switch src.kind {
		case cellInline:
			dst.inline = cl.inlineBlock()
			copy(dst.inline, src.inline[:src.n])
			dst.n = src.n
		case cellHeap:
			dst.heap = append(cl.newHeap(len(src.heap)), src.heap...)
		}
		if canDup {
			vals := cl.view(dst).vals
			for j, v := range vals {
				vals[j] = dup.Duplicate(v)
			}
		}
	}
	cl.cur = mm.cur.replay(eng)
	mm.cfg.logger.Debug("triemap: cloned multimap", "keys", eng.Len(), "values", cl.values)
	return cl, nil
}

func (mm *multiMap[K]) Stats(debug bool) *Stats {
	es := mm.eng.Stats()
	s := &Stats{
		Keys:           es.Keys,
		Values:         mm.values,
		HeapAllocs:     mm.heapAllocs,
		HeapReleases:   mm.heapReleases,
		statsDebug:     debug,
		kind:           "multimap",
		maxKeyLen:      mm.eng.MaxKeyLen(),
		depth:          mm.eng.Depth(),
		inlineCapacity: mm.inlineCap,
		heapCellsOpt:   mm.cfg.heapCells,
		ownsValues:     mm.cfg.owner != nil,
		cellTable:      uint64(len(mm.cells)),
		freeHandles:    uint64(len(mm.freeHandles)),
		spareBlocks:    uint64(len(mm.spare)),
		cursorValid:    mm.cur.slot != nil,
		engine:         es,
	}
	for i := range mm.cells {
		switch mm.cells[i].kind {
		case cellInline:
			s.InlineCells++
		case cellHeap:
			s.HeapCells++
		}
	}
	return s
}

func (mm *multiMap[K]) Close() error {
	if mm.closed {
		return nil
	}
	mm.Clear()
	mm.closed = true
	mm.spare = nil
	mm.cells = nil
	mm.cfg.logger.Debug("triemap: closing multimap")
	return mm.eng.Close()
}
