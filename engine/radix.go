package engine

import (
	"bytes"
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

// Option configures a Radix engine.
type Option func(*Radix)

// WithMaxCells caps the number of keys; Cell returns ErrExhausted once the
// cap is reached. Zero means no cap.
func WithMaxCells(n int) Option {
	return func(r *Radix) {
		r.maxCells = n
	}
}

// WithMaxAuxWords caps the aux memory handed out by AllocAux. Zero means
// no cap.
func WithMaxAuxWords(n int) Option {
	return func(r *Radix) {
		r.maxAuxWords = n
	}
}

// WithAuxChunkWords sets how many uint64s each aux chunk holds.
func WithAuxChunkWords(n int) Option {
	return func(r *Radix) {
		r.auxChunkWords = n
	}
}

// Radix is an Engine over an adaptive radix tree. The tree itself is
// immutable; Radix keeps only the newest version so cells are never shared
// between live trees except across Clone, which copies them.
type Radix struct {
	maxKeyLen     int
	depth         int
	maxCells      int
	maxAuxWords   int
	auxChunkWords int
	tree          *iradix.Tree[*uint64]
	aux           *auxArena
	cur           []byte
	valid         bool
	closed        bool
}

var _ Engine = (*Radix)(nil)

// Open returns an empty Radix. With depth zero keys may be any length up to
// maxKeyLen; with depth > 0 every key must be exactly maxKeyLen bytes.
func Open(maxKeyLen int, depth int, opts ...Option) (*Radix, error) {
	if maxKeyLen <= 0 {
		return nil, fmt.Errorf("%w: maxKeyLen %d", ErrInvalidConfig, maxKeyLen)
	}
	if depth < 0 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidConfig, depth)
	}
	r := &Radix{maxKeyLen: maxKeyLen, depth: depth}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxCells < 0 || r.maxAuxWords < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidConfig)
	}
	r.tree = iradix.New[*uint64]()
	r.aux = newAuxArena(r.auxChunkWords, r.maxAuxWords)
	r.cur = make([]byte, 0, maxKeyLen)
	return r, nil
}

func (r *Radix) checkKey(key []byte) {
	if len(key) > r.maxKeyLen {
		panic(fmt.Sprintf("engine: key length %d exceeds max %d", len(key), r.maxKeyLen))
	}
	if r.depth > 0 && len(key) != r.maxKeyLen {
		panic(fmt.Sprintf("engine: fixed width key length %d, want %d", len(key), r.maxKeyLen))
	}
}

func (r *Radix) position(key []byte, cell *uint64) *uint64 {
	if cell == nil {
		r.valid = false
		r.cur = r.cur[:0]
		return nil
	}
	r.cur = append(r.cur[:0], key...)
	r.valid = true
	return cell
}

func (r *Radix) Cell(key []byte) (*uint64, error) {
	if r.closed {
		return nil, ErrClosed
	}
	r.checkKey(key)
	if c, ok := r.tree.Get(key); ok {
		return r.position(key, c), nil
	}
	if r.maxCells > 0 && r.tree.Len() >= r.maxCells {
		return nil, ErrExhausted
	}
	c := new(uint64)
	// The tree keeps the key slice, so it gets its own copy.
	r.tree, _, _ = r.tree.Insert(bytes.Clone(key), c)
	return r.position(key, c), nil
}

func (r *Radix) Slot(key []byte) *uint64 {
	if r.closed {
		return nil
	}
	r.checkKey(key)
	c, _ := r.tree.Get(key)
	return r.position(key, c)
}

func (r *Radix) AtOrAfter(key []byte) *uint64 {
	if r.closed {
		return nil
	}
	r.checkKey(key)
	it := r.tree.Root().Iterator()
	it.SeekLowerBound(key)
	k, c, _ := it.Next()
	return r.position(k, c)
}

func (r *Radix) Begin() *uint64 {
	if r.closed {
		return nil
	}
	k, c, _ := r.tree.Root().Minimum()
	return r.position(k, c)
}

func (r *Radix) End() *uint64 {
	if r.closed {
		return nil
	}
	k, c, _ := r.tree.Root().Maximum()
	return r.position(k, c)
}

func (r *Radix) Next() *uint64 {
	if r.closed || !r.valid {
		return nil
	}
	// The smallest key strictly greater than cur is the lower bound of cur
	// with a zero byte appended.
	it := r.tree.Root().Iterator()
	it.SeekLowerBound(append(bytes.Clone(r.cur), 0))
	k, c, _ := it.Next()
	return r.position(k, c)
}

func (r *Radix) Previous() *uint64 {
	if r.closed || !r.valid {
		return nil
	}
	k, c := r.before(r.cur)
	return r.position(k, c)
}

// before returns the largest key strictly less than key.
func (r *Radix) before(key []byte) ([]byte, *uint64) {
	it := r.tree.Root().ReverseIterator()
	it.SeekReverseLowerBound(key)
	k, c, ok := it.Previous()
	if ok && bytes.Equal(k, key) {
		k, c, ok = it.Previous()
	}
	if !ok {
		return nil, nil
	}
	return k, c
}

func (r *Radix) Key(buf []byte) int {
	if r.closed || !r.valid {
		return -1
	}
	return copy(buf, r.cur)
}

func (r *Radix) DeleteCurrent() *uint64 {
	if r.closed || !r.valid {
		return nil
	}
	r.tree, _, _ = r.tree.Delete(r.cur)
	k, c := r.before(r.cur)
	return r.position(k, c)
}

func (r *Radix) AllocAux(words int) ([]uint64, error) {
	if r.closed {
		return nil, ErrClosed
	}
	return r.aux.alloc(words)
}

func (r *Radix) Clone() (Engine, error) {
	if r.closed {
		return nil, ErrClosed
	}
	c := &Radix{
		maxKeyLen:     r.maxKeyLen,
		depth:         r.depth,
		maxCells:      r.maxCells,
		maxAuxWords:   r.maxAuxWords,
		auxChunkWords: r.auxChunkWords,
		aux:           newAuxArena(r.auxChunkWords, r.maxAuxWords),
		cur:           make([]byte, 0, r.maxKeyLen),
	}
	txn := iradix.New[*uint64]().Txn()
	it := r.tree.Root().Iterator()
	for k, v, ok := it.Next(); ok; k, v, ok = it.Next() {
		cell := new(uint64)
		*cell = *v
		txn.Insert(k, cell)
	}
	c.tree = txn.Commit()
	return c, nil
}

func (r *Radix) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.tree = iradix.New[*uint64]()
	r.aux.free()
	r.valid = false
	r.cur = r.cur[:0]
	return nil
}

func (r *Radix) Len() int {
	return r.tree.Len()
}

func (r *Radix) MaxKeyLen() int {
	return r.maxKeyLen
}

func (r *Radix) Depth() int {
	return r.depth
}

func (r *Radix) Stats() Stats {
	return Stats{
		Keys:      uint64(r.tree.Len()),
		AuxChunks: uint64(len(r.aux.chunks)),
		AuxWords:  uint64(r.aux.reserved),
		AuxUsed:   uint64(r.aux.used),
		Closed:    r.closed,
	}
}
