// Package engine defines the ordered trie contract the triemap adapters are
// built on, along with Radix, the default implementation.
//
// An Engine maps byte-string keys to single 64-bit cells. The cells are
// owned by the engine; callers receive a *uint64 they may read and write
// until the key is deleted or the engine is closed. A cell value of zero
// is reserved to mean "no value" by every adapter in triemap.
//
// Each Engine keeps a cursor: the key most recently reached by Cell, Slot,
// AtOrAfter, Begin, End, Next, Previous or DeleteCurrent. A call that
// misses clears the cursor; Next, Previous, Key and DeleteCurrent then
// report nothing until a positioning call succeeds again.
//
// Engines are not safe for concurrent use.
package engine

import "errors"

var (
	// ErrExhausted is returned when the engine cannot allocate another cell
	// or more aux memory.
	ErrExhausted = errors.New("engine: resources exhausted")
	// ErrClosed is returned when allocating from a closed engine.
	ErrClosed = errors.New("engine: closed")
	// ErrInvalidConfig is returned by Open for impossible settings.
	ErrInvalidConfig = errors.New("engine: invalid config")
)

// Engine is the ordered key to cell store consumed by the triemap maps.
type Engine interface {
	// Cell returns the cell for key, inserting a zeroed one if needed. The
	// cursor is left on key.
	Cell(key []byte) (*uint64, error)
	// Slot returns the cell for key or nil; it never inserts.
	Slot(key []byte) *uint64
	// AtOrAfter returns the cell of the smallest key >= key or nil.
	AtOrAfter(key []byte) *uint64
	// Begin returns the cell of the smallest key or nil.
	Begin() *uint64
	// End returns the cell of the largest key or nil.
	End() *uint64
	// Next returns the cell of the key following the cursor or nil.
	Next() *uint64
	// Previous returns the cell of the key preceding the cursor or nil.
	Previous() *uint64
	// Key copies the cursor's key into buf and returns its length, or -1
	// if there is no cursor. buf must hold at least MaxKeyLen bytes.
	Key(buf []byte) int
	// DeleteCurrent removes the cursor's key and returns the cell of its
	// predecessor, which becomes the new cursor, or nil.
	DeleteCurrent() *uint64
	// AllocAux carves words uint64s from memory owned by the engine. The
	// memory is zeroed and lives until Close.
	AllocAux(words int) ([]uint64, error)
	// Clone returns a deep copy of the keys and cells. Aux memory and the
	// cursor are not carried over.
	Clone() (Engine, error)
	// Close releases everything the engine owns. It is safe to call more
	// than once.
	Close() error
	// Len returns the number of keys.
	Len() int
	// MaxKeyLen is the longest key accepted.
	MaxKeyLen() int
	// Depth is zero for variable length keys; otherwise every key is
	// exactly MaxKeyLen bytes.
	Depth() int
	// Stats reports the engine's footprint.
	Stats() Stats
}

// Stats describes an engine's current footprint.
type Stats struct {
	Keys      uint64
	AuxChunks uint64
	AuxWords  uint64
	AuxUsed   uint64
	Closed    bool
}
