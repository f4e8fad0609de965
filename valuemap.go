package triemap

import (
	"fmt"

	"github.com/gholt/triemap/engine"
)

// ValueMap is an ordered mapping from byte-string keys to non-zero uint64
// values.
type ValueMap interface {
	// Insert stores value for key, replacing any previous value. A zero
	// value or a key longer than the configured maximum is a programming
	// error and panics. If the engine cannot make room for a new key the
	// error wraps engine.ErrExhausted and the map is unchanged.
	Insert(key []byte, value uint64) error
	// Find returns the value for key, or 0 and false if there is none. It
	// never inserts.
	Find(key []byte) (uint64, bool)
	// AtOrAfter returns the pair with the smallest key >= key.
	AtOrAfter(key []byte) (Pair, bool)
	// Begin returns the pair with the smallest key.
	Begin() (Pair, bool)
	// End returns the pair with the largest key.
	End() (Pair, bool)
	// Next returns the pair after the cursor. Stepping past the last key
	// reports false and leaves no cursor, so later Next and Previous calls
	// also report false until the cursor is positioned again.
	Next() (Pair, bool)
	// Previous returns the pair before the cursor, with the same boundary
	// rules as Next.
	Previous() (Pair, bool)
	// LastValue returns the value under the cursor without another lookup.
	// It reports false if there is no cursor.
	LastValue() (uint64, bool)
	// SetLastValue overwrites the value under the cursor in place and
	// reports whether there was a cursor to write through. A zero value
	// panics, as with Insert.
	SetLastValue(value uint64) bool
	// RemoveEntry deletes the key under the cursor; the cursor moves to its
	// predecessor. It reports false, doing nothing, if there is no cursor.
	RemoveEntry() bool
	// Success reports the outcome of the most recent call.
	Success() bool
	// Len returns the number of keys.
	Len() int
	// Clone returns an independent copy whose cursor is on the same key.
	Clone() (ValueMap, error)
	// Stats returns a Stats instance giving information about the map.
	Stats(debug bool) *Stats
	// Close releases the engine. Later lookups miss and inserts return
	// ErrClosed. Close may be called more than once.
	Close() error
}

// Pair is a key and its value as of the call that returned it.
type Pair struct {
	Key   []byte
	Value uint64
}

type valueMap struct {
	cfg    *config
	eng    engine.Engine
	cur    *cursor
	closed bool
}

// NewValueMap returns an empty ValueMap using the options given.
func NewValueMap(opts ...func(*config)) (ValueMap, error) {
	cfg := resolveConfig(opts...)
	vm, err := newValueMap(cfg, cfg.maxKeyLen, 0)
	if err != nil {
		return nil, err
	}
	return vm, nil
}

func newValueMap(cfg *config, maxKeyLen int, depth int) (*valueMap, error) {
	eng, err := cfg.openEngine(maxKeyLen, depth)
	if err != nil {
		return nil, fmt.Errorf("triemap: open engine: %w", err)
	}
	return &valueMap{cfg: cfg, eng: eng, cur: newCursor(eng)}, nil
}

func (vm *valueMap) Insert(key []byte, value uint64) error {
	precondition(value != 0, "zero value inserted for key %x", key)
	precondition(len(key) <= vm.eng.MaxKeyLen(), "key length %d exceeds max %d", len(key), vm.eng.MaxKeyLen())
	if vm.closed {
		vm.cur.fail()
		return ErrClosed
	}
	slot, err := vm.eng.Cell(key)
	if err != nil {
		vm.cur.fail()
		vm.cfg.logger.Warn("triemap: insert failed", "key", fmt.Sprintf("%x", key), "error", err)
		return fmt.Errorf("triemap: insert %x: %w", key, err)
	}
	*slot = value
	vm.cur.land(slot)
	return nil
}

func (vm *valueMap) Find(key []byte) (uint64, bool) {
	precondition(len(key) <= vm.eng.MaxKeyLen(), "key length %d exceeds max %d", len(key), vm.eng.MaxKeyLen())
	if !vm.cur.find(key) {
		return 0, false
	}
	return *vm.cur.slot, true
}

func (vm *valueMap) pair(ok bool) (Pair, bool) {
	if !ok {
		return Pair{}, false
	}
	return Pair{Key: vm.cur.currentKey(), Value: *vm.cur.slot}, true
}

func (vm *valueMap) AtOrAfter(key []byte) (Pair, bool) {
	precondition(len(key) <= vm.eng.MaxKeyLen(), "key length %d exceeds max %d", len(key), vm.eng.MaxKeyLen())
	return vm.pair(vm.cur.atOrAfter(key))
}

func (vm *valueMap) Begin() (Pair, bool) {
	return vm.pair(vm.cur.begin())
}

func (vm *valueMap) End() (Pair, bool) {
	return vm.pair(vm.cur.end())
}

func (vm *valueMap) Next() (Pair, bool) {
	return vm.pair(vm.cur.next())
}

func (vm *valueMap) Previous() (Pair, bool) {
	return vm.pair(vm.cur.previous())
}

func (vm *valueMap) LastValue() (uint64, bool) {
	if vm.cur.slot == nil {
		vm.cur.fail()
		return 0, false
	}
	vm.cur.success = true
	return *vm.cur.slot, true
}

func (vm *valueMap) SetLastValue(value uint64) bool {
	precondition(value != 0, "zero value set at cursor")
	if vm.cur.slot == nil {
		vm.cur.fail()
		return false
	}
	*vm.cur.slot = value
	vm.cur.success = true
	return true
}

// removeKey positions the cursor on key and deletes it.
func (vm *valueMap) removeKey(key []byte) bool {
	if !vm.cur.find(key) {
		return false
	}
	return vm.cur.remove()
}

func (vm *valueMap) RemoveEntry() bool {
	return vm.cur.remove()
}

func (vm *valueMap) Success() bool {
	return vm.cur.success
}

func (vm *valueMap) Len() int {
	return vm.eng.Len()
}

func (vm *valueMap) Clone() (ValueMap, error) {
	return vm.clone()
}

func (vm *valueMap) clone() (*valueMap, error) {
	if vm.closed {
		return nil, ErrClosed
	}
	eng, err := vm.eng.Clone()
	if err != nil {
		return nil, fmt.Errorf("triemap: clone engine: %w", err)
	}
	vm.cfg.logger.Debug("triemap: cloned value map", "keys", eng.Len())
	return &valueMap{cfg: vm.cfg, eng: eng, cur: vm.cur.replay(eng)}, nil
}

func (vm *valueMap) Stats(debug bool) *Stats {
	es := vm.eng.Stats()
	return &Stats{
		Keys:        es.Keys,
		Values:      es.Keys,
		statsDebug:  debug,
		kind:        "valuemap",
		maxKeyLen:   vm.eng.MaxKeyLen(),
		depth:       vm.eng.Depth(),
		cursorValid: vm.cur.slot != nil,
		engine:      es,
	}
}

func (vm *valueMap) Close() error {
	if vm.closed {
		return nil
	}
	vm.closed = true
	vm.cur.slot = nil
	vm.cfg.logger.Debug("triemap: closing value map", "keys", vm.eng.Len())
	return vm.eng.Close()
}
