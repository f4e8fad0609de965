package triemap

// IntValueMap is an ordered mapping from unsigned integer keys to non-zero
// uint64 values. It behaves exactly like ValueMap with keys compared in
// numeric order.
type IntValueMap[K Unsigned] interface {
	// Insert stores value for key, replacing any previous value. A zero
	// value panics; engine exhaustion returns an error wrapping
	// engine.ErrExhausted.
	Insert(key K, value uint64) error
	// Find returns the value for key, or 0 and false if there is none.
	Find(key K) (uint64, bool)
	// AtOrAfter returns the pair with the smallest key >= key.
	AtOrAfter(key K) (IntPair[K], bool)
	// Begin returns the pair with the smallest key.
	Begin() (IntPair[K], bool)
	// End returns the pair with the largest key.
	End() (IntPair[K], bool)
	// Next returns the pair after the cursor.
	Next() (IntPair[K], bool)
	// Previous returns the pair before the cursor.
	Previous() (IntPair[K], bool)
	// LastValue returns the value under the cursor without another lookup.
	LastValue() (uint64, bool)
	// SetLastValue overwrites the value under the cursor in place; a zero
	// value panics.
	SetLastValue(value uint64) bool
	// RemoveEntry deletes the key under the cursor; the cursor moves to its
	// predecessor.
	RemoveEntry() bool
	// RemoveKey deletes key and reports whether it was present. The cursor
	// moves to the predecessor of key, or is cleared on a miss.
	RemoveKey(key K) bool
	// IsEmpty reports whether the map has no keys. It leaves the cursor
	// alone.
	IsEmpty() bool
	// Success reports the outcome of the most recent call.
	Success() bool
	// Len returns the number of keys.
	Len() int
	// Clone returns an independent copy whose cursor is on the same key.
	Clone() (IntValueMap[K], error)
	// Stats returns a Stats instance giving information about the map.
	Stats(debug bool) *Stats
	// Close releases the engine. Close may be called more than once.
	Close() error
}

// IntPair is an integer key and its value as of the call that returned it.
type IntPair[K Unsigned] struct {
	Key   K
	Value uint64
}

type intValueMap[K Unsigned] struct {
	vm   *valueMap
	kbuf []byte
}

// NewIntValueMap returns an empty IntValueMap using the options given;
// OptMaxKeyLen is ignored.
func NewIntValueMap[K Unsigned](opts ...func(*config)) (IntValueMap[K], error) {
	cfg := resolveConfig(opts...)
	vm, err := newValueMap(cfg, keyWidth[K](), 1)
	if err != nil {
		return nil, err
	}
	return &intValueMap[K]{vm: vm, kbuf: make([]byte, keyWidth[K]())}, nil
}

func (im *intValueMap[K]) key(k K) []byte {
	putKey(im.kbuf, k)
	return im.kbuf
}

func (im *intValueMap[K]) pair(p Pair, ok bool) (IntPair[K], bool) {
	if !ok {
		return IntPair[K]{}, false
	}
	return IntPair[K]{Key: getKey[K](p.Key), Value: p.Value}, true
}

func (im *intValueMap[K]) Insert(key K, value uint64) error {
	return im.vm.Insert(im.key(key), value)
}

func (im *intValueMap[K]) Find(key K) (uint64, bool) {
	return im.vm.Find(im.key(key))
}

func (im *intValueMap[K]) AtOrAfter(key K) (IntPair[K], bool) {
	return im.pair(im.vm.AtOrAfter(im.key(key)))
}

func (im *intValueMap[K]) Begin() (IntPair[K], bool) {
	return im.pair(im.vm.Begin())
}

func (im *intValueMap[K]) End() (IntPair[K], bool) {
	return im.pair(im.vm.End())
}

func (im *intValueMap[K]) Next() (IntPair[K], bool) {
	return im.pair(im.vm.Next())
}

func (im *intValueMap[K]) Previous() (IntPair[K], bool) {
	return im.pair(im.vm.Previous())
}

func (im *intValueMap[K]) LastValue() (uint64, bool) {
	return im.vm.LastValue()
}

func (im *intValueMap[K]) SetLastValue(value uint64) bool {
	return im.vm.SetLastValue(value)
}

func (im *intValueMap[K]) RemoveEntry() bool {
	return im.vm.RemoveEntry()
}

func (im *intValueMap[K]) RemoveKey(key K) bool {
	return im.vm.removeKey(im.key(key))
}

func (im *intValueMap[K]) IsEmpty() bool {
	return im.vm.Len() == 0
}

func (im *intValueMap[K]) Success() bool {
	return im.vm.Success()
}

func (im *intValueMap[K]) Len() int {
	return im.vm.Len()
}

func (im *intValueMap[K]) Clone() (IntValueMap[K], error) {
	vm, err := im.vm.clone()
	if err != nil {
		return nil, err
	}
	return &intValueMap[K]{vm: vm, kbuf: make([]byte, len(im.kbuf))}, nil
}

func (im *intValueMap[K]) Stats(debug bool) *Stats {
	s := im.vm.Stats(debug)
	s.kind = "intvaluemap"
	return s
}

func (im *intValueMap[K]) Close() error {
	return im.vm.Close()
}
