package triemap

import "iter"

// Values is a read-only view of the values stored for one MultiMap key, in
// insertion order. It reads the map's storage directly, so it is only valid
// until the map is next mutated; use Slice to keep a copy.
type Values struct {
	vals []uint64
}

// Len returns the number of values.
func (v Values) Len() int {
	return len(v.vals)
}

// At returns the i'th value; it panics if i is out of range.
func (v Values) At(i int) uint64 {
	return v.vals[i]
}

// Slice returns a copy of the values.
func (v Values) Slice() []uint64 {
	if len(v.vals) == 0 {
		return nil
	}
	s := make([]uint64, len(v.vals))
	copy(s, v.vals)
	return s
}

// All yields each index and value in order.
func (v Values) All() iter.Seq2[int, uint64] {
	return func(yield func(int, uint64) bool) {
		for i, x := range v.vals {
			if !yield(i, x) {
				return
			}
		}
	}
}
