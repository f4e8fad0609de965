package triemap

import "unsafe"

// Unsigned is the set of integer types usable as IntValueMap and MultiMap
// keys.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func keyWidth[K Unsigned]() int {
	var k K
	return int(unsafe.Sizeof(k))
}

// putKey writes k big-endian into b, which must be keyWidth[K]() long.
func putKey[K Unsigned](b []byte, k K) {
	v := uint64(k)
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func getKey[K Unsigned](b []byte) K {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return K(v)
}
