package triemap

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by inserts into a map that has been closed.
var ErrClosed = errors.New("triemap: closed")

// ValueReleaser is told about every value a MultiMap drops when the map owns
// its values; see OptValueOwner.
type ValueReleaser interface {
	Release(value uint64)
}

// ValueDuplicator may additionally be implemented by a ValueReleaser so
// that cloned maps can own copies of the values.
type ValueDuplicator interface {
	Duplicate(value uint64) uint64
}

// ReleaseFunc adapts a function to ValueReleaser.
type ReleaseFunc func(value uint64)

func (f ReleaseFunc) Release(value uint64) {
	f(value)
}

func precondition(ok bool, format string, args ...any) {
	if !ok {
		panic("triemap: " + fmt.Sprintf(format, args...))
	}
}
