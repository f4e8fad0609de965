package engine

// DefaultAuxChunkWords is the number of uint64s per aux chunk (64 KiB).
const DefaultAuxChunkWords = 8192

// auxArena hands out zeroed []uint64 blocks carved from larger chunks.
// Nothing is returned to the runtime until free; the engine owns it.
type auxArena struct {
	chunkWords int
	maxWords   int
	chunks     [][]uint64
	current    []uint64
	offset     int
	reserved   int
	used       int
}

func newAuxArena(chunkWords int, maxWords int) *auxArena {
	if chunkWords <= 0 {
		chunkWords = DefaultAuxChunkWords
	}
	return &auxArena{chunkWords: chunkWords, maxWords: maxWords}
}

func (a *auxArena) alloc(words int) ([]uint64, error) {
	if words <= 0 {
		return nil, nil
	}
	if a.maxWords > 0 && a.used+words > a.maxWords {
		return nil, ErrExhausted
	}
	// Oversized requests get their own chunk so the current one keeps its
	// remaining space.
	if words > a.chunkWords {
		c := make([]uint64, words)
		a.chunks = append(a.chunks, c)
		a.reserved += words
		a.used += words
		return c[:words:words], nil
	}
	if a.current == nil || a.offset+words > len(a.current) {
		a.current = make([]uint64, a.chunkWords)
		a.chunks = append(a.chunks, a.current)
		a.reserved += a.chunkWords
		a.offset = 0
	}
	b := a.current[a.offset : a.offset+words : a.offset+words]
	a.offset += words
	a.used += words
	return b, nil
}

func (a *auxArena) free() {
	a.chunks = nil
	a.current = nil
	a.offset = 0
	a.reserved = 0
	a.used = 0
}
