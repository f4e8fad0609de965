package triemap

import (
	"log/slog"

	"github.com/gholt/triemap/engine"
)

// OptList returns a slice with the opts given; useful if you want to possibly
// append more options to the list before using it with New*(list...).
func OptList(opts ...func(*config)) []func(*config) {
	return opts
}

// OptMaxKeyLen sets the longest key a ValueMap accepts. Integer keyed maps
// ignore this and use the width of their key type. Defaults to env
// TRIEMAP_MAXKEYLEN or 255.
func OptMaxKeyLen(n int) func(*config) {
	return func(cfg *config) {
		cfg.maxKeyLen = n
	}
}

// OptMaxCells caps the number of keys the engine will hold; inserts of new
// keys past the cap fail with engine.ErrExhausted. Defaults to env
// TRIEMAP_MAXCELLS or 0, meaning no cap.
func OptMaxCells(n int) func(*config) {
	return func(cfg *config) {
		cfg.maxCells = n
	}
}

// OptAuxChunkWords controls how many uint64s the engine reserves at a time
// for aux memory, which is where MultiMap keeps inline values. Defaults to
// env TRIEMAP_AUXCHUNKWORDS or engine.DefaultAuxChunkWords.
func OptAuxChunkWords(n int) func(*config) {
	return func(cfg *config) {
		cfg.auxChunkWords = n
	}
}

// OptHeapCells makes a MultiMap skip inline storage and give every key its
// own heap slice from the first value on. This costs more memory for small
// keys but returns all of it when keys are removed, whereas inline blocks
// live in aux memory until Close. Defaults to env TRIEMAP_HEAPCELLS or
// false.
func OptHeapCells(heap bool) func(*config) {
	return func(cfg *config) {
		cfg.heapCells = heap
	}
}

// OptValueOwner makes a MultiMap own its values: owner.Release is called for
// each value as it leaves the map through RemoveEntry, Clear, Close or an
// overwriting InsertAll. If owner is also a ValueDuplicator, clones get
// duplicated values; otherwise clones do not own theirs.
func OptValueOwner(owner ValueReleaser) func(*config) {
	return func(cfg *config) {
		cfg.owner = owner
	}
}

// OptLogger sets the logger used for lifecycle and failure events. Defaults
// to discarding everything.
func OptLogger(logger *slog.Logger) func(*config) {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// OptEngine replaces the default engine.Open with open, which is given the
// key length and depth the map needs.
func OptEngine(open func(maxKeyLen int, depth int) (engine.Engine, error)) func(*config) {
	return func(cfg *config) {
		cfg.openEngine = open
	}
}
