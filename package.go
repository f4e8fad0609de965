// Package triemap provides ordered associative arrays layered over an
// ordered trie engine (see the engine subpackage). Every map keeps exactly
// one engine, created by New* and released by Close.
//
// ValueMap maps byte-string keys to single non-zero uint64 values.
// IntValueMap does the same for fixed-width unsigned integer keys, which are
// stored big-endian so that traversal order is numeric order. MultiMap maps
// integer keys to an ordered sequence of uint64 values.
//
// All maps share one cursor protocol. Find, AtOrAfter, Begin, End, Next,
// Previous and Insert position the cursor; the remove calls move it to the
// predecessor of the removed key. Every call returns its own outcome and
// Success reports the outcome of the most recent call. Returned pairs are
// copies and stay valid after later calls, except MultiMap's Values views,
// which read the map's storage and are only valid until the next mutation.
//
// A MultiMap stores its first few values for a key inline, in a small
// block carved from the engine's aux memory, and promotes the key to an
// owned heap slice once the block is full. The promotion is one-way and
// invisible to readers. The inline block holds as many values as a slice
// header has words, so an inline key never costs more than a heap key's
// header would.
//
// None of the maps are safe for concurrent use; callers must hold their own
// lock across each call, or across a find-then-remove sequence.
package triemap
