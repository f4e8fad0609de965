package triemap

import (
	"fmt"
	"unsafe"

	"gopkg.in/gholt/brimtext.v1"

	"github.com/gholt/triemap/engine"
)

type Stats struct {
	// Keys is the number of keys in the map.
	Keys uint64
	// Values is the number of values stored; for single value maps this is
	// the same as Keys.
	Values uint64
	// InlineCells is the number of MultiMap keys whose values are inline.
	InlineCells uint64
	// HeapCells is the number of MultiMap keys whose values are in a heap
	// slice.
	HeapCells uint64
	// HeapAllocs counts the heap slices a MultiMap has created.
	HeapAllocs uint64
	// HeapReleases counts the heap slices a MultiMap has released.
	HeapReleases uint64

	statsDebug     bool
	kind           string
	maxKeyLen      int
	depth          int
	inlineCapacity int
	heapCellsOpt   bool
	ownsValues     bool
	cellTable      uint64
	freeHandles    uint64
	spareBlocks    uint64
	cursorValid    bool
	engine         engine.Stats
}

func (s *Stats) String() string {
	report := [][]string{
		{"Keys", fmt.Sprintf("%d", s.Keys)},
		{"Values", fmt.Sprintf("%d", s.Values)},
	}
	if s.kind == "multimap" {
		report = append(report, [][]string{
			{"InlineCells", fmt.Sprintf("%d", s.InlineCells)},
			{"HeapCells", fmt.Sprintf("%d", s.HeapCells)},
			{"HeapAllocs", fmt.Sprintf("%d", s.HeapAllocs)},
			{"HeapReleases", fmt.Sprintf("%d", s.HeapReleases)},
		}...)
	}
	if s.statsDebug {
		report = append(report, [][]string{
			{"kind", s.kind},
			{"maxKeyLen", fmt.Sprintf("%d", s.maxKeyLen)},
			{"depth", fmt.Sprintf("%d", s.depth)},
			{"cursorValid", fmt.Sprintf("%t", s.cursorValid)},
			{"engineKeys", fmt.Sprintf("%d", s.engine.Keys)},
			{"auxChunks", fmt.Sprintf("%d", s.engine.AuxChunks)},
			{"auxWords", fmt.Sprintf("%d (%d bytes)", s.engine.AuxWords, s.engine.AuxWords*8)},
			{"auxUsed", fmt.Sprintf("%d %.1f%%", s.engine.AuxUsed, percent(s.engine.AuxUsed, s.engine.AuxWords))},
			{"engineClosed", fmt.Sprintf("%t", s.engine.Closed)},
		}...)
		if s.kind == "multimap" {
			report = append(report, [][]string{
				{"inlineCapacity", fmt.Sprintf("%d", s.inlineCapacity)},
				{"heapCellsOpt", fmt.Sprintf("%t", s.heapCellsOpt)},
				{"ownsValues", fmt.Sprintf("%t", s.ownsValues)},
				{"cellTable", fmt.Sprintf("%d (%d bytes)", s.cellTable, s.cellTable*uint64(unsafe.Sizeof(valueCell{})))},
				{"freeHandles", fmt.Sprintf("%d", s.freeHandles)},
				{"spareBlocks", fmt.Sprintf("%d", s.spareBlocks)},
			}...)
		}
	}
	return brimtext.Align(report, nil)
}

func percent(n uint64, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}
