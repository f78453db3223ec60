// Package state holds the per-round, per-originator bookkeeping a node
// needs to run the broadcast protocol: proposed payloads, their digests,
// collected ECHO signatures, and the flags and counters that drive
// FIN/SUP transitions. Every grid is indexed [row][round] and extends
// lazily as new rounds are observed, mirroring the teacher's
// RWMutex-guarded slice store rather than a map keyed on arbitrary round
// numbers.
package state

import "sync"

// ByteGrid stores one byte slice per (row, round) cell — used for
// proposed payloads and their digests.
type ByteGrid struct {
	mu   sync.RWMutex
	rows [][][]byte
}

// NewByteGrid returns a grid with numRows rows, each initially empty.
func NewByteGrid(numRows int) *ByteGrid {
	return &ByteGrid{rows: make([][][]byte, numRows)}
}

// Set stores a copy of value at (row, round), extending the row if needed.
func (g *ByteGrid) Set(row, round uint32, value []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.growLocked(row, round)
	cp := make([]byte, len(value))
	copy(cp, value)
	g.rows[row][round] = cp
}

// Get returns the value at (row, round) and whether it has been set.
func (g *ByteGrid) Get(row, round uint32) ([]byte, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.inBoundsLocked(row, round) {
		return nil, false
	}
	v := g.rows[row][round]
	return v, v != nil
}

func (g *ByteGrid) growLocked(row, round uint32) {
	for uint32(len(g.rows[row])) <= round {
		g.rows[row] = append(g.rows[row], nil)
	}
}

func (g *ByteGrid) inBoundsLocked(row, round uint32) bool {
	return int(row) < len(g.rows) && round < uint32(len(g.rows[row]))
}

// BoolGrid stores one flag per (row, round) cell — used for
// SentEcho/SentFin/SentSup/Delivered.
type BoolGrid struct {
	mu   sync.Mutex
	rows [][]bool
}

// NewBoolGrid returns a grid with numRows rows, all cells initially false.
func NewBoolGrid(numRows int) *BoolGrid {
	return &BoolGrid{rows: make([][]bool, numRows)}
}

// Get returns the flag at (row, round); unset cells read false.
func (g *BoolGrid) Get(row, round uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(row) >= len(g.rows) || round >= uint32(len(g.rows[row])) {
		return false
	}
	return g.rows[row][round]
}

// Set writes the flag at (row, round).
func (g *BoolGrid) Set(row, round uint32, value bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.growLocked(row, round)
	g.rows[row][round] = value
}

// TestAndSet atomically reads the current flag, then sets it to true, and
// returns what it was before the set. Used to implement "act only the
// first time" guards like SentFin/SentSup without a race between the
// check and the set.
func (g *BoolGrid) TestAndSet(row, round uint32) (wasSet bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.growLocked(row, round)
	wasSet = g.rows[row][round]
	g.rows[row][round] = true
	return wasSet
}

func (g *BoolGrid) growLocked(row, round uint32) {
	for uint32(len(g.rows[row])) <= round {
		g.rows[row] = append(g.rows[row], false)
	}
}

// CountGrid stores one monotonically increasing counter per (row, round)
// cell — used for SupCount.
type CountGrid struct {
	mu   sync.Mutex
	rows [][]uint32
}

// NewCountGrid returns a grid with numRows rows, all counters initially 0.
func NewCountGrid(numRows int) *CountGrid {
	return &CountGrid{rows: make([][]uint32, numRows)}
}

// Increment adds one to the counter at (row, round) and returns the new value.
func (g *CountGrid) Increment(row, round uint32) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.growLocked(row, round)
	g.rows[row][round]++
	return g.rows[row][round]
}

// Get returns the counter at (row, round); unset cells read 0.
func (g *CountGrid) Get(row, round uint32) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(row) >= len(g.rows) || round >= uint32(len(g.rows[row])) {
		return 0
	}
	return g.rows[row][round]
}

func (g *CountGrid) growLocked(row, round uint32) {
	for uint32(len(g.rows[row])) <= round {
		g.rows[row] = append(g.rows[row], 0)
	}
}
