package sph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hash multipliers for cell coordinates.
const (
	hashPrimeX = 15823
	hashPrimeY = 9737333
)

// emptyCell marks a key with no particles in cellStart.
const emptyCell = -1

// cellOffsets is the 3×3 block of cells visited by a query.
var cellOffsets = [9][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// SpatialHash indexes particles by uniform-cell hash.
//
// After Build, keys is sorted ascending and indices holds the matching
// particle permutation. cellStart[k] is the first sorted position whose key
// is k, or emptyCell. The table has as many buckets as active particles.
type SpatialHash struct {
	cellSize  float64
	tableSize int
	positions []r2.Vec

	indices   []int
	keys      []int
	cellStart []int
}

// NewSpatialHash allocates an index able to hold capacity particles.
func NewSpatialHash(capacity int) *SpatialHash {
	return &SpatialHash{
		indices:   make([]int, 0, capacity),
		keys:      make([]int, 0, capacity),
		cellStart: make([]int, 0, capacity),
	}
}

// Build rebuilds the index over positions[:count].
// positions is retained and read by Query until the next Build.
func (s *SpatialHash) Build(positions []r2.Vec, count int, cellSize float64) {
	s.cellSize = cellSize
	s.tableSize = count
	s.positions = positions

	s.indices = s.indices[:count]
	s.keys = s.keys[:count]
	s.cellStart = s.cellStart[:count]

	for i := 0; i < count; i++ {
		s.indices[i] = i
		s.keys[i] = s.KeyOf(positions[i])
		s.cellStart[i] = emptyCell
	}

	sort.Sort(s)

	for i := 0; i < count; i++ {
		k := s.keys[i]
		if i == 0 || k != s.keys[i-1] {
			s.cellStart[k] = i
		}
	}
}

// Len is the number of indexed particles.
func (s *SpatialHash) Len() int { return len(s.keys) }

// Less orders entries by key.
func (s *SpatialHash) Less(i, j int) bool { return s.keys[i] < s.keys[j] }

// Swap exchanges two sorted entries.
func (s *SpatialHash) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
}

// Key returns the key of the i-th sorted entry.
func (s *SpatialHash) Key(i int) int { return s.keys[i] }

// Index returns the particle index of the i-th sorted entry.
func (s *SpatialHash) Index(i int) int { return s.indices[i] }

// Start returns the first sorted position with the given key, or -1.
func (s *SpatialHash) Start(key int) int {
	if key < 0 || key >= len(s.cellStart) {
		return emptyCell
	}
	return s.cellStart[key]
}

// KeyOf returns the hash key of the cell containing p.
func (s *SpatialHash) KeyOf(p r2.Vec) int {
	cx, cy := s.cell(p)
	return s.hashCell(cx, cy)
}

// Query calls fn for every indexed particle within √radiusSq of p.
// rel is the particle position relative to p. The cell size must be at least
// the query radius for the result to be complete.
func (s *SpatialHash) Query(p r2.Vec, radiusSq float64, fn func(rel r2.Vec, j int)) {
	if s.tableSize == 0 {
		return
	}
	cx, cy := s.cell(p)

	// Neighboring cells can collide on the same key; scan each key once.
	var seen [len(cellOffsets)]int
	nSeen := 0

next:
	for _, off := range cellOffsets {
		key := s.hashCell(cx+off[0], cy+off[1])
		for _, k := range seen[:nSeen] {
			if k == key {
				continue next
			}
		}
		seen[nSeen] = key
		nSeen++

		start := s.cellStart[key]
		if start == emptyCell {
			continue
		}
		for i := start; i < len(s.keys) && s.keys[i] == key; i++ {
			j := s.indices[i]
			rel := r2.Sub(s.positions[j], p)
			if r2.Dot(rel, rel) <= radiusSq {
				fn(rel, j)
			}
		}
	}
}

// cell returns the integer cell coordinates containing p.
func (s *SpatialHash) cell(p r2.Vec) (int, int) {
	return int(math.Floor(p.X / s.cellSize)), int(math.Floor(p.Y / s.cellSize))
}

// hashCell maps cell coordinates to [0, tableSize).
func (s *SpatialHash) hashCell(cx, cy int) int {
	h := int64(cx)*hashPrimeX + int64(cy)*hashPrimeY
	n := int64(s.tableSize)
	h %= n
	if h < 0 {
		h += n
	}
	return int(h)
}
