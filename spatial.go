package cad

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/chewxy/math32"
)

// cellKey packs a grid cell's (cx, cy) into one int64 map key.
type cellKey int64

func makeCellKey(cx, cy int32) cellKey {
	return cellKey(uint64(uint32(cx))<<32 | uint64(uint32(cy)))
}

// SpatialIndex buckets drawable entities into fixed-size world-space grid
// cells, each cell holding a compressed bitmap of candidate ids. Queries
// union the bitmaps of every cell a query rectangle overlaps, then the
// caller (Picker) narrows with an exact per-kind test. Rebuilt lazily:
// Engine calls Rebuild whenever Store's render-dirty bit is set and a
// query is about to run.
type SpatialIndex struct {
	cellSize   float32
	cells      map[cellKey]*roaring.Bitmap
	generation uint32 // Store.generation this index was built from
}

// NewSpatialIndex creates an index with the given grid cell size in world
// units. Smaller cells narrow candidates more but cost more cells per
// large entity; cellSize is a tuning knob, not a correctness parameter.
func NewSpatialIndex(cellSize float32) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 64
	}
	return &SpatialIndex{cellSize: cellSize, cells: make(map[cellKey]*roaring.Bitmap)}
}

func (ix *SpatialIndex) cellRange(b Rect) (x0, y0, x1, y1 int32) {
	x0 = int32(math32.Floor(b.X / ix.cellSize))
	y0 = int32(math32.Floor(b.Y / ix.cellSize))
	x1 = int32(math32.Floor((b.X + b.Width) / ix.cellSize))
	y1 = int32(math32.Floor((b.Y + b.Height) / ix.cellSize))
	return
}

// Rebuild recomputes every cell from scratch. Stale compared to
// store.generation is the caller's signal to call this before querying.
func (ix *SpatialIndex) Rebuild(s *Store) {
	for k := range ix.cells {
		delete(ix.cells, k)
	}
	for _, id := range s.DrawOrder() {
		b, ok := entityBounds(s, id)
		if !ok {
			continue
		}
		x0, y0, x1, y1 := ix.cellRange(b)
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				key := makeCellKey(cx, cy)
				bm, ok := ix.cells[key]
				if !ok {
					bm = roaring.New()
					ix.cells[key] = bm
				}
				bm.Add(uint32(id))
			}
		}
	}
	ix.generation = s.generation
}

// stale reports whether the index needs a Rebuild before it can answer
// Query against s.
func (ix *SpatialIndex) stale(s *Store) bool {
	return ix.generation != s.generation
}

// Query returns every candidate id whose cell overlaps area, deduplicated.
// Callers must still perform an exact geometric test; this is a coarse
// first pass only.
func (ix *SpatialIndex) Query(s *Store, area Rect) []EntityID {
	if ix.stale(s) {
		ix.Rebuild(s)
	}
	x0, y0, x1, y1 := ix.cellRange(area)
	union := roaring.New()
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if bm, ok := ix.cells[makeCellKey(cx, cy)]; ok {
				union.Or(bm)
			}
		}
	}
	out := make([]EntityID, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		out = append(out, EntityID(it.Next()))
	}
	return out
}
