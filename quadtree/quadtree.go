// Package quadtree implements the duplicating (R-tree-like) spatial
// index the toolpath generator uses to avoid testing every path segment
// against every scan line. It buckets segments by bounding box and
// answers two queries: "segments overlapping rectangle R" and "all
// intersections of the indexed segments against a collision path",
// carrying intersection provenance (owning segment, owning path,
// parameter in both) the way the original per-pass index did.
package quadtree

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch/geom"
)

// bboxExpansion is added on every side of a segment's bbox before it is
// tested against a node's boundary, so segments that just graze a node
// edge are still found.
const bboxExpansion = 5.0

// Entry pairs a segment with a non-owning back-reference to the path it
// belongs to, enough provenance to reconstruct (T_in_path, point) for
// any intersection found against it. The index borrows the path
// collection for the duration of one toolpath pass; it never copies
// path geometry.
type Entry struct {
	Seg    geom.Segment
	Owner  *geom.Path
	SegIdx int
}

// Intersection is one hit returned by Tree.Intersect, carrying full
// provenance: the segment and owning path it was found on, the
// parameter within that segment, and the parameter within the owning
// path as a whole.
type Intersection struct {
	Point      geom.Point
	Owner      *geom.Path
	SegIdx     int
	TInSegment float64
	TInPath    float64
}

// Tree is one node of the quadtree. A leaf holds at most Capacity
// entries; once it overflows, it splits into four children and every
// subsequent insert is pushed down to whichever children overlap —
// the entries already present at the moment of the split are never
// migrated, they simply keep living at this (now internal) node. That
// asymmetry is what makes this a duplicating index rather than a
// disjoint partition: the same entry can end up reachable from more
// than one child if its (expanded) bbox straddles their boundary.
type Tree struct {
	Boundary geom.Rect
	Capacity int

	entries        []Entry
	split          bool
	ne, nw, sw, se *Tree

	log *zap.SugaredLogger
}

// New builds an empty quadtree node covering boundary. A nil logger
// falls back to a no-op logger, matching the nil-safe convention used
// across polarsketch's concurrent packages.
func New(boundary geom.Rect, capacity int, log *zap.SugaredLogger) *Tree {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if capacity <= 0 {
		capacity = 20
	}
	return &Tree{Boundary: boundary, Capacity: capacity, log: log}
}

// InsertPath indexes every segment of path.
func (t *Tree) InsertPath(path *geom.Path) {
	for i, s := range path.Segments {
		t.InsertSegment(Entry{Seg: s, Owner: path, SegIdx: i})
	}
}

// InsertSegment indexes a single entry.
func (t *Tree) InsertSegment(e Entry) {
	bbox := e.Seg.BBox().Expand(bboxExpansion)
	if !t.Boundary.Overlaps(bbox) {
		return
	}
	if !t.split {
		if len(t.entries) < t.Capacity {
			t.entries = append(t.entries, e)
			return
		}
		t.splitNode()
	}
	for _, child := range t.children() {
		child.InsertSegment(e)
	}
}

func (t *Tree) splitNode() {
	ne, nw, sw, se := t.Boundary.Quadrant()
	t.ne = New(ne, t.Capacity, t.log)
	t.nw = New(nw, t.Capacity, t.log)
	t.sw = New(sw, t.Capacity, t.log)
	t.se = New(se, t.Capacity, t.log)
	t.split = true
}

func (t *Tree) children() []*Tree {
	if !t.split {
		return nil
	}
	return []*Tree{t.ne, t.nw, t.sw, t.se}
}

// entryKey identifies an Entry for deduplication purposes: the
// duplicating index may surface the same (owner, segment) pair through
// more than one child.
type entryKey struct {
	owner  *geom.Path
	segIdx int
}

// QueryArea returns every indexed entry whose (expanded) bbox could
// overlap rect: this node's own entries plus every overlapping child's
// result, deduplicated.
func (t *Tree) QueryArea(rect geom.Rect) []Entry {
	seen := make(map[entryKey]bool)
	var out []Entry
	t.queryArea(rect, seen, &out)
	return out
}

func (t *Tree) queryArea(rect geom.Rect, seen map[entryKey]bool, out *[]Entry) {
	for _, e := range t.entries {
		k := entryKey{e.Owner, e.SegIdx}
		if seen[k] {
			continue
		}
		seen[k] = true
		*out = append(*out, e)
	}
	if !t.split {
		return
	}
	for _, child := range t.children() {
		if child.Boundary.Overlaps(rect) {
			child.queryArea(rect, seen, out)
		}
	}
}

// Intersect finds every intersection of the indexed segments with
// collision (a path probing the index — in practice always a single
// horizontal scan line). For each segment of collision, candidates are
// narrowed down by bbox via QueryArea, then each candidate's owning path
// is asked to intersect just that one segment against the full
// collision path. A candidate whose geometry raises a numerical
// degeneracy (e.g. a cubic whose root solver hits an unrepresentable
// configuration) is logged and skipped — it must never abort the rest
// of the query.
func (t *Tree) Intersect(collision *geom.Path, tol float64) []Intersection {
	seen := make(map[entryKey]bool)
	var out []Intersection

	for _, collisionSeg := range collision.Segments {
		bbox := collisionSeg.BBox().Expand(bboxExpansion)
		for _, cand := range t.QueryArea(bbox) {
			k := entryKey{cand.Owner, cand.SegIdx}
			if seen[k] {
				continue
			}
			seen[k] = true

			hits, err := safeIntersectSegment(cand, collision, tol)
			if err != nil {
				t.log.Warnw("skipping degenerate segment intersection", "error", err, "segIdx", cand.SegIdx)
				continue
			}
			for _, h := range hits {
				out = append(out, Intersection{
					Point:      h.Point,
					Owner:      cand.Owner,
					SegIdx:     cand.SegIdx,
					TInSegment: h.TInSegSelf,
					TInPath:    cand.Owner.T2T(cand.SegIdx, h.TInSegSelf),
				})
			}
		}
	}
	return out
}

// safeIntersectSegment wraps geom's numeric root finding so a panic
// inside an ill-conditioned cubic solve becomes the logged-and-skipped
// error the index invariant promises, rather than crashing the whole
// toolpath pass.
func safeIntersectSegment(cand Entry, collision *geom.Path, tol float64) (hits []geom.PathIntersection, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("segment intersection panicked: %v", r)
		}
	}()
	hits = cand.Owner.IntersectSegment(cand.SegIdx, collision, tol)
	return hits, nil
}
