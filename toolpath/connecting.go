package toolpath

import (
	"math"

	"github.com/inkmachine/polarsketch/geom"
)

// side marks which member of a pair a fill is following.
type side int

const (
	leftSide side = iota
	rightSide
)

// fill is one in-construction connected stroke: the segments built so
// far, the point they currently end at, and which (owner, parameter)
// on the original artwork the next row's intersection must be near to
// continue this fill rather than start a new one.
type fill struct {
	segs          []geom.Segment
	last          geom.Point
	followedOwner *geom.Path
	followedT     float64
	right         bool
}

func (f *fill) toPath() *geom.Path {
	return geom.NewPath(f.segs...)
}

// connectingLines stitches scan-row pairs into long strokes: each row,
// every open fill looks for the pair whose left or right member lies
// on the path it's following, closest to where it left off: a hit
// extends the fill across the gap and across the new row; a miss
// closes it out. Pairs nobody claims start new fills. zigzag controls
// whether the side a fresh fill follows alternates row to row
// (producing diagonal zig-zag connectors) or stays fixed (producing
// squared-off rect connectors).
func connectingLines(s *scaffold, zigzag bool) []*geom.Path {
	var open []*fill
	var done []*geom.Path
	tol := s.cfg.snapTolerance()

	for rowIdx, r := range s.rows {
		claims := claimPairs(open, r.pairs, tol)
		used := make([]bool, len(r.pairs))
		var stillOpen []*fill

		for _, f := range open {
			c, ok := claims[f]
			if !ok {
				done = append(done, f.toPath())
				continue
			}
			used[c.pairIdx] = true
			p := r.pairs[c.pairIdx]
			matched, other := p.Left, p.Right
			if c.side == rightSide {
				matched, other = p.Right, p.Left
			}
			f.segs = append(f.segs, &geom.Line{A: f.last, B: matched.Pt})
			f.segs = append(f.segs, &geom.Line{A: matched.Pt, B: other.Pt})
			f.last = other.Pt
			f.followedOwner = other.Owner
			f.followedT = other.T
			if zigzag {
				f.right = !f.right
			}
			stillOpen = append(stillOpen, f)
		}

		for pi, p := range r.pairs {
			if used[pi] {
				continue
			}
			stillOpen = append(stillOpen, newFill(p, zigzag, rowIdx))
		}
		open = stillOpen
	}

	for _, f := range open {
		done = append(done, f.toPath())
	}
	return done
}

func newFill(p pair, zigzag bool, rowIdx int) *fill {
	right := zigzag && rowIdx%2 == 1
	followed := p.Left
	if right {
		followed = p.Right
	}
	return &fill{
		segs:          []geom.Segment{&geom.Line{A: p.Left.Pt, B: p.Right.Pt}},
		last:          followed.Pt,
		followedOwner: followed.Owner,
		followedT:     followed.T,
		right:         right,
	}
}

// claim records which pair (and which of its members) a fill matched
// to, and how close that match was.
type claim struct {
	pairIdx int
	side    side
	dist    float64
}

// claimPairs finds each open fill's closest-matching pair member on
// the row (within tol, in path-parameter space), then resolves
// conflicts where more than one fill wants the same pair: the closer
// match wins and the rest fall back to unclaimed (their fill
// completes).
func claimPairs(open []*fill, pairs []pair, tol float64) map[*fill]claim {
	candidates := make(map[*fill]claim)

	for _, f := range open {
		best := claim{pairIdx: -1}
		for pi, p := range pairs {
			if p.Left.Owner == f.followedOwner {
				if d := wrapDist(f.followedT, p.Left.T); best.pairIdx == -1 || d < best.dist {
					best = claim{pairIdx: pi, side: leftSide, dist: d}
				}
			}
			if p.Right.Owner == f.followedOwner {
				if d := wrapDist(f.followedT, p.Right.T); best.pairIdx == -1 || d < best.dist {
					best = claim{pairIdx: pi, side: rightSide, dist: d}
				}
			}
		}
		if best.pairIdx >= 0 && best.dist <= tol {
			candidates[f] = best
		}
	}

	byPair := make(map[int][]*fill)
	for f, c := range candidates {
		byPair[c.pairIdx] = append(byPair[c.pairIdx], f)
	}
	for _, fs := range byPair {
		if len(fs) <= 1 {
			continue
		}
		winner := fs[0]
		for _, f := range fs[1:] {
			if candidates[f].dist < candidates[winner].dist {
				winner = f
			}
		}
		for _, f := range fs {
			if f != winner {
				delete(candidates, f)
			}
		}
	}
	return candidates
}

// wrapDist is the shorter of the two circular distances between two
// path parameters in [0,1), so following works the same whether the
// owning path winds forward or backward past the wrap point.
func wrapDist(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 1)
	if d > 0.5 {
		d = 1 - d
	}
	return d
}
