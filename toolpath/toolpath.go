// Package toolpath computes infill: given a set of planar paths and a
// canvas, it produces a new set of paths tracing a family of parallel
// scan lines through the originals, either as independent horizontal
// strokes or stitched into long zig-zag/rect connected fills. A
// quadtree spatial index keeps the per-row intersection queries cheap
// on busy artwork.
package toolpath

import (
	"go.uber.org/zap"

	"github.com/inkmachine/polarsketch/geom"
	"github.com/inkmachine/polarsketch/quadtree"
)

// Algorithm selects which fill strategy Generate runs.
type Algorithm int

const (
	// None disables infill: Generate returns paths unchanged.
	None Algorithm = iota
	HorizontalLines
	ZigZag
	RectLines
)

// Config parametrizes a toolpath pass.
type Config struct {
	Algorithm Algorithm
	// LineStep is the spacing between consecutive scan lines, in world
	// units.
	LineStep float64
	// Angle is the scan-line family's rotation, in radians, applied to
	// the input paths about the canvas center before scanning (and left
	// applied — pathgen un-rotates by the same angle when it does its
	// own final rotation pass).
	Angle float64
	// SnapTolerance bounds how close (in path parameter space) a pair
	// member must be to a fill's followed parameter to count as a
	// continuation of that fill, rather than starting fresh. Default
	// 0.01, carried from the original implementation's
	// min_distance_to_connect.
	SnapTolerance float64
	// QuadTreeCapacity is the bucket size per quadtree node before it
	// splits. Default 20, the value used by the original index.
	QuadTreeCapacity int
	// MaxPerturbAttempts bounds how many times an odd-length
	// intersection row is nudged down by one unit before it's accepted
	// as-is, per the bounded-perturbation redesign (the original
	// implementation retried unconditionally, which can spin forever on
	// pathological input).
	MaxPerturbAttempts int
}

func (c Config) snapTolerance() float64 {
	if c.SnapTolerance > 0 {
		return c.SnapTolerance
	}
	return 0.01
}

func (c Config) quadTreeCapacity() int {
	if c.QuadTreeCapacity > 0 {
		return c.QuadTreeCapacity
	}
	return 20
}

func (c Config) maxPerturbAttempts() int {
	if c.MaxPerturbAttempts > 0 {
		return c.MaxPerturbAttempts
	}
	return 8
}

const (
	intersectTolerance = 1e-6
	perturbStep        = 1.0
)

// Generate runs the configured fill algorithm over paths within canvas,
// returning the generated toolpath. A nil logger is treated as a no-op
// logger.
func Generate(paths []*geom.Path, canvas geom.Rect, cfg Config, log *zap.SugaredLogger) []*geom.Path {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.Algorithm == None || len(paths) == 0 {
		return paths
	}

	scaffold := buildScaffold(paths, canvas, cfg, log)

	switch cfg.Algorithm {
	case HorizontalLines:
		return horizontalLines(scaffold)
	case ZigZag:
		return connectingLines(scaffold, true)
	case RectLines:
		return connectingLines(scaffold, false)
	default:
		return paths
	}
}

// scaffold holds the rotated geometry, spatial index, and per-row
// intersections shared by every fill algorithm.
type scaffold struct {
	cfg    Config
	canvas geom.Rect
	log    *zap.SugaredLogger
	rows   []row
}

// row is one scan line's sorted, paired intersections.
type row struct {
	y     float64
	pairs []pair
}

// member is one endpoint of a pair: the intersection point plus the
// provenance needed to track which owning path (and where on it) the
// in-construction fill is following.
type member struct {
	Pt     geom.Point
	Owner  *geom.Path
	T      float64
	SegIdx int
}

// pair is one "inside" interval of a scan row: a left (entering) and
// right (exiting) crossing of the filled region.
type pair struct {
	Left, Right member
}

func buildScaffold(paths []*geom.Path, canvas geom.Rect, cfg Config, log *zap.SugaredLogger) *scaffold {
	center := canvas.Center()
	rotated := make([]*geom.Path, len(paths))
	for i, p := range paths {
		rotated[i] = p.Rotated(cfg.Angle, center).(*geom.Path)
	}

	boundary := canvas
	for _, p := range rotated {
		boundary = boundary.Union(p.BBox())
	}
	boundary = boundary.Expand(canvas.Width() + canvas.Height() + 10)

	tree := quadtree.New(boundary, cfg.quadTreeCapacity(), log)
	for _, p := range rotated {
		tree.InsertPath(p)
	}

	h := canvas.Height()
	w := canvas.Width()
	xMin := canvas.Min.X - 2*w
	xMax := canvas.Max.X + 2*w
	yStart := canvas.Min.Y - 2*h
	yEnd := canvas.Max.Y + 2*h
	step := cfg.LineStep
	if step <= 0 {
		step = 1
	}

	var rows []row
	for y := yStart; y < yEnd; y += step {
		rows = append(rows, buildRow(tree, y, xMin, xMax, cfg, log))
	}

	return &scaffold{cfg: cfg, canvas: canvas, log: log, rows: rows}
}

// buildRow intersects the scan line at yy with the index, perturbing
// downward (bounded) until the hit count is even — every closed
// boundary must be crossed an even number of times.
func buildRow(tree *quadtree.Tree, yy, xMin, xMax float64, cfg Config, log *zap.SugaredLogger) row {
	y := yy
	var hits []quadtree.Intersection
	for attempt := 0; ; attempt++ {
		line := geom.NewPath(&geom.Line{A: geom.Point{X: xMin, Y: y}, B: geom.Point{X: xMax, Y: y}})
		hits = tree.Intersect(line, intersectTolerance)
		if len(hits)%2 == 0 || attempt >= cfg.maxPerturbAttempts() {
			if len(hits)%2 != 0 {
				log.Warnw("scan line has odd intersection count after max perturbation attempts", "y", yy)
			}
			break
		}
		y -= perturbStep
	}

	members := make([]member, len(hits))
	for i, h := range hits {
		members[i] = member{Pt: h.Point, Owner: h.Owner, T: h.TInPath, SegIdx: h.SegIdx}
	}
	sortMembersByX(members)

	n := len(members) - len(members)%2
	pairs := make([]pair, 0, n/2)
	for i := 0; i+1 < n; i += 2 {
		pairs = append(pairs, pair{Left: members[i], Right: members[i+1]})
	}
	return row{y: y, pairs: pairs}
}

func sortMembersByX(m []member) {
	for i := 1; i < len(m); i++ {
		for j := i; j > 0 && m[j].Pt.X < m[j-1].Pt.X; j-- {
			m[j], m[j-1] = m[j-1], m[j]
		}
	}
}
