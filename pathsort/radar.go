package pathsort

import (
	"math"

	"github.com/inkmachine/polarsketch/geom"
)

// radarScan tries each remaining path in original order, sweeping a
// disc centered at last through a full circle of growing radius for
// that path alone before ever considering the next one. The disc
// starts at radius cfg.radarStep() and grows by the same amount each
// round, stopping once it fully contains canvas. The first path whose
// bbox contains a sampled probe point, at any radius, wins. If no
// candidate is ever found (all paths lie outside the canvas, a
// pathological input) the first remaining path is returned so the
// sort still terminates.
func radarScan(last geom.Point, remaining []geom.Curve, canvas geom.Rect, cfg Config) (geom.Curve, []geom.Curve) {
	if len(remaining) == 0 {
		return nil, remaining
	}
	step := cfg.radarStep()
	sampleStep := cfg.step()
	maxRadius := maxCornerDist(last, canvas)

	for i, p := range remaining {
		bbox := p.BBox()
		for r := step; ; r += step {
			for t := 0.0; t < 1.0; t += sampleStep {
				angle := t * 2 * math.Pi
				probe := geom.Point{
					X: last.X + r*math.Cos(angle),
					Y: last.Y + r*math.Sin(angle),
				}
				if bbox.Contains(probe) {
					return p, removeAt(remaining, i)
				}
			}
			if r >= maxRadius {
				break
			}
		}
	}
	return remaining[0], removeAt(remaining, 0)
}

func maxCornerDist(p geom.Point, r geom.Rect) float64 {
	corners := []geom.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Min.X, Y: r.Max.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
	}
	var max float64
	for _, c := range corners {
		if d := p.Dist(c); d > max {
			max = d
		}
	}
	return max
}
