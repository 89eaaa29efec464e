package pathsort

import "github.com/inkmachine/polarsketch/geom"

// closestStart picks the path whose start point minimizes distance to
// last, ties broken by first occurrence.
func closestStart(last geom.Point, remaining []geom.Curve, _ geom.Rect, _ Config) (geom.Curve, []geom.Curve) {
	best := -1
	var bestDist float64
	for i, p := range remaining {
		d := last.Dist(p.Point(0))
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return nil, remaining
	}
	return remaining[best], removeAt(remaining, best)
}

// closestEndpoint considers both endpoints of each candidate and picks
// whichever (path, endpoint) pair is nearest last. The winner is
// reversed in place iff its end (not its start) was the closer
// endpoint.
func closestEndpoint(last geom.Point, remaining []geom.Curve, _ geom.Rect, _ Config) (geom.Curve, []geom.Curve) {
	best := -1
	var bestDist float64
	var bestReversed bool
	for i, p := range remaining {
		dStart := last.Dist(p.Point(0))
		dEnd := last.Dist(p.Point(1))
		d, rev := dStart, false
		if dEnd < dStart {
			d, rev = dEnd, true
		}
		if best == -1 || d < bestDist {
			best, bestDist, bestReversed = i, d, rev
		}
	}
	if best == -1 {
		return nil, remaining
	}
	chosen := remaining[best]
	if bestReversed {
		chosen = chosen.Reversed()
	}
	return chosen, removeAt(remaining, best)
}

// closestOnClosed behaves like closestEndpoint for open paths. For
// closed paths it samples path.Point(t) at t = 0, step, 2*step, ...,
// 1 and picks the parameter t* minimizing distance to last, returning a
// geom.ClosedPath view with its start rotated to t*.
func closestOnClosed(last geom.Point, remaining []geom.Curve, canvas geom.Rect, cfg Config) (geom.Curve, []geom.Curve) {
	step := cfg.step()
	const tol = 1e-6

	best := -1
	var bestDist float64
	var bestCurve geom.Curve

	for i, p := range remaining {
		if !p.IsClosed(tol) {
			dStart := last.Dist(p.Point(0))
			dEnd := last.Dist(p.Point(1))
			d, rev := dStart, false
			if dEnd < dStart {
				d, rev = dEnd, true
			}
			cand := p
			if rev {
				cand = p.Reversed()
			}
			if best == -1 || d < bestDist {
				best, bestDist, bestCurve = i, d, cand
			}
			continue
		}

		tStar, dStar := sampleClosest(p, last, step)
		if best == -1 || dStar < bestDist {
			best, bestDist, bestCurve = i, dStar, geom.NewClosedPath(p, tStar)
		}
	}

	if best == -1 {
		return nil, remaining
	}
	return bestCurve, removeAt(remaining, best)
}

// sampleClosest samples p.Point(t) at t = 0, step, 2*step, ..., 1 and
// returns the parameter and distance of the closest sample to last.
func sampleClosest(p geom.Curve, last geom.Point, step float64) (float64, float64) {
	bestT, bestD := 0.0, last.Dist(p.Point(0))
	for t := step; t <= 1.0+1e-9; t += step {
		if t > 1 {
			t = 1
		}
		d := last.Dist(p.Point(t))
		if d < bestD {
			bestT, bestD = t, d
		}
		if t == 1 {
			break
		}
	}
	return bestT, bestD
}

func removeAt(paths []geom.Curve, idx int) []geom.Curve {
	out := make([]geom.Curve, 0, len(paths)-1)
	out = append(out, paths[:idx]...)
	out = append(out, paths[idx+1:]...)
	return out
}
