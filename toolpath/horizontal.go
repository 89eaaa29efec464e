package toolpath

import "github.com/inkmachine/polarsketch/geom"

// horizontalLines emits one independent Line segment per pair, in row
// order: the simplest fill, with a pen-up travel between every stroke.
func horizontalLines(s *scaffold) []*geom.Path {
	var out []*geom.Path
	for _, r := range s.rows {
		for _, p := range r.pairs {
			out = append(out, geom.NewPath(&geom.Line{A: p.Left.Pt, B: p.Right.Pt}))
		}
	}
	return out
}
