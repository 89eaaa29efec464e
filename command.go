package polarsketch

import "github.com/inkmachine/polarsketch/geom"

// Command is one element of the lazy stream PathGenerator.Generate
// emits. Every PathPoint run is terminated by exactly one
// PathEndMarker; a CloseMarker precedes it iff the source path was
// closed; the whole stream ends with exactly one DrawingEndMarker.
type Command interface {
	isCommand()
}

// PathPoint is one sampled, scaled, and translated point along the
// path currently being flattened.
type PathPoint struct {
	Point geom.Point
}

// CloseMarker signals that the path just flattened was closed — the
// firmware consumer uses it to retrace back to the path's start.
type CloseMarker struct{}

// PathEndMarker closes out one path's run of PathPoint commands.
type PathEndMarker struct{}

// DrawingEndMarker is the final command of every stream.
type DrawingEndMarker struct{}

func (PathPoint) isCommand()        {}
func (CloseMarker) isCommand()      {}
func (PathEndMarker) isCommand()    {}
func (DrawingEndMarker) isCommand() {}
