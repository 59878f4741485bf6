package table

// dragPhase is where a header drag currently is
type dragPhase int

const (
	dragIdle     dragPhase = iota
	dragPressed            // button down on a header, not moved yet
	dragDragging           // pointer (or keyboard target) left the source
)

// releaseKind is what a release turned out to be
type releaseKind int

const (
	releaseNone  releaseKind = iota // nothing was being dragged
	releaseClick                    // press and release on the same header
	releaseDrop                     // dropped onto another header
)

// dragState tracks a column drag from press to release. Only detail
// columns can be a source or a target; callers pass "" for anything else.
type dragState struct {
	phase  dragPhase
	source string
	hover  string
}

func (d dragState) active() bool { return d.phase != dragIdle }

// begin starts a drag from source. An empty source leaves the state idle.
func (d dragState) begin(source string) dragState {
	if source == "" {
		return dragState{}
	}
	return dragState{phase: dragPressed, source: source, hover: source}
}

// over records the header under the pointer. Leaving the source turns a
// press into a drag.
func (d dragState) over(target string) dragState {
	if !d.active() {
		return d
	}
	d.hover = target
	if target != d.source {
		d.phase = dragDragging
	}
	return d
}

// release ends the drag over target and reports what happened.
func (d dragState) release(target string) (dragState, releaseKind) {
	if !d.active() {
		return d, releaseNone
	}
	switch {
	case target != "" && target != d.source:
		return dragState{}, releaseDrop
	case target == d.source && d.phase == dragPressed:
		return dragState{}, releaseClick
	}
	return dragState{}, releaseNone
}

func (d dragState) cancel() dragState { return dragState{} }
