package geometry

import "github.com/san-kum/orrery/internal/spatial"

// Engine is the registration side of a geometry engine. Handles are
// allocated append-only and are never reused.
type Engine interface {
	RegisterSource(name string) SourceID

	// RegisterFrame adds a frame under parent (WorldFrame for the source
	// root) with the given default pose X_PF.
	RegisterFrame(src SourceID, parent FrameID, name string, pose spatial.Transform[float64]) (FrameID, error)

	// RegisterGeometry attaches a geometry to a frame or to another
	// geometry. A geometry attached to a geometry rides with that
	// geometry's frame.
	RegisterGeometry(src SourceID, parent Parent, g GeometryInstance) (GeometryID, error)

	// RegisterAnchoredGeometry adds a geometry fixed to the world.
	RegisterAnchoredGeometry(src SourceID, g GeometryInstance) (GeometryID, error)
}

// FrameIDVector is the ordered set of frames a source drives.
type FrameIDVector struct {
	Source SourceID
	IDs    []FrameID
}

func NewFrameIDVector(src SourceID, ids []FrameID) FrameIDVector {
	v := FrameIDVector{Source: src, IDs: make([]FrameID, len(ids))}
	copy(v.IDs, ids)
	return v
}

func (v FrameIDVector) Len() int { return len(v.IDs) }

// FramePoseVector holds one pose per frame, in FrameIDVector order. Each
// pose is relative to the frame's parent.
type FramePoseVector[T any] struct {
	Source SourceID
	Poses  []spatial.Transform[T]
}

func (v FramePoseVector[T]) Len() int { return len(v.Poses) }
