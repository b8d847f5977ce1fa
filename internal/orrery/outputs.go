package orrery

import (
	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

// AllocateFramePoses returns a pose vector in body order, filled with each
// body's fixed offset. CalcFramePoses only ever rewrites the rotations.
func (o *Orrery[T]) AllocateFramePoses() geometry.FramePoseVector[T] {
	demand(o.source.IsValid(), "source id not registered")
	poses := geometry.FramePoseVector[T]{
		Source: o.source,
		Poses:  make([]spatial.Transform[T], BodyCount),
	}
	for i, b := range o.bodies {
		demand(b.Frame.IsValid(), "body %d has no frame", i)
		poses.Poses[i] = spatial.Lift(o.ops, b.Offset)
	}
	return poses
}

// CalcFramePoses sets the rotation of every pose to the body's angle in x
// about its axis. Frames only revolve around their origin, so translations
// are left as allocated.
func (o *Orrery[T]) CalcFramePoses(x []T, poses *geometry.FramePoseVector[T]) {
	demand(len(x) >= BodyCount, "state has %d entries, want at least %d", len(x), BodyCount)
	demand(len(poses.Poses) == BodyCount, "pose vector has %d entries, want %d", len(poses.Poses), BodyCount)
	for i := range o.bodies {
		poses.Poses[i].R = spatial.AxisAngle(o.ops, x[i], o.bodies[i].Axis)
	}
}

// AllocateFrameIDs returns the frames this model drives, in body order.
func (o *Orrery[T]) AllocateFrameIDs() geometry.FrameIDVector {
	demand(o.source.IsValid(), "source id not registered")
	ids := make([]geometry.FrameID, BodyCount)
	for i, b := range o.bodies {
		demand(b.Frame.IsValid(), "body %d has no frame", i)
		ids[i] = b.Frame
	}
	return geometry.NewFrameIDVector(o.source, ids)
}

// CalcFrameIDs does nothing: frames are never added or removed after
// construction. A model with changing topology would report the diff here.
func (o *Orrery[T]) CalcFrameIDs(*geometry.FrameIDVector) {}
