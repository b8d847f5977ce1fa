package geometry

import "fmt"

// SourceID stamps every frame and geometry registered by one model.
type SourceID int64

// FrameID identifies a registered frame.
type FrameID int64

// GeometryID identifies a registered geometry.
type GeometryID int64

// WorldFrame is the root every source hangs its top-level frames from.
const WorldFrame FrameID = 0

func (id SourceID) IsValid() bool   { return id > 0 }
func (id FrameID) IsValid() bool    { return id > 0 }
func (id GeometryID) IsValid() bool { return id > 0 }

func (id SourceID) String() string   { return fmt.Sprintf("source:%d", int64(id)) }
func (id GeometryID) String() string { return fmt.Sprintf("geometry:%d", int64(id)) }

func (id FrameID) String() string {
	if id == WorldFrame {
		return "frame:world"
	}
	return fmt.Sprintf("frame:%d", int64(id))
}

// Parent is something a geometry can be attached to: a FrameID or a
// GeometryID.
type Parent interface {
	isParent()
}

func (FrameID) isParent()    {}
func (GeometryID) isParent() {}
