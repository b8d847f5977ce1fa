package geometry

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/orrery/internal/spatial"
)

type sourceEntry struct {
	name   string
	frames []FrameID
}

type frameEntry struct {
	source SourceID
	parent FrameID
	name   string
	// X_PF, replaced by the last pose vector applied.
	pose spatial.Transform[float64]
}

type geometryEntry struct {
	id       GeometryID
	source   SourceID
	frame    FrameID
	anchored bool
	// X_FG, relative to the owning frame (or the world when anchored).
	pose  spatial.Transform[float64]
	shape Shape
	mesh  *MeshData
}

// Scene is an in-memory Engine. Frames must be registered parent first, so
// iterating in registration order always visits a parent before its
// children.
type Scene struct {
	logger *slog.Logger
	nextID int64

	sources    map[SourceID]*sourceEntry
	frames     map[FrameID]*frameEntry
	frameOrder []FrameID
	geometries map[GeometryID]*geometryEntry
	geomOrder  []GeometryID
}

type SceneOption func(*Scene)

func WithLogger(logger *slog.Logger) SceneOption {
	return func(s *Scene) {
		s.logger = logger
	}
}

func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{
		sources:    make(map[SourceID]*sourceEntry),
		frames:     make(map[FrameID]*frameEntry),
		geometries: make(map[GeometryID]*geometryEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

var _ Engine = (*Scene)(nil)

func (s *Scene) allocate() int64 {
	s.nextID++
	return s.nextID
}

func (s *Scene) RegisterSource(name string) SourceID {
	id := SourceID(s.allocate())
	s.sources[id] = &sourceEntry{name: name}
	s.logger.Debug("registered source", "source", id, "name", name)
	return id
}

func (s *Scene) source(src SourceID) (*sourceEntry, error) {
	entry, ok := s.sources[src]
	if !src.IsValid() || !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, src)
	}
	return entry, nil
}

func (s *Scene) RegisterFrame(src SourceID, parent FrameID, name string, pose spatial.Transform[float64]) (FrameID, error) {
	entry, err := s.source(src)
	if err != nil {
		return 0, err
	}
	if parent != WorldFrame {
		p, ok := s.frames[parent]
		if !ok {
			return 0, fmt.Errorf("%w: parent %v of frame %q", ErrUnknownFrame, parent, name)
		}
		if p.source != src {
			return 0, fmt.Errorf("%w: parent %v of frame %q", ErrNotOwned, parent, name)
		}
	}

	id := FrameID(s.allocate())
	s.frames[id] = &frameEntry{source: src, parent: parent, name: name, pose: pose}
	s.frameOrder = append(s.frameOrder, id)
	entry.frames = append(entry.frames, id)
	s.logger.Debug("registered frame", "source", src, "frame", id, "parent", parent, "name", name)
	return id, nil
}

func (s *Scene) RegisterGeometry(src SourceID, parent Parent, g GeometryInstance) (GeometryID, error) {
	if _, err := s.source(src); err != nil {
		return 0, err
	}

	var frame FrameID
	pose := g.Pose
	switch p := parent.(type) {
	case FrameID:
		f, ok := s.frames[p]
		if !ok {
			return 0, fmt.Errorf("%w: %v", ErrUnknownFrame, p)
		}
		if f.source != src {
			return 0, fmt.Errorf("%w: %v", ErrNotOwned, p)
		}
		frame = p
	case GeometryID:
		pg, ok := s.geometries[p]
		if !ok {
			return 0, fmt.Errorf("%w: %v", ErrUnknownGeometry, p)
		}
		if pg.source != src {
			return 0, fmt.Errorf("%w: %v", ErrNotOwned, p)
		}
		if pg.anchored {
			return s.register(src, WorldFrame, true, spatial.Compose(pg.pose, g.Pose), g)
		}
		frame = pg.frame
		pose = spatial.Compose(pg.pose, g.Pose)
	default:
		return 0, fmt.Errorf("%w: unsupported parent %T", ErrUnknownFrame, parent)
	}
	return s.register(src, frame, false, pose, g)
}

func (s *Scene) RegisterAnchoredGeometry(src SourceID, g GeometryInstance) (GeometryID, error) {
	if _, err := s.source(src); err != nil {
		return 0, err
	}
	return s.register(src, WorldFrame, true, g.Pose, g)
}

func (s *Scene) register(src SourceID, frame FrameID, anchored bool, pose spatial.Transform[float64], g GeometryInstance) (GeometryID, error) {
	entry := &geometryEntry{source: src, frame: frame, anchored: anchored, pose: pose, shape: g.Shape}

	switch sh := g.Shape.(type) {
	case Sphere:
		if sh.Radius <= 0 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidShape, sh)
		}
	case Cylinder:
		if sh.Radius <= 0 || sh.Length <= 0 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidShape, sh)
		}
	case Mesh:
		mesh, err := LoadOBJ(sh.Path, sh.Scale)
		if err != nil {
			return 0, err
		}
		entry.mesh = mesh
	case nil:
		return 0, fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}

	entry.id = GeometryID(s.allocate())
	s.geometries[entry.id] = entry
	s.geomOrder = append(s.geomOrder, entry.id)
	s.logger.Debug("registered geometry",
		"source", src, "geometry", entry.id, "frame", frame, "anchored", anchored, "shape", g.Shape.ShapeName())
	return entry.id, nil
}

// Apply replaces the current poses of the frames in ids.
func (s *Scene) Apply(ids FrameIDVector, poses FramePoseVector[float64]) error {
	if _, err := s.source(ids.Source); err != nil {
		return err
	}
	if poses.Source != ids.Source {
		return fmt.Errorf("%w: pose source %v, id source %v", ErrPoseMismatch, poses.Source, ids.Source)
	}
	if poses.Len() != ids.Len() {
		return fmt.Errorf("%w: %d poses for %d frames", ErrPoseMismatch, poses.Len(), ids.Len())
	}
	for _, id := range ids.IDs {
		f, ok := s.frames[id]
		if !ok {
			return fmt.Errorf("%w: %v", ErrUnknownFrame, id)
		}
		if f.source != ids.Source {
			return fmt.Errorf("%w: %v", ErrNotOwned, id)
		}
	}
	for i, id := range ids.IDs {
		s.frames[id].pose = poses.Poses[i]
	}
	return nil
}

// WorldPoses returns X_WF for every registered frame.
func (s *Scene) WorldPoses() map[FrameID]spatial.Transform[float64] {
	out := make(map[FrameID]spatial.Transform[float64], len(s.frameOrder)+1)
	out[WorldFrame] = spatial.Identity()
	for _, id := range s.frameOrder {
		f := s.frames[id]
		out[id] = spatial.Compose(out[f.parent], f.pose)
	}
	return out
}

// PlacedGeometry is a geometry at its current world pose.
type PlacedGeometry struct {
	ID       GeometryID
	Frame    FrameID
	Anchored bool
	Pose     spatial.Transform[float64]
	Shape    Shape
	Mesh     *MeshData
}

// GeometryPoses returns every geometry in registration order at its
// current world pose.
func (s *Scene) GeometryPoses() []PlacedGeometry {
	world := s.WorldPoses()
	out := make([]PlacedGeometry, 0, len(s.geomOrder))
	for _, id := range s.geomOrder {
		g := s.geometries[id]
		out = append(out, PlacedGeometry{
			ID:       id,
			Frame:    g.frame,
			Anchored: g.anchored,
			Pose:     spatial.Compose(world[g.frame], g.pose),
			Shape:    g.shape,
			Mesh:     g.mesh,
		})
	}
	return out
}

// Frames returns the frames registered by src in registration order.
func (s *Scene) Frames(src SourceID) []FrameID {
	entry, ok := s.sources[src]
	if !ok {
		return nil
	}
	out := make([]FrameID, len(entry.frames))
	copy(out, entry.frames)
	return out
}

func (s *Scene) FrameName(id FrameID) string {
	if f, ok := s.frames[id]; ok {
		return f.name
	}
	return ""
}

func (s *Scene) FrameParent(id FrameID) (FrameID, bool) {
	f, ok := s.frames[id]
	if !ok {
		return WorldFrame, false
	}
	return f.parent, true
}

func (s *Scene) NumGeometries() int { return len(s.geomOrder) }
func (s *Scene) NumFrames() int     { return len(s.frameOrder) }
