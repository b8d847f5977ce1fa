package orrery

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

const (
	orreryBottom = -1.5
	pipeRadius   = 0.05
	postHeight   = 1.0

	earthBottom      = orreryBottom + 0.25
	earthOrbitRadius = 3.0
	earthRadius      = 0.25

	lunaOrbitRadius = 0.35
	lunaRadius      = 0.075

	marsOrbitRadius = 5.0
	marsRadius      = 0.24

	phobosOrbitRadius = 0.34
	phobosRadius      = 0.06
)

var (
	lunaNormal   = r3.Vec{X: 1, Y: 1, Z: 1}
	marsNormal   = r3.Vec{Y: 0.1, Z: 1}
	phobosNormal = r3.Vec{Z: -1}

	// In Luna's orbit plane: its dot product with lunaNormal is zero.
	lunaDirection = r3.Vec{X: -1, Y: 0.5, Z: 0.5}

	ringsAxis = r3.Vec{X: 1, Y: 1, Z: 1}
)

const ringsTilt = math.Pi / 3

type builder struct {
	engine geometry.Engine
	source geometry.SourceID
	rings  string
	logger *slog.Logger
	reg    registry
}

// build registers the sun, its post, both planets with their arms and
// both moons, parents before children, and returns the filled registry.
func (b *builder) build() (registry, error) {
	// The sun and the post it sits on never move; their ids are not kept.
	if _, err := b.engine.RegisterAnchoredGeometry(b.source,
		geometry.NewGeometryInstance(spatial.Identity(), geometry.Sphere{Radius: 1})); err != nil {
		return registry{}, fmt.Errorf("sun: %w", err)
	}
	post := spatial.Translation(r3.Vec{Z: orreryBottom + postHeight/2})
	if _, err := b.engine.RegisterAnchoredGeometry(b.source,
		geometry.NewGeometryInstance(post, geometry.Cylinder{Radius: pipeRadius, Length: postHeight})); err != nil {
		return registry{}, fmt.Errorf("post: %w", err)
	}

	if err := b.earthAndLuna(); err != nil {
		return registry{}, err
	}
	if err := b.marsAndPhobos(); err != nil {
		return registry{}, err
	}

	demand(b.reg.n == BodyCount, "registered %d bodies, want %d", b.reg.n, BodyCount)
	return b.reg, nil
}

func (b *builder) earthAndLuna() error {
	// Earth's frame sits directly below the sun to account for its arm.
	earthFrame := spatial.Translation(r3.Vec{Z: earthBottom})
	earth, err := b.frame(geometry.WorldFrame, "Earth", earthFrame, r3.Vec{Z: 1})
	if err != nil {
		return err
	}

	// The geometry is displaced from the frame so that it orbits.
	earthPose := spatial.Translation(r3.Vec{X: earthOrbitRadius, Z: -earthBottom})
	if _, err := b.engine.RegisterGeometry(b.source, earth,
		geometry.NewGeometryInstance(earthPose, geometry.Sphere{Radius: earthRadius})); err != nil {
		return fmt.Errorf("earth: %w", err)
	}
	if err := makeArm(b.engine, b.source, earth, earthOrbitRadius, -earthBottom, pipeRadius); err != nil {
		return fmt.Errorf("earth arm: %w", err)
	}

	// Luna's frame is centred on Earth's sphere.
	luna, err := b.frame(earth, "Luna", earthPose, lunaNormal)
	if err != nil {
		return err
	}
	lunaPose := spatial.Translation(r3.Scale(lunaOrbitRadius, r3.Unit(lunaDirection)))
	if _, err := b.engine.RegisterGeometry(b.source, luna,
		geometry.NewGeometryInstance(lunaPose, geometry.Sphere{Radius: lunaRadius})); err != nil {
		return fmt.Errorf("luna: %w", err)
	}
	return nil
}

func (b *builder) marsAndPhobos() error {
	marsFrame := spatial.Translation(r3.Vec{Z: orreryBottom})
	mars, err := b.frame(geometry.WorldFrame, "Mars", marsFrame, marsNormal)
	if err != nil {
		return err
	}

	marsPose := spatial.Translation(r3.Vec{X: marsOrbitRadius, Z: -orreryBottom})
	marsGeom, err := b.engine.RegisterGeometry(b.source, mars,
		geometry.NewGeometryInstance(marsPose, geometry.Sphere{Radius: marsRadius}))
	if err != nil {
		return fmt.Errorf("mars: %w", err)
	}

	// The rings hang off the sphere, not the frame, and are tilted once.
	ringsPose := spatial.Rotation(ringsTilt, ringsAxis)
	if _, err := b.engine.RegisterGeometry(b.source, marsGeom,
		geometry.NewGeometryInstance(ringsPose, geometry.Mesh{Path: b.rings, Scale: marsRadius})); err != nil {
		return fmt.Errorf("mars rings: %w", err)
	}
	if err := makeArm(b.engine, b.source, mars, marsOrbitRadius, -orreryBottom, pipeRadius); err != nil {
		return fmt.Errorf("mars arm: %w", err)
	}

	// Phobos's normal is negated so it revolves opposite to Mars.
	phobos, err := b.frame(mars, "Phobos", marsPose, phobosNormal)
	if err != nil {
		return err
	}
	phobosPose := spatial.Translation(r3.Vec{X: phobosOrbitRadius})
	if _, err := b.engine.RegisterGeometry(b.source, phobos,
		geometry.NewGeometryInstance(phobosPose, geometry.Sphere{Radius: phobosRadius})); err != nil {
		return fmt.Errorf("phobos: %w", err)
	}
	return nil
}

// frame registers a moving frame and appends it to the registry.
func (b *builder) frame(parent geometry.FrameID, name string, offset spatial.Transform[float64], normal r3.Vec) (geometry.FrameID, error) {
	id, err := b.engine.RegisterFrame(b.source, parent, name, offset)
	if err != nil {
		return 0, fmt.Errorf("frame %s: %w", name, err)
	}
	axis := r3.Unit(normal)
	b.reg.add(Body{Name: name, Frame: id, Parent: parent, Offset: offset, Axis: axis})
	b.logger.Debug("registered body", "name", name, "frame", id, "parent", parent, "axis", axis)
	return id, nil
}

// makeArm registers an L-shaped arm on parent:
//
//	                      ◯          ← z = height
//	x = 0                 │
//	↓                     │ height
//	──────────────────────┘          ← z = 0
//	                      ↑
//	                      x = length
//
// The horizontal segment runs along x from the origin, the vertical one
// along z at x = length.
func makeArm(engine geometry.Engine, src geometry.SourceID, parent geometry.FrameID, length, height, radius float64) error {
	arm := spatial.Pose(math.Pi/2, r3.Vec{Y: 1}, r3.Vec{X: length / 2})
	if _, err := engine.RegisterGeometry(src, parent,
		geometry.NewGeometryInstance(arm, geometry.Cylinder{Radius: radius, Length: length})); err != nil {
		return err
	}

	post := spatial.Translation(r3.Vec{X: length, Z: height / 2})
	_, err := engine.RegisterGeometry(src, parent,
		geometry.NewGeometryInstance(post, geometry.Cylinder{Radius: radius, Length: height}))
	return err
}
