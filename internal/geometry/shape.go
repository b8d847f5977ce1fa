package geometry

import (
	"fmt"

	"github.com/san-kum/orrery/internal/spatial"
)

type Shape interface {
	ShapeName() string
}

type Sphere struct {
	Radius float64
}

// Cylinder is centred on its origin with its axis along local z.
type Cylinder struct {
	Radius float64
	Length float64
}

// Mesh is an externally loaded Wavefront OBJ file, uniformly scaled.
type Mesh struct {
	Path  string
	Scale float64
}

func (Sphere) ShapeName() string   { return "sphere" }
func (Cylinder) ShapeName() string { return "cylinder" }
func (Mesh) ShapeName() string     { return "mesh" }

func (s Sphere) String() string   { return fmt.Sprintf("sphere(r=%g)", s.Radius) }
func (c Cylinder) String() string { return fmt.Sprintf("cylinder(r=%g, l=%g)", c.Radius, c.Length) }
func (m Mesh) String() string     { return fmt.Sprintf("mesh(%s, scale=%g)", m.Path, m.Scale) }

// GeometryInstance is a shape placed relative to its parent.
type GeometryInstance struct {
	Name  string
	Pose  spatial.Transform[float64]
	Shape Shape
}

func NewGeometryInstance(pose spatial.Transform[float64], shape Shape) GeometryInstance {
	return GeometryInstance{Pose: pose, Shape: shape}
}
