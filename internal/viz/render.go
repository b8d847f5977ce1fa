package viz

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

// DrawScene rasterises every geometry at its world pose: spheres as
// outlines, cylinders as their axis segment and meshes as vertex clouds.
// Far geometries are drawn first.
func DrawScene(c *Canvas, cam *Camera, geoms []geometry.PlacedGeometry) {
	if c == nil || cam == nil {
		return
	}
	w, h := c.Dots()

	type item struct {
		g     geometry.PlacedGeometry
		depth float64
	}
	items := make([]item, 0, len(geoms))
	for _, g := range geoms {
		items = append(items, item{g: g, depth: cam.View(spatial.ToR3(g.Pose.P)).Z})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].depth < items[j].depth })

	for _, it := range items {
		drawGeometry(c, cam, it.g, w, h)
	}
}

func drawGeometry(c *Canvas, cam *Camera, g geometry.PlacedGeometry, w, h int) {
	centre := spatial.ToR3(g.Pose.P)

	switch s := g.Shape.(type) {
	case geometry.Sphere:
		x, y, _, ok := cam.Project(centre, w, h)
		if !ok {
			return
		}
		c.DrawCircle(x, y, cam.ProjectRadius(centre, s.Radius, w, h))

	case geometry.Cylinder:
		a := spatial.Apply(g.Pose, r3.Vec{Z: -s.Length / 2})
		b := spatial.Apply(g.Pose, r3.Vec{Z: s.Length / 2})
		x0, y0, _, ok0 := cam.Project(a, w, h)
		x1, y1, _, ok1 := cam.Project(b, w, h)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}

	case geometry.Mesh:
		if g.Mesh == nil {
			return
		}
		for _, v := range g.Mesh.Vertices {
			x, y, _, ok := cam.Project(spatial.Apply(g.Pose, v), w, h)
			if ok {
				c.Set(x, y)
			}
		}
	}
}
