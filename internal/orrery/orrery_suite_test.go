package orrery

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

func TestOrrerySuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orrery Suite")
}

var _ = Describe("Orrery", func() {
	var (
		scene *geometry.Scene
		o     *Orrery[float64]
	)

	BeforeEach(func() {
		scene = geometry.NewScene()
		var err error
		o, err = NewFloat64(scene, WithResourceDirs(testResources))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("registers one frame per body in body order", func() {
			Expect(o.BodyNames()).To(Equal([]string{"Earth", "Luna", "Mars", "Phobos"}))
			Expect(scene.NumFrames()).To(Equal(BodyCount))
			for i, b := range o.Bodies() {
				Expect(scene.FrameName(b.Frame)).To(Equal(b.Name), "body %d", i)
			}
		})

		It("parents each moon to its planet and each planet to the world", func() {
			parents := map[int]geometry.FrameID{
				Earth:  geometry.WorldFrame,
				Luna:   o.Body(Earth).Frame,
				Mars:   geometry.WorldFrame,
				Phobos: o.Body(Mars).Frame,
			}
			for i, want := range parents {
				got, ok := scene.FrameParent(o.Body(i).Frame)
				Expect(ok).To(BeTrue())
				Expect(got).To(Equal(want), o.Body(i).Name)
				Expect(o.Body(i).Parent).To(Equal(want))
			}
		})

		It("registers the sun, post, spheres, arms and rings", func() {
			// sun, post, 4 spheres, 2 arms of 2 cylinders, rings
			Expect(scene.NumGeometries()).To(Equal(11))

			var anchored, meshes int
			for _, g := range scene.GeometryPoses() {
				if g.Anchored {
					anchored++
				}
				if _, ok := g.Shape.(geometry.Mesh); ok {
					meshes++
					Expect(g.Mesh).NotTo(BeNil())
					Expect(g.Mesh.Vertices).NotTo(BeEmpty())
				}
			}
			Expect(anchored).To(Equal(2))
			Expect(meshes).To(Equal(1))
		})

		It("uses unit rotation axes", func() {
			for _, b := range o.Bodies() {
				Expect(r3.Norm(b.Axis)).To(BeNumerically("~", 1, 1e-15))
			}
		})
	})

	Describe("evaluation", func() {
		var (
			ids   geometry.FrameIDVector
			poses geometry.FramePoseVector[float64]
		)

		BeforeEach(func() {
			ids = o.AllocateFrameIDs()
			poses = o.AllocateFramePoses()
		})

		It("never changes the topology", func() {
			before := scene.NumFrames()
			for k := 0; k < 10; k++ {
				x := o.DefaultState()
				x[Earth] = float64(k)
				o.CalcFrameIDs(&ids)
				o.CalcFramePoses(x, &poses)
				Expect(scene.Apply(ids, poses)).To(Succeed())
			}
			Expect(scene.NumFrames()).To(Equal(before))
			Expect(ids.IDs).To(Equal(scene.Frames(o.Source())))
		})

		It("keeps Earth on its orbit radius", func() {
			x := o.DefaultState()
			for _, theta := range []float64{0, 1, 2.5, -4} {
				x[Earth] = theta
				o.CalcFramePoses(x, &poses)
				Expect(scene.Apply(ids, poses)).To(Succeed())

				// Luna's frame origin is Earth's centre.
				centre := spatial.ToR3(scene.WorldPoses()[o.Body(Luna).Frame].P)
				Expect(math.Hypot(centre.X, centre.Y)).To(BeNumerically("~", 3, 1e-12))
				Expect(centre.Z).To(BeNumerically("~", 0, 1e-12))
				Expect(math.Atan2(centre.Y, centre.X)).To(BeNumerically("~", math.Remainder(theta, 2*math.Pi), 1e-12))
			}
		})

		It("moves Phobos with Mars", func() {
			x := o.DefaultState()
			o.CalcFramePoses(x, &poses)
			Expect(scene.Apply(ids, poses)).To(Succeed())
			a := spatial.ToR3(scene.WorldPoses()[o.Body(Phobos).Frame].P)

			x[Phobos] += 1
			o.CalcFramePoses(x, &poses)
			Expect(scene.Apply(ids, poses)).To(Succeed())
			b := spatial.ToR3(scene.WorldPoses()[o.Body(Phobos).Frame].P)
			Expect(r3.Norm(r3.Sub(a, b))).To(BeNumerically("<", 1e-12))

			x[Mars] += 1
			o.CalcFramePoses(x, &poses)
			Expect(scene.Apply(ids, poses)).To(Succeed())
			c := spatial.ToR3(scene.WorldPoses()[o.Body(Phobos).Frame].P)
			Expect(r3.Norm(r3.Sub(a, c))).To(BeNumerically(">", 0.1))
		})
	})
})
