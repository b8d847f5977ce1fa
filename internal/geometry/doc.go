// Package geometry defines the geometry engine a kinematic model registers
// its frames and shapes with, and the output vectors the model produces for
// it.
//
// The engine owns the identifier namespace. A model obtains one [SourceID],
// registers frames (parent first) and geometries against it, and keeps the
// returned handles by value. At run time the model emits a [FrameIDVector]
// and a [FramePoseVector] in the same order; the engine turns them into
// world poses.
//
//   - [Engine]: the registration interface
//   - [Scene]: an in-memory Engine that also computes world poses, used by
//     tests and by the terminal renderer
//   - [Sphere], [Cylinder], [Mesh]: shape descriptors
//
// Scene is not safe for concurrent registration; register everything from
// one goroutine before sharing it.
package geometry
