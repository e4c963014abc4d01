package gear

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VerticesPerTooth is the number of points emitted for each tooth
const VerticesPerTooth = 4

// Mesh is the ring of tooth quads produced for one set of parameters.
// Each consecutive group of four points is one tooth: inner-left,
// outer-left, outer-right, inner-right.
type Mesh struct {
	Points []mgl32.Vec3
}

// FaceCount returns the number of quads in the mesh
func (m Mesh) FaceCount() int {
	return len(m.Points) / VerticesPerTooth
}

// FaceSizes returns the per-face vertex counts
func (m Mesh) FaceSizes() []int {
	sizes := make([]int, m.FaceCount())
	for i := range sizes {
		sizes[i] = VerticesPerTooth
	}
	return sizes
}

// Angles describes the angular layout shared by every tooth
type Angles struct {
	Pitch       float32 // angular width of one tooth sector
	InnerOffset float32 // half-angle of the root edge
	OuterOffset float32 // half-angle of the tip edge
}

// ComputeAngles derives the tooth layout from validated parameters.
// The tip half-angle is scaled by the radius ratio so teeth keep their
// proportions at both radii.
func ComputeAngles(p Parameters) Angles {
	pitch := 2 * float32(math.Pi) / float32(p.Teeth)
	return Angles{
		Pitch:       pitch,
		InnerOffset: pitch * (1 / (1 + p.Slope)) / 2,
		OuterOffset: pitch * (p.Slope / (1 + p.Slope)) / 2 * p.InnerRadius / p.OuterRadius,
	}
}

// BuildMesh computes the gear points for p. It is a pure function of p.
func BuildMesh(p Parameters) Mesh {
	a := ComputeAngles(p)

	points := make([]mgl32.Vec3, 0, p.Teeth*VerticesPerTooth)
	for v := 0; v < p.Teeth; v++ {
		axis := float32(v) * a.Pitch
		points = append(points,
			polar(axis-a.InnerOffset, p.InnerRadius),
			polar(axis-a.OuterOffset, p.OuterRadius),
			polar(axis+a.OuterOffset, p.OuterRadius),
			polar(axis+a.InnerOffset, p.InnerRadius),
		)
	}

	return Mesh{Points: points}
}

// polar places a point at angle theta from the +Y axis, turning towards -X
func polar(theta, r float32) mgl32.Vec3 {
	return mgl32.Vec3{
		-float32(math.Sin(float64(theta))) * r,
		float32(math.Cos(float64(theta))) * r,
		0,
	}
}
