package loader

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MergedMesh is the render-ready output of a load: one combined triangle
// list for the entire document. It is freshly allocated and keeps no
// reference to the source document or its buffers.
type MergedMesh struct {
	// Positions holds world-space vertex positions as flat x,y,z triples.
	Positions []float32

	// Indices holds triangle-list indices into Positions (by vertex, so each
	// index addresses one x,y,z triple). Every value lies in
	// [0, len(Positions)/3).
	Indices []uint32
}

// mergeMeshes decodes and concatenates every primitive of every flattened
// mesh instance, in instance order and primitive order, into one triangle
// list. Positions are transformed by the instance's world matrix; indices are
// shifted by the running vertex count, or synthesized sequentially for
// unindexed primitives. Any failure aborts the merge with nothing emitted.
func mergeMeshes(doc *document, buffers [][]byte, instances []meshInstance) (*MergedMesh, error) {
	decoder := newAccessorDecoder(doc, buffers)

	var positions []float32
	var indices []uint32
	var vertexBase uint32

	for _, inst := range instances {
		mesh := &doc.Meshes[inst.meshIndex]

		for primIdx := range mesh.Primitives {
			prim := &mesh.Primitives[primIdx]

			// Only triangle lists merge correctly; an unindexed strip or fan
			// would silently produce wrong geometry, so reject other modes.
			if prim.Mode != docPrimitiveModeTriangles {
				return nil, errorf(ErrFormat, "mesh %d primitive %d: unsupported primitive mode %d (only triangles supported)", inst.meshIndex, primIdx, prim.Mode)
			}

			posAccessor, ok := prim.Attributes["POSITION"]
			if !ok {
				return nil, errorf(ErrFormat, "mesh %d primitive %d has no POSITION attribute", inst.meshIndex, primIdx)
			}

			local, err := decoder.readPositionAccessor(posAccessor)
			if err != nil {
				return nil, err
			}
			vertexCount := len(local) / 3

			for i := 0; i+2 < len(local); i += 3 {
				p := mgl32.TransformCoordinate(mgl32.Vec3{local[i], local[i+1], local[i+2]}, inst.world)
				positions = append(positions, p.X(), p.Y(), p.Z())
			}

			if prim.Indices >= 0 {
				decoded, err := decoder.readIndexAccessor(prim.Indices)
				if err != nil {
					return nil, err
				}
				for _, v := range decoded {
					if v >= uint32(vertexCount) {
						return nil, errorf(ErrFormat, "mesh %d primitive %d: index %d out of range for %d vertices", inst.meshIndex, primIdx, v, vertexCount)
					}
					indices = append(indices, v+vertexBase)
				}
			} else {
				// Unindexed primitives are a flat triangle list: synthesize
				// the sequential run 0..N-1 offset by the running count.
				for i := 0; i < vertexCount; i++ {
					indices = append(indices, vertexBase+uint32(i))
				}
			}

			vertexBase += uint32(vertexCount)
		}
	}

	return &MergedMesh{Positions: positions, Indices: indices}, nil
}
