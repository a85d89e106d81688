package loader

import (
	"github.com/go-gl/mathgl/mgl32"
)

// meshInstance is one placed mesh produced by flattening the scene graph: a
// mesh index paired with the world transform accumulated from the scene root
// down to the referencing node.
type meshInstance struct {
	meshIndex int
	world     mgl32.Mat4
}

// flattenScene walks the active scene's node hierarchy depth-first in
// preorder and collects one meshInstance per mesh reference, in traversal
// order. Each root starts with the identity world transform; a node's world
// transform is parentWorld * local, so the local transform applies to a
// vector first and ancestors compose outward. The walk is an explicit
// iterative stack rather than recursion: a node revisited on its own root
// path means the hierarchy is cyclic, which is reported as a structural
// error instead of recursing unboundedly.
func flattenScene(doc *document) ([]meshInstance, error) {
	if len(doc.Meshes) == 0 {
		return nil, errorf(ErrStructural, "document has no meshes")
	}
	if doc.Scene < 0 || doc.Scene >= len(doc.Scenes) {
		return nil, errorf(ErrStructural, "active scene %d cannot be resolved (%d scenes)", doc.Scene, len(doc.Scenes))
	}

	sceneEntry := doc.Scenes[doc.Scene]
	if len(sceneEntry.Nodes) == 0 {
		return nil, errorf(ErrStructural, "scene %d has no root nodes", doc.Scene)
	}

	var instances []meshInstance

	// Stack frames either enter a node (compute world, emit meshes, push
	// children) or leave it (drop it from the current root path). onPath
	// tracks exactly the ancestors of the frame being processed.
	type frame struct {
		node    int
		world   mgl32.Mat4
		leaving bool
	}

	for _, root := range sceneEntry.Nodes {
		onPath := make(map[int]bool)
		stack := []frame{{node: root, world: mgl32.Ident4()}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if top.leaving {
				delete(onPath, top.node)
				continue
			}
			if onPath[top.node] {
				return nil, errorf(ErrStructural, "node hierarchy cycle at node %d", top.node)
			}
			onPath[top.node] = true

			node := &doc.Nodes[top.node]
			world := top.world.Mul4(nodeLocalMatrix(node))

			for _, meshIdx := range node.Meshes {
				instances = append(instances, meshInstance{meshIndex: meshIdx, world: world})
			}

			stack = append(stack, frame{node: top.node, leaving: true})
			// Children pushed in reverse so they pop in document order.
			for i := len(node.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: node.Children[i], world: world})
			}
		}
	}

	return instances, nil
}

// nodeLocalMatrix builds a node's local transform. An explicit matrix takes
// precedence; otherwise translation, rotation, and scale compose as T*R*S so
// scale applies first, then rotation, then translation.
func nodeLocalMatrix(node *docNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return matrixFromRowMajor(*node.Matrix)
	}

	local := mgl32.Ident4()
	if node.Translation != nil {
		t := *node.Translation
		local = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if node.Rotation != nil {
		r := *node.Rotation
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		local = local.Mul4(q.Normalize().Mat4())
	}
	if node.Scale != nil {
		s := *node.Scale
		local = local.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return local
}

// matrixFromRowMajor converts a flat row-major 4x4 matrix into mgl32's
// column-major storage.
func matrixFromRowMajor(m [16]float32) mgl32.Mat4 {
	var out mgl32.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col*4+row] = m[row*4+col]
		}
	}
	return out
}
