// document_types.go contains the raw (as-parsed) and normalized document
// structures for the scene interchange format. Raw types tolerate the
// format's array-or-map collection addressing and name-or-index references;
// the normalized document carries only ordered sequences and integer indices.
package loader

import (
	"encoding/json"
	"strconv"
)

// --- Reference Handling ---

// ref is a cross-reference field that may arrive as an integer index or as a
// collection-entry name. Malformed references are recorded rather than
// rejected during JSON decoding so the normalizer can surface them as
// reference errors with collection context.
type ref struct {
	index  int
	name   string
	byName bool
	bad    bool
	raw    string
}

func (r *ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.name = s
		r.byName = true
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := strconv.Atoi(n.String()); err == nil {
			r.index = i
			return nil
		}
	}

	r.bad = true
	r.raw = string(data)
	return nil
}

// --- Raw Document (pre-normalization) ---

// rawDocument is the root of a parsed interchange document. The six
// addressable collections stay as raw JSON because each may be either an
// ordered array or a name-to-value map.
type rawDocument struct {
	// Buffers is the raw buffers collection (array or map).
	Buffers json.RawMessage `json:"buffers,omitempty"`

	// BufferViews is the raw bufferViews collection (array or map).
	BufferViews json.RawMessage `json:"bufferViews,omitempty"`

	// Accessors is the raw accessors collection (array or map).
	Accessors json.RawMessage `json:"accessors,omitempty"`

	// Meshes is the raw meshes collection (array or map).
	Meshes json.RawMessage `json:"meshes,omitempty"`

	// Nodes is the raw nodes collection (array or map).
	Nodes json.RawMessage `json:"nodes,omitempty"`

	// Scenes is the raw scenes collection (array or map).
	Scenes json.RawMessage `json:"scenes,omitempty"`

	// Scene selects the active scene by index or name. Defaults to index 0.
	Scene *ref `json:"scene,omitempty"`
}

// rawBuffer is a buffer entry before normalization.
type rawBuffer struct {
	// URI is either an embedded data URI or an external location string.
	URI string `json:"uri,omitempty"`

	// ByteLength is the declared length of the buffer.
	ByteLength int `json:"byteLength"`
}

// rawBufferView is a bufferView entry before normalization.
type rawBufferView struct {
	// Buffer references the parent buffer by index or name.
	Buffer ref `json:"buffer"`

	// ByteOffset is the offset into the buffer.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the view.
	ByteLength int `json:"byteLength"`

	// ByteStride is the optional explicit element stride for interleaved data.
	ByteStride *int `json:"byteStride,omitempty"`
}

// rawAccessor is an accessor entry before normalization.
type rawAccessor struct {
	// BufferView references the backing view by index or name.
	BufferView ref `json:"bufferView"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType is the scalar data type code.
	// 5123=UNSIGNED_SHORT, 5125=UNSIGNED_INT, 5126=FLOAT
	ComponentType int `json:"componentType"`

	// Count is the number of elements.
	Count int `json:"count"`

	// Type is the element shape (SCALAR, VEC2, VEC3, VEC4).
	Type string `json:"type"`
}

// rawPrimitive is a mesh primitive before normalization.
type rawPrimitive struct {
	// Attributes maps attribute semantics (POSITION, ...) to accessor refs.
	Attributes map[string]ref `json:"attributes"`

	// Indices optionally references the index accessor.
	Indices *ref `json:"indices,omitempty"`

	// Mode is the primitive topology. 4=TRIANGLES (default).
	Mode *int `json:"mode,omitempty"`
}

// rawMesh is a mesh entry before normalization.
type rawMesh struct {
	// Primitives defines the geometry of this mesh.
	Primitives []rawPrimitive `json:"primitives"`
}

// rawNode is a node entry before normalization.
type rawNode struct {
	// Mesh optionally references a single mesh.
	Mesh *ref `json:"mesh,omitempty"`

	// Meshes optionally references a list of meshes.
	Meshes []ref `json:"meshes,omitempty"`

	// Children references child nodes.
	Children []ref `json:"children,omitempty"`

	// Matrix is an explicit 4x4 local transform in row-major order.
	// When present it takes precedence over Translation/Rotation/Scale.
	Matrix *[16]float32 `json:"matrix,omitempty"`

	// Translation is the local translation (x, y, z).
	Translation *[3]float32 `json:"translation,omitempty"`

	// Rotation is the local rotation quaternion (x, y, z, w).
	Rotation *[4]float32 `json:"rotation,omitempty"`

	// Scale is the local scale (x, y, z).
	Scale *[3]float32 `json:"scale,omitempty"`
}

// rawScene is a scene entry before normalization.
type rawScene struct {
	// Nodes references the scene's root nodes.
	Nodes []ref `json:"nodes,omitempty"`
}

// --- Normalized Document ---

// document is the normalized, immutable aggregate built once per load. Every
// cross-reference is an integer index into its target sequence; no name
// strings remain. It is never mutated after normalizeDocument returns it.
type document struct {
	// Buffers is the ordered buffer sequence.
	Buffers []docBuffer

	// BufferViews is the ordered bufferView sequence.
	BufferViews []docBufferView

	// Accessors is the ordered accessor sequence.
	Accessors []docAccessor

	// Meshes is the ordered mesh sequence.
	Meshes []docMesh

	// Nodes is the ordered node sequence.
	Nodes []docNode

	// Scenes is the ordered scene sequence.
	Scenes []docScene

	// Scene is the active scene index (0 when unspecified).
	Scene int
}

// docBuffer is a normalized buffer entry.
type docBuffer struct {
	// URI is the embedded data URI or external location string.
	URI string

	// ByteLength is the declared buffer length.
	ByteLength int
}

// docBufferView is a normalized bufferView entry.
type docBufferView struct {
	// Buffer is the parent buffer index.
	Buffer int

	// ByteOffset is the offset into the buffer.
	ByteOffset int

	// ByteLength is the length of the view.
	ByteLength int

	// ByteStride is the explicit element stride, or 0 for tight packing.
	ByteStride int
}

// docAccessor is a normalized accessor entry.
type docAccessor struct {
	// BufferView is the backing view index.
	BufferView int

	// ByteOffset is the offset within the view.
	ByteOffset int

	// ComponentType is the scalar data type code.
	ComponentType int

	// Count is the number of elements.
	Count int

	// Type is the element shape tag.
	Type string
}

// docPrimitive is a normalized mesh primitive.
type docPrimitive struct {
	// Attributes maps attribute semantics to accessor indices.
	Attributes map[string]int

	// Indices is the index accessor, or -1 when the primitive is unindexed.
	Indices int

	// Mode is the primitive topology (defaulted to triangles when absent).
	Mode int
}

// docMesh is a normalized mesh entry.
type docMesh struct {
	// Primitives is the ordered primitive list.
	Primitives []docPrimitive
}

// docNode is a normalized node entry.
type docNode struct {
	// Meshes holds the node's mesh indices. A single "mesh" reference and a
	// "meshes" list normalize to the same representation.
	Meshes []int

	// Children holds child node indices.
	Children []int

	// Matrix is the explicit row-major local transform, when present.
	Matrix *[16]float32

	// Translation is the local translation, when present.
	Translation *[3]float32

	// Rotation is the local rotation quaternion (x, y, z, w), when present.
	Rotation *[4]float32

	// Scale is the local scale, when present.
	Scale *[3]float32
}

// docScene is a normalized scene entry.
type docScene struct {
	// Nodes holds the root node indices.
	Nodes []int
}

// Primitive mode constants
const (
	docPrimitiveModeTriangles = 4
)

// ComponentType constants
const (
	componentTypeUnsignedShort = 5123
	componentTypeUnsignedInt   = 5125
	componentTypeFloat         = 5126
)

// Shape tag constants
const (
	accessorTypeScalar = "SCALAR"
	accessorTypeVec2   = "VEC2"
	accessorTypeVec3   = "VEC3"
	accessorTypeVec4   = "VEC4"
)
