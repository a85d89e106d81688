package loader

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dataURI wraps raw bytes in an embedded base64 data URI.
func dataURI(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}

// triangleDocument builds a complete single-triangle document: three vec3
// positions and a uint16 index accessor, both packed into one embedded
// buffer, referenced by one mesh on one root node.
func triangleDocument(nodeExtra string) string {
	payload := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	payload = append(payload, uint16Bytes(0, 1, 2)...)
	payload = append(payload, 0, 0) // pad index range to 4-byte multiple

	extra := nodeExtra
	if extra != "" {
		extra = ", " + extra
	}
	return fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"nodes": [{"mesh": 0%s}],
		"scenes": [{"nodes": [0]}]
	}`, dataURI(payload), len(payload), extra)
}

func TestLoadSingleTriangle(t *testing.T) {
	mesh, err := NewLoader().LoadDocument([]byte(triangleDocument("")))
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, mesh.Positions)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestLoadAppliesNodeTranslation(t *testing.T) {
	mesh, err := NewLoader().LoadDocument([]byte(triangleDocument(`"translation": [5, 0, 0]`)))
	require.NoError(t, err)

	require.Len(t, mesh.Positions, 9)
	assert.InDelta(t, float32(5), mesh.Positions[0], 1e-5)
	assert.InDelta(t, float32(6), mesh.Positions[3], 1e-5)
	assert.InDelta(t, float32(5), mesh.Positions[6], 1e-5)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestLoadOffsetsIndicesAcrossPrimitives(t *testing.T) {
	// First primitive: 3 vertices indexed 0,1,2. Second: 4 vertices with two
	// triangles 0,1,2 and 0,2,3. Merged, the second's indices shift by 3.
	payload := float32Bytes(
		0, 0, 0, 1, 0, 0, 0, 1, 0, // primitive 0
		2, 0, 0, 3, 0, 0, 3, 1, 0, 2, 1, 0, // primitive 1
	)
	payload = append(payload, uint16Bytes(0, 1, 2)...)
	payload = append(payload, uint16Bytes(0, 1, 2, 0, 2, 3)...)

	doc := fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 48},
			{"buffer": 0, "byteOffset": 84, "byteLength": 6},
			{"buffer": 0, "byteOffset": 90, "byteLength": 12}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5126, "count": 4, "type": "VEC3"},
			{"bufferView": 2, "componentType": 5123, "count": 3, "type": "SCALAR"},
			{"bufferView": 3, "componentType": 5123, "count": 6, "type": "SCALAR"}
		],
		"meshes": [{"primitives": [
			{"attributes": {"POSITION": 0}, "indices": 2},
			{"attributes": {"POSITION": 1}, "indices": 3}
		]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, dataURI(payload), len(payload))

	mesh, err := NewLoader().LoadDocument([]byte(doc))
	require.NoError(t, err)

	assert.Len(t, mesh.Positions, 21)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 3, 5, 6}, mesh.Indices)
}

func TestLoadSynthesizesIndicesForUnindexedPrimitive(t *testing.T) {
	payload := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)

	doc := fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": 36}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, dataURI(payload), len(payload))

	mesh, err := NewLoader().LoadDocument([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestLoadRejectsMissingPosition(t *testing.T) {
	payload := uint16Bytes(0, 1, 2)

	doc := fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": 6}],
		"accessors": [{"bufferView": 0, "componentType": 5123, "count": 3, "type": "SCALAR"}],
		"meshes": [{"primitives": [{"attributes": {}, "indices": 0}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, dataURI(payload), len(payload))

	mesh, err := NewLoader().LoadDocument([]byte(doc))
	require.ErrorIs(t, err, ErrFormat)
	assert.Nil(t, mesh)
}

func TestLoadRejectsIndexBeyondVertexCount(t *testing.T) {
	// Three vertices but the index accessor names vertex 7.
	payload := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	payload = append(payload, uint16Bytes(0, 1, 7)...)

	doc := fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, dataURI(payload), len(payload))

	mesh, err := NewLoader().LoadDocument([]byte(doc))
	require.ErrorIs(t, err, ErrFormat)
	assert.Nil(t, mesh)
}

func TestLoadRejectsNonTriangleMode(t *testing.T) {
	payload := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)

	doc := fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": 36}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "mode": 5}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, dataURI(payload), len(payload))

	_, err := NewLoader().LoadDocument([]byte(doc))
	require.ErrorIs(t, err, ErrFormat)
}

func TestLoadNamedAndPositionalDocumentsAgree(t *testing.T) {
	payload := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	uri := dataURI(payload)

	positional := fmt.Sprintf(`{
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": 36}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, uri, len(payload))

	named := fmt.Sprintf(`{
		"buffers": {"geometry": {"uri": %q, "byteLength": %d}},
		"bufferViews": {"positions": {"buffer": "geometry", "byteLength": 36}},
		"accessors": {"pos": {"bufferView": "positions", "componentType": 5126, "count": 3, "type": "VEC3"}},
		"meshes": {"tri": {"primitives": [{"attributes": {"POSITION": "pos"}}]}},
		"nodes": {"root": {"mesh": "tri"}},
		"scenes": {"main": {"nodes": ["root"]}},
		"scene": "main"
	}`, uri, len(payload))

	l := NewLoader()
	fromPositional, err := l.LoadDocument([]byte(positional))
	require.NoError(t, err)
	fromNamed, err := l.LoadDocument([]byte(named))
	require.NoError(t, err)

	assert.Equal(t, fromPositional, fromNamed)
}

func TestLoadFetchesExternalBuffer(t *testing.T) {
	payload := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)

	doc := fmt.Sprintf(`{
		"buffers": [{"uri": "geometry.bin", "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": 36}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"nodes": [{"mesh": 0}],
		"scenes": [{"nodes": [0]}]
	}`, len(payload))

	var fetched []string
	l := NewLoader(
		WithBaseLocation("https://assets.example.com/models/scene.json"),
		WithFetcher(func(location string) ([]byte, error) {
			fetched = append(fetched, location)
			return payload, nil
		}),
	)

	mesh, err := l.LoadDocument([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://assets.example.com/models/geometry.bin"}, fetched)
	assert.Len(t, mesh.Positions, 9)
}

func TestLoadReaderMatchesLoadDocument(t *testing.T) {
	doc := triangleDocument("")
	l := NewLoader()

	fromBytes, err := l.LoadDocument([]byte(doc))
	require.NoError(t, err)
	fromReader, err := l.LoadReader(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, fromBytes, fromReader)
}

func TestLoadedIndicesStayInVertexRange(t *testing.T) {
	mesh, err := NewLoader().LoadDocument([]byte(triangleDocument("")))
	require.NoError(t, err)

	vertexCount := uint32(len(mesh.Positions) / 3)
	for _, idx := range mesh.Indices {
		assert.Less(t, idx, vertexCount)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	mesh, err := NewLoader().LoadDocument([]byte(`{"buffers": [`))
	require.ErrorIs(t, err, ErrFormat)
	assert.Nil(t, mesh)
}
