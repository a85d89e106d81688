package loader

import (
	"bytes"
	"encoding/json"
)

// normalizeDocument parses a UTF-8 JSON interchange document and canonicalizes
// it into an immutable index-addressed document. Each of the six addressable
// collections may arrive as an ordered array or as a name-to-value map; map
// form additionally yields a name-to-index table scoped to that collection,
// built in document key order so name resolution is deterministic. Every
// cross-reference field is resolved to an integer index here, exactly once;
// later stages never re-inspect addressing forms.
func normalizeDocument(data []byte) (*document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errorf(ErrFormat, "invalid document JSON: %v", err)
	}

	buffers, bufferNames, err := decodeCollection[rawBuffer](raw.Buffers, "buffers")
	if err != nil {
		return nil, err
	}
	views, viewNames, err := decodeCollection[rawBufferView](raw.BufferViews, "bufferViews")
	if err != nil {
		return nil, err
	}
	accessors, accessorNames, err := decodeCollection[rawAccessor](raw.Accessors, "accessors")
	if err != nil {
		return nil, err
	}
	meshes, meshNames, err := decodeCollection[rawMesh](raw.Meshes, "meshes")
	if err != nil {
		return nil, err
	}
	nodes, nodeNames, err := decodeCollection[rawNode](raw.Nodes, "nodes")
	if err != nil {
		return nil, err
	}
	scenes, sceneNames, err := decodeCollection[rawScene](raw.Scenes, "scenes")
	if err != nil {
		return nil, err
	}

	// The input contract requires non-empty buffers, bufferViews, and
	// accessors sections, and at least one mesh.
	switch {
	case len(buffers) == 0:
		return nil, errorf(ErrFormat, "document has no buffers section")
	case len(views) == 0:
		return nil, errorf(ErrFormat, "document has no bufferViews section")
	case len(accessors) == 0:
		return nil, errorf(ErrFormat, "document has no accessors section")
	case len(meshes) == 0:
		return nil, errorf(ErrFormat, "document has no meshes")
	}

	doc := &document{
		Buffers:     make([]docBuffer, len(buffers)),
		BufferViews: make([]docBufferView, len(views)),
		Accessors:   make([]docAccessor, len(accessors)),
		Meshes:      make([]docMesh, len(meshes)),
		Nodes:       make([]docNode, len(nodes)),
		Scenes:      make([]docScene, len(scenes)),
	}

	for i, b := range buffers {
		doc.Buffers[i] = docBuffer{URI: b.URI, ByteLength: b.ByteLength}
	}

	for i, v := range views {
		bufIdx, err := resolveRef(v.Buffer, bufferNames, len(buffers), "buffer")
		if err != nil {
			return nil, err
		}
		stride := 0
		if v.ByteStride != nil && *v.ByteStride > 0 {
			stride = *v.ByteStride
		}
		doc.BufferViews[i] = docBufferView{
			Buffer:     bufIdx,
			ByteOffset: v.ByteOffset,
			ByteLength: v.ByteLength,
			ByteStride: stride,
		}
	}

	for i, a := range accessors {
		viewIdx, err := resolveRef(a.BufferView, viewNames, len(views), "bufferView")
		if err != nil {
			return nil, err
		}
		doc.Accessors[i] = docAccessor{
			BufferView:    viewIdx,
			ByteOffset:    a.ByteOffset,
			ComponentType: a.ComponentType,
			Count:         a.Count,
			Type:          a.Type,
		}
	}

	for i, m := range meshes {
		prims := make([]docPrimitive, len(m.Primitives))
		for pi, p := range m.Primitives {
			attrs := make(map[string]int, len(p.Attributes))
			for semantic, accRef := range p.Attributes {
				accIdx, err := resolveRef(accRef, accessorNames, len(accessors), "accessor")
				if err != nil {
					return nil, err
				}
				attrs[semantic] = accIdx
			}
			indices := -1
			if p.Indices != nil {
				indices, err = resolveRef(*p.Indices, accessorNames, len(accessors), "accessor")
				if err != nil {
					return nil, err
				}
			}
			mode := docPrimitiveModeTriangles
			if p.Mode != nil {
				mode = *p.Mode
			}
			prims[pi] = docPrimitive{Attributes: attrs, Indices: indices, Mode: mode}
		}
		doc.Meshes[i] = docMesh{Primitives: prims}
	}

	for i, n := range nodes {
		var meshRefs []int
		if n.Mesh != nil {
			meshIdx, err := resolveRef(*n.Mesh, meshNames, len(meshes), "mesh")
			if err != nil {
				return nil, err
			}
			meshRefs = append(meshRefs, meshIdx)
		}
		for _, mr := range n.Meshes {
			meshIdx, err := resolveRef(mr, meshNames, len(meshes), "mesh")
			if err != nil {
				return nil, err
			}
			meshRefs = append(meshRefs, meshIdx)
		}
		children := make([]int, 0, len(n.Children))
		for _, cr := range n.Children {
			childIdx, err := resolveRef(cr, nodeNames, len(nodes), "node")
			if err != nil {
				return nil, err
			}
			children = append(children, childIdx)
		}
		doc.Nodes[i] = docNode{
			Meshes:      meshRefs,
			Children:    children,
			Matrix:      n.Matrix,
			Translation: n.Translation,
			Rotation:    n.Rotation,
			Scale:       n.Scale,
		}
	}

	for i, s := range scenes {
		roots := make([]int, 0, len(s.Nodes))
		for _, nr := range s.Nodes {
			nodeIdx, err := resolveRef(nr, nodeNames, len(nodes), "node")
			if err != nil {
				return nil, err
			}
			roots = append(roots, nodeIdx)
		}
		doc.Scenes[i] = docScene{Nodes: roots}
	}

	// The active scene defaults to index 0. A name resolves through the
	// scenes table; an integer passes through and is range-validated by the
	// flattener so an unresolved default scene surfaces as a structural error.
	if raw.Scene != nil {
		sc := *raw.Scene
		if sc.byName || sc.bad {
			sceneIdx, err := resolveRef(sc, sceneNames, len(scenes), "scene")
			if err != nil {
				return nil, err
			}
			doc.Scene = sceneIdx
		} else {
			doc.Scene = sc.index
		}
	}

	return doc, nil
}

// decodeCollection decodes one addressable collection from its raw JSON form.
// An array decodes positionally with no name table; an object decodes in key
// order, producing both the ordered sequence and the name-to-index table.
func decodeCollection[T any](raw json.RawMessage, label string) ([]T, map[string]int, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}

	switch firstByte(raw) {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil, errorf(ErrFormat, "invalid %s section: %v", label, err)
		}
		return items, nil, nil

	case '{':
		dec := json.NewDecoder(bytes.NewReader(raw))
		if _, err := dec.Token(); err != nil {
			return nil, nil, errorf(ErrFormat, "invalid %s section: %v", label, err)
		}
		var items []T
		names := make(map[string]int)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, nil, errorf(ErrFormat, "invalid %s section: %v", label, err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, nil, errorf(ErrFormat, "invalid %s section key", label)
			}
			var item T
			if err := dec.Decode(&item); err != nil {
				return nil, nil, errorf(ErrFormat, "invalid %s entry %q: %v", label, key, err)
			}
			names[key] = len(items)
			items = append(items, item)
		}
		return items, names, nil

	default:
		return nil, nil, errorf(ErrFormat, "%s section must be an array or an object", label)
	}
}

// resolveRef converts a name-or-index reference into a validated index into
// its target collection.
func resolveRef(r ref, names map[string]int, count int, what string) (int, error) {
	if r.bad {
		return 0, errorf(ErrReference, "%s reference %s is neither a name nor an index", what, r.raw)
	}
	idx := r.index
	if r.byName {
		resolved, ok := names[r.name]
		if !ok {
			return 0, errorf(ErrReference, "no %s named %q", what, r.name)
		}
		idx = resolved
	}
	if idx < 0 || idx >= count {
		return 0, errorf(ErrReference, "%s index %d out of range", what, idx)
	}
	return idx, nil
}

// firstByte returns the first non-whitespace byte of raw JSON, or 0.
func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
