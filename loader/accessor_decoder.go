package loader

import (
	"bytes"
	"encoding/binary"
)

// accessorDecoder converts accessor byte ranges into freshly allocated typed
// sequences. Decoding is always stride-aware: the effective element stride may
// exceed the tight per-element size for interleaved data, so source bytes are
// never reinterpreted in place. All scalar layouts are little-endian.
type accessorDecoder struct {
	doc     *document
	buffers [][]byte
}

// newAccessorDecoder creates a decoder over a normalized document and its
// resolved, index-aligned byte buffers.
func newAccessorDecoder(doc *document, buffers [][]byte) *accessorDecoder {
	return &accessorDecoder{doc: doc, buffers: buffers}
}

// readAccessorData reads an accessor's elements into a tightly packed byte
// slice, honoring the bufferView's explicit stride when present. The result
// holds exactly count*elementSize bytes and shares no memory with the source.
func (d *accessorDecoder) readAccessorData(accessorIndex int) ([]byte, error) {
	if accessorIndex < 0 || accessorIndex >= len(d.doc.Accessors) {
		return nil, errorf(ErrReference, "accessor index %d out of range", accessorIndex)
	}
	acc := &d.doc.Accessors[accessorIndex]

	componentSize := componentTypeSize(acc.ComponentType)
	if componentSize == 0 {
		return nil, errorf(ErrFormat, "accessor %d has unsupported component type %d", accessorIndex, acc.ComponentType)
	}
	componentCount := accessorTypeComponentCount(acc.Type)
	if componentCount == 0 {
		return nil, errorf(ErrFormat, "accessor %d has unsupported shape %q", accessorIndex, acc.Type)
	}
	if acc.Type == accessorTypeVec3 && acc.ComponentType != componentTypeFloat {
		return nil, errorf(ErrFormat, "accessor %d: vec3 data must use the float component type, got %d", accessorIndex, acc.ComponentType)
	}
	if acc.Count < 0 {
		return nil, errorf(ErrFormat, "accessor %d has negative count %d", accessorIndex, acc.Count)
	}

	view := &d.doc.BufferViews[acc.BufferView]
	buf := d.buffers[view.Buffer]

	elementSize := componentSize * componentCount
	stride := elementSize
	if view.ByteStride > 0 {
		stride = view.ByteStride
	}

	start := view.ByteOffset + acc.ByteOffset
	viewEnd := view.ByteOffset + view.ByteLength
	if viewEnd > len(buf) {
		viewEnd = len(buf)
	}
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + elementSize
		if start < view.ByteOffset || end > viewEnd {
			return nil, errorf(ErrFormat, "accessor %d spans [%d:%d) beyond its bufferView of %d bytes", accessorIndex, start, end, view.ByteLength)
		}
	}

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		srcOffset := start + i*stride
		dstOffset := i * elementSize
		copy(result[dstOffset:dstOffset+elementSize], buf[srcOffset:srcOffset+elementSize])
	}

	return result, nil
}

// readFloatAccessor decodes a float-component accessor of any shape into a
// flat float32 sequence of length count*components.
func (d *accessorDecoder) readFloatAccessor(accessorIndex int) ([]float32, error) {
	data, err := d.readAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	acc := &d.doc.Accessors[accessorIndex]
	if acc.ComponentType != componentTypeFloat {
		return nil, errorf(ErrFormat, "accessor %d is not float data: componentType=%d", accessorIndex, acc.ComponentType)
	}

	result := make([]float32, acc.Count*accessorTypeComponentCount(acc.Type))
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &result); err != nil {
		return nil, errorf(ErrFormat, "accessor %d: %v", accessorIndex, err)
	}

	return result, nil
}

// readUnsignedShortAccessor decodes an unsigned-short accessor into a flat
// uint16 sequence of length count*components.
func (d *accessorDecoder) readUnsignedShortAccessor(accessorIndex int) ([]uint16, error) {
	data, err := d.readAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	acc := &d.doc.Accessors[accessorIndex]
	if acc.ComponentType != componentTypeUnsignedShort {
		return nil, errorf(ErrFormat, "accessor %d is not unsigned-short data: componentType=%d", accessorIndex, acc.ComponentType)
	}

	result := make([]uint16, acc.Count*accessorTypeComponentCount(acc.Type))
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &result); err != nil {
		return nil, errorf(ErrFormat, "accessor %d: %v", accessorIndex, err)
	}

	return result, nil
}

// readUnsignedIntAccessor decodes an unsigned-int accessor into a flat uint32
// sequence of length count*components.
func (d *accessorDecoder) readUnsignedIntAccessor(accessorIndex int) ([]uint32, error) {
	data, err := d.readAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	acc := &d.doc.Accessors[accessorIndex]
	if acc.ComponentType != componentTypeUnsignedInt {
		return nil, errorf(ErrFormat, "accessor %d is not unsigned-int data: componentType=%d", accessorIndex, acc.ComponentType)
	}

	result := make([]uint32, acc.Count*accessorTypeComponentCount(acc.Type))
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &result); err != nil {
		return nil, errorf(ErrFormat, "accessor %d: %v", accessorIndex, err)
	}

	return result, nil
}

// readPositionAccessor decodes a POSITION attribute accessor. Positions must
// be vec3-shaped float data; the result is a flat x,y,z sequence.
func (d *accessorDecoder) readPositionAccessor(accessorIndex int) ([]float32, error) {
	if accessorIndex < 0 || accessorIndex >= len(d.doc.Accessors) {
		return nil, errorf(ErrReference, "accessor index %d out of range", accessorIndex)
	}
	acc := &d.doc.Accessors[accessorIndex]
	if acc.Type != accessorTypeVec3 {
		return nil, errorf(ErrFormat, "position accessor %d is not VEC3: %q", accessorIndex, acc.Type)
	}
	return d.readFloatAccessor(accessorIndex)
}

// readIndexAccessor decodes an index accessor as uint32 values, widening
// unsigned-short source data. Index accessors must be scalar-shaped.
func (d *accessorDecoder) readIndexAccessor(accessorIndex int) ([]uint32, error) {
	if accessorIndex < 0 || accessorIndex >= len(d.doc.Accessors) {
		return nil, errorf(ErrReference, "accessor index %d out of range", accessorIndex)
	}
	acc := &d.doc.Accessors[accessorIndex]
	if acc.Type != accessorTypeScalar {
		return nil, errorf(ErrFormat, "index accessor %d is not SCALAR: %q", accessorIndex, acc.Type)
	}

	switch acc.ComponentType {
	case componentTypeUnsignedShort:
		shorts, err := d.readUnsignedShortAccessor(accessorIndex)
		if err != nil {
			return nil, err
		}
		result := make([]uint32, len(shorts))
		for i, v := range shorts {
			result[i] = uint32(v)
		}
		return result, nil

	case componentTypeUnsignedInt:
		return d.readUnsignedIntAccessor(accessorIndex)

	default:
		return nil, errorf(ErrFormat, "index accessor %d has unsupported component type %d", accessorIndex, acc.ComponentType)
	}
}

// --- Layout Helpers ---

// componentTypeSize returns the byte width of a component type, or 0 when the
// type is outside the supported set.
func componentTypeSize(componentType int) int {
	switch componentType {
	case componentTypeUnsignedShort:
		return 2
	case componentTypeUnsignedInt, componentTypeFloat:
		return 4
	default:
		return 0
	}
}

// accessorTypeComponentCount returns the component count of a shape tag, or 0
// when the shape is outside the supported set.
func accessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case accessorTypeScalar:
		return 1
	case accessorTypeVec2:
		return 2
	case accessorTypeVec3:
		return 3
	case accessorTypeVec4:
		return 4
	default:
		return 0
	}
}
