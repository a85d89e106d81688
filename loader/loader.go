package loader

import (
	"fmt"
	"io"
)

// loader is the implementation of the Loader interface.
type loader struct {
	baseLocation string
	fetch        Fetcher
}

// Loader defines the public-facing interface for decoding scene interchange
// documents into a single merged triangle mesh. A load runs the full
// pipeline: normalization, buffer resolution, scene-graph flattening, and
// mesh merging. Each invocation allocates and owns its own intermediate
// state, so one Loader may serve concurrent loads of different documents
// without synchronization. Every failure is fatal to that load: the caller
// receives either a complete merged mesh or nothing.
type Loader interface {
	// LoadDocument decodes a UTF-8 JSON interchange document into one merged
	// triangle mesh. External buffer references resolve against the
	// configured base location and are retrieved through the configured
	// fetch capability, sequentially, in document order.
	//
	// Parameters:
	//   - data: the UTF-8 JSON document text
	//
	// Returns:
	//   - *MergedMesh: the merged position and index buffers
	//   - error: a format, reference, structural, config, or io error
	LoadDocument(data []byte) (*MergedMesh, error)

	// LoadReader reads a complete document from a reader and decodes it.
	// Use this when loading from embedded resources or network streams.
	//
	// Parameters:
	//   - r: reader containing the UTF-8 JSON document text
	//
	// Returns:
	//   - *MergedMesh: the merged position and index buffers
	//   - error: a read failure or any LoadDocument error
	LoadReader(r io.Reader) (*MergedMesh, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the given options applied.
//
// Parameters:
//   - options: functional options (WithBaseLocation, WithFetcher)
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadDocument(data []byte) (*MergedMesh, error) {
	doc, err := normalizeDocument(data)
	if err != nil {
		return nil, err
	}

	buffers, err := resolveBuffers(doc, l.baseLocation, l.fetch)
	if err != nil {
		return nil, err
	}

	instances, err := flattenScene(doc)
	if err != nil {
		return nil, err
	}

	return mergeMeshes(doc, buffers, instances)
}

func (l *loader) LoadReader(r io.Reader) (*MergedMesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return l.LoadDocument(data)
}
