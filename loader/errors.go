package loader

import (
	"errors"
	"fmt"
)

// Error categories returned by the loader. Every failure is wrapped in exactly
// one of these sentinels so callers can classify with errors.Is while the
// wrapped message names the specific violation. All failures are fatal to the
// load: no partial mesh is ever returned.
var (
	// ErrFormat indicates a malformed or unsupported document layout: a bad
	// component type, a vec3 accessor that is not float, a missing required
	// top-level section, a document with no meshes, a primitive without a
	// POSITION attribute, or an undecodable embedded payload.
	ErrFormat = errors.New("format error")

	// ErrReference indicates a dangling or malformed cross-reference: a name
	// with no entry in its collection, a reference that is neither a name nor
	// an index, or an index outside its target collection.
	ErrReference = errors.New("reference error")

	// ErrStructural indicates a scene hierarchy problem: a missing or empty
	// scene root list, an unresolved active scene, or a cycle in the node
	// hierarchy.
	ErrStructural = errors.New("structural error")

	// ErrConfig indicates an external buffer reference with no base location
	// or no fetch capability configured.
	ErrConfig = errors.New("config error")

	// ErrIO indicates the injected fetch capability failed to retrieve an
	// external buffer.
	ErrIO = errors.New("io error")
)

// errorf wraps a formatted message in one of the category sentinels.
func errorf(category error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", category, fmt.Sprintf(format, args...))
}
