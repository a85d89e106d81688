package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithBaseLocation is an option builder that sets the base location used to
// resolve relative external buffer references. Required whenever any buffer
// in a document is external.
//
// Parameters:
//   - base: the base URL or path prefix
//
// Returns:
//   - LoaderBuilderOption: a function that applies the base location to a loader
func WithBaseLocation(base string) LoaderBuilderOption {
	return func(l *loader) {
		l.baseLocation = base
	}
}

// WithFetcher is an option builder that sets the byte-fetch capability used
// to retrieve external buffers. The fetcher must return an error on any
// retrieval problem; that error surfaces as an io failure for the whole load.
//
// Parameters:
//   - fetch: the fetch capability mapping a resolved location to raw bytes
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher to a loader
func WithFetcher(fetch Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		l.fetch = fetch
	}
}
