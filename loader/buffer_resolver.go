package loader

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Fetcher is the injectable byte-fetch capability used to retrieve external
// buffers. It maps a resolved location to raw bytes; any error it returns is
// surfaced as an ErrIO failure for the whole load.
type Fetcher func(location string) ([]byte, error)

// resolveBuffers materializes the raw bytes for every buffer entry, strictly
// in document order, one fetch at a time. Embedded payloads must use the
// base64 data URI scheme; external references are resolved against the base
// location before being handed to the fetch capability. The first failure
// aborts the load. The result is index-aligned with doc.Buffers.
func resolveBuffers(doc *document, baseLocation string, fetch Fetcher) ([][]byte, error) {
	resolved := make([][]byte, len(doc.Buffers))

	for i, buf := range doc.Buffers {
		if buf.URI == "" {
			return nil, errorf(ErrFormat, "buffer %d has no data source", i)
		}

		if strings.HasPrefix(buf.URI, "data:") {
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return nil, errorf(ErrFormat, "buffer %d: %v", i, err)
			}
			if len(data) < buf.ByteLength {
				return nil, errorf(ErrFormat, "buffer %d: embedded payload is %d bytes, declared %d", i, len(data), buf.ByteLength)
			}
			resolved[i] = data
			continue
		}

		if baseLocation == "" {
			return nil, errorf(ErrConfig, "buffer %d references external location %q but no base location is configured", i, buf.URI)
		}
		if fetch == nil {
			return nil, errorf(ErrConfig, "buffer %d references external location %q but no fetcher is configured", i, buf.URI)
		}

		location := resolveLocation(baseLocation, buf.URI)
		data, err := fetch(location)
		if err != nil {
			return nil, errorf(ErrIO, "buffer %d: fetch %s: %v", i, location, err)
		}
		if len(data) < buf.ByteLength {
			return nil, errorf(ErrFormat, "buffer %d: fetched %d bytes, declared %d", i, len(data), buf.ByteLength)
		}
		resolved[i] = data
	}

	return resolved, nil
}

// decodeDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
// Errors are unwrapped; the caller adds the buffer context and category.
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errors.New("malformed data URI")
	}

	header := uri[len("data:"):commaIdx]
	payload := uri[commaIdx+1:]

	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding %q", header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %v", err)
	}

	return data, nil
}

// resolveLocation joins an external buffer reference with the base location.
// Absolute references pass through untouched; relative ones resolve against
// the base as a URL when it parses as one, else by simple path joining.
func resolveLocation(base, reference string) string {
	if refURL, err := url.Parse(reference); err == nil && refURL.IsAbs() {
		return reference
	}

	if baseURL, err := url.Parse(base); err == nil && baseURL.IsAbs() {
		if refURL, err := url.Parse(reference); err == nil {
			return baseURL.ResolveReference(refURL).String()
		}
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(reference, "/")
}
