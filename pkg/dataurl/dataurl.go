// Package dataurl encodes binary content as self-contained data URLs and
// decodes them back. Encoding is exact and reversible: decoding reproduces
// the original bytes and the declared content type verbatim.
package dataurl

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultContentType is used when the source omits a content type.
const DefaultContentType = "application/octet-stream"

const marker = ";base64,"

// Encode returns a data URL embedding data with the given content type.
// An empty contentType falls back to DefaultContentType.
func Encode(contentType string, data []byte) string {
	if contentType == "" {
		contentType = DefaultContentType
	}

	return "data:" + contentType + marker + base64.StdEncoding.EncodeToString(data)
}

// Decode parses a data URL produced by Encode, returning the declared
// content type and the original bytes.
func Decode(u string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return "", nil, fmt.Errorf("dataurl: missing data: scheme")
	}

	contentType, payload, ok := strings.Cut(rest, marker)
	if !ok {
		return "", nil, fmt.Errorf("dataurl: missing base64 marker")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("dataurl: decode payload: %w", err)
	}

	return contentType, data, nil
}
