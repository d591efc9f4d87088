package io

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/xerrors"
)

const (
	// EncodingGzip is the gzip content encoding
	EncodingGzip string = "gzip"
	// EncodingDeflate is the deflate content encoding
	EncodingDeflate string = "deflate"
)

// NewDecodeReader create a new decoding reader for the given content
// encoding over the given stream, typically a GatheringReader over
// scattered body buffers. Unknown encodings are rejected before any read.
func NewDecodeReader(reader io.Reader, encoding string) (io.ReadCloser, error) {
	switch encoding {
	case EncodingGzip:
		gzipReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, xerrors.Errorf("failed to create gzip reader: %w", err)
		}
		return gzipReader, nil
	case EncodingDeflate:
		return flate.NewReader(reader), nil
	default:
		return nil, xerrors.Errorf("unknown content encoding %q", encoding)
	}
}
