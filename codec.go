package sequencefile

import "fmt"

// A compressor compresses and decompresses whole buffers. The slice returned
// by compress is only valid until the next call to compress.
type compressor interface {
	compress(src []byte) ([]byte, error)
	decompress(src []byte) ([]byte, error)
}

func newCompressor(codec CompressionCodec) (compressor, error) {
	switch codec {
	case ZlibCompression:
		return &zlibCompressor{}, nil
	case GzipCompression:
		return &gzipCompressor{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCodec, codec)
	}
}

// ClassName returns the Hadoop class name that identifies the codec in a
// file header.
func (c CompressionCodec) ClassName() string {
	switch c {
	case ZlibCompression:
		return ZlibClassName
	case GzipCompression:
		return GzipClassName
	default:
		return ""
	}
}

// String returns the short name of the codec.
func (c CompressionCodec) String() string {
	switch c {
	case ZlibCompression:
		return "zlib"
	case GzipCompression:
		return "gzip"
	default:
		return "unknown"
	}
}

func codecForClassName(className string) (CompressionCodec, error) {
	switch className {
	case ZlibClassName:
		return ZlibCompression, nil
	case GzipClassName:
		return GzipCompression, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCodec, className)
	}
}
