package sequencefile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// zlibCompressor implements hadoop's DefaultCodec, which is a plain zlib
// stream at the default compression level.
type zlibCompressor struct {
	zw  *zlib.Writer
	zr  io.ReadCloser
	buf bytes.Buffer
}

func (z *zlibCompressor) compress(src []byte) ([]byte, error) {
	z.buf.Reset()
	if z.zw != nil {
		z.zw.Reset(&z.buf)
	} else {
		z.zw = zlib.NewWriter(&z.buf)
	}

	if _, err := z.zw.Write(src); err != nil {
		return nil, err
	}
	if err := z.zw.Close(); err != nil {
		return nil, err
	}

	return z.buf.Bytes(), nil
}

func (z *zlibCompressor) decompress(src []byte) ([]byte, error) {
	in := bytes.NewReader(src)
	if z.zr != nil {
		// The zlib docs guarantee that the ReadCloser returned by NewReader will
		// also implement zlib.Resetter, so this type assertion should be safe.
		if err := z.zr.(zlib.Resetter).Reset(in, nil); err != nil {
			return nil, err
		}
	} else {
		zr, err := zlib.NewReader(in)
		if err != nil {
			return nil, err
		}
		z.zr = zr
	}

	out, err := io.ReadAll(z.zr)
	if err != nil {
		return nil, err
	}

	return out, z.zr.Close()
}
