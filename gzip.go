package sequencefile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipCompressor implements hadoop's GzipCodec: a complete gzip member with
// header and CRC32 trailer per compressed buffer.
type gzipCompressor struct {
	gw  *gzip.Writer
	gr  *gzip.Reader
	buf bytes.Buffer
}

func (g *gzipCompressor) compress(src []byte) ([]byte, error) {
	g.buf.Reset()
	if g.gw != nil {
		g.gw.Reset(&g.buf)
	} else {
		g.gw = gzip.NewWriter(&g.buf)
	}

	if _, err := g.gw.Write(src); err != nil {
		return nil, err
	}
	if err := g.gw.Close(); err != nil {
		return nil, err
	}

	return g.buf.Bytes(), nil
}

func (g *gzipCompressor) decompress(src []byte) ([]byte, error) {
	in := bytes.NewReader(src)
	if g.gr != nil {
		if err := g.gr.Reset(in); err != nil {
			return nil, err
		}
	} else {
		gr, err := gzip.NewReader(in)
		if err != nil {
			return nil, err
		}
		g.gr = gr
	}

	out, err := io.ReadAll(g.gr)
	if err != nil {
		return nil, err
	}

	return out, g.gr.Close()
}
