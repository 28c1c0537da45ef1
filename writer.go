package sequencefile

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// A WriterConfig specifies the configuration for a Writer.
type WriterConfig struct {
	// Writer is where data will be written to. If it is an io.WriteCloser, it
	// is closed along with the Writer.
	Writer io.Writer

	// KeyClass is the type of each key to be written.
	KeyClass string

	// ValueClass is the type of each value to be written. If it is
	// TextClassName and the file is uncompressed, values are wrapped as Text
	// on the way out.
	ValueClass string

	// Compression is the type of compression to be used.
	// Either none, record or block.
	Compression Compression

	// CompressionCodec is the codec to be used for compression. It defaults to
	// ZlibCompression. This is only relevant if compression is used.
	CompressionCodec CompressionCodec

	// BlockRecMax is the number of records after which a block is written out.
	// This is only relevant if block compression is used.
	BlockRecMax int

	// BlockSize is the number of buffered key and value bytes after which a
	// block is written out, even if it holds fewer than BlockRecMax records.
	// This is only relevant if block compression is used.
	BlockSize int

	// BlockSync chooses where sync markers go relative to blocks.
	// This is only relevant if block compression is used.
	BlockSync BlockSyncMode

	// Metadata contains key/value pairs to be added to the header.
	Metadata map[string]string

	// Rand is a source of random numbers. Should usually be nil, but useful
	// for reproducible output.
	Rand *rand.Rand
}

// A Writer writes key/value pairs to an output stream. A Writer must not be
// used from multiple goroutines at once.
type Writer struct {
	// Header is the header that was written at the start of the output.
	Header Header

	w      *writerHelper
	pairs  pairWriter
	closed bool
}

// NewWriter writes the SequenceFile header to cfg.Writer and returns a Writer
// ready to append records. cfg is not modified.
func NewWriter(cfg *WriterConfig) (*Writer, error) {
	if cfg.Writer == nil {
		return nil, errors.New("sequencefile: no output writer configured")
	}

	// Set some defaults.
	c := *cfg
	if c.KeyClass == "" {
		c.KeyClass = BytesWritableClassName
	}
	if c.ValueClass == "" {
		c.ValueClass = BytesWritableClassName
	}
	if c.Compression == 0 {
		c.Compression = NoCompression
	}
	if c.CompressionCodec == 0 {
		c.CompressionCodec = ZlibCompression
	}
	if c.BlockRecMax <= 0 {
		c.BlockRecMax = defaultBlockRecMax
	}
	if c.BlockSize <= 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	w := &Writer{
		Header: Header{
			Version:        int(seqVersion),
			Compression:    c.Compression,
			KeyClassName:   c.KeyClass,
			ValueClassName: c.ValueClass,
			Metadata:       c.Metadata,
			SyncMarker:     make([]byte, SyncSize),
		},
		w: &writerHelper{w: c.Writer},
	}
	c.Rand.Read(w.Header.SyncMarker)

	var comp compressor
	if c.Compression != NoCompression {
		var err error
		if comp, err = newCompressor(c.CompressionCodec); err != nil {
			return nil, err
		}
		w.Header.CompressionCodec = c.CompressionCodec
		w.Header.CompressionCodecClassName = c.CompressionCodec.ClassName()
	}

	sync := w.Header.SyncMarker
	switch c.Compression {
	case NoCompression:
		w.pairs = &uncompressedPairs{w: w.w, sync: sync, text: c.ValueClass == TextClassName}
	case RecordCompression:
		w.pairs = &recordCompressedPairs{
			uncompressedPairs: uncompressedPairs{w: w.w, sync: sync},
			compressor:        comp,
		}
	case BlockCompression:
		w.pairs = &blockPairs{
			w:          w.w,
			sync:       sync,
			syncMode:   c.BlockSync,
			compressor: comp,
			recMax:     c.BlockRecMax,
			blockSize:  c.BlockSize,
		}
	default:
		return nil, fmt.Errorf("sequencefile: unknown compression: %d", c.Compression)
	}

	if err := writeHeader(w.w, &w.Header); err != nil {
		return nil, err
	}
	return w, nil
}

// Append writes a key/value pair. With block compression, the pair is
// buffered until the block is full or the Writer is flushed.
func (w *Writer) Append(key, value []byte) error {
	if w.closed {
		return errWriterClosed
	}
	return w.pairs.append(key, value)
}

// Flush writes out any buffered block, and flushes the output writer if it
// has a Flush method.
func (w *Writer) Flush() error {
	if w.closed {
		return errWriterClosed
	}
	if err := w.pairs.flush(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes any buffered block and then closes the output writer, if it's
// an io.WriteCloser. Closing a Writer twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.pairs.flush()
	if err == nil {
		err = w.w.Flush()
	}
	if cerr := w.w.Close(); err == nil {
		err = cerr
	}
	return err
}
