package sequencefile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// A Reader reads key/value pairs from a SequenceFile input stream.
//
// A reader is valid at any key or block offset; it's safe to start in the
// middle of a file or seek the underlying input stream if the location was
// recorded between calls to Scan, and as long as you call Reset after seeking.
// Note, however, that with a block-compressed file (Header.Compression set to
// BlockCompression), the position will be at the beginning of the block that
// holds the key, not right before the key itself.
//
// A Reader must not be used from multiple goroutines at once.
type Reader struct {
	Header          Header
	syncMarkerBytes []byte

	reader io.Reader
	closer io.Closer
	closed bool
	err    error

	compression Compression
	codec       CompressionCodec
	compressor  compressor
	text        bool

	lenBuf  [4]byte
	syncBuf [SyncSize]byte
	buf     bytes.Buffer
	block   blockReader
	key     []byte
	value   []byte
}

// Open opens a SequenceFile on disk and immediately reads the header. The file
// is released by Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := NewReader(bufio.NewReader(f))
	r.closer = f
	err = r.ReadHeader()
	if err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

// NewReader returns a new Reader for a SequenceFile, reading data from r. If
// the io.Reader is positioned at the start of a file, you should immediately
// call ReadHeader to read through the header.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: r}
}

// NewReaderCompression returns a new Reader for a SequenceFile, reading data
// from r. Normally, compression options are inferred from the header of a
// file, but if the header is unavailable (because you're starting mid-stream)
// you can call this method with the compression options set explicitly.
func NewReaderCompression(r io.Reader, compression Compression, codec CompressionCodec) *Reader {
	rd := NewReader(r)
	rd.compression = compression
	rd.codec = codec

	return rd
}

// Scan advances the reader to the start of the next record, reading the key
// and value into memory. These can then be obtained by calling Key and Value.
// If the end of the file is reached, or there is an error, Scan will return
// false; Key and Value keep returning the last record in that case.
func (r *Reader) Scan() bool {
	if r.closed {
		return false
	}

	if r.compression != NoCompression && r.compressor == nil {
		c, err := newCompressor(r.codec)
		if err != nil {
			r.close(err)
			return false
		}
		r.compressor = c
	}

	if r.compression == BlockCompression {
		return r.scanBlock()
	}
	return r.scanRecord()
}

// Reset resets the internal state of the reader, but maintains compression
// settings and header information. You should call Reset if you seek the
// underlying reader, but should create an entirely new Reader if you are
// starting a different file.
func (r *Reader) Reset() {
	r.clear()
	r.block = blockReader{}
}

// Err returns the first non-EOF error reached while scanning.
func (r *Reader) Err() error {
	return r.err
}

// Key returns the key for the current record. The byte slice will be reused
// after the next call to Scan.
func (r *Reader) Key() []byte {
	return r.key
}

// Value returns the value for the current record. The byte slice will be
// reused after the next call to Scan.
func (r *Reader) Value() []byte {
	return r.value
}

// Close releases the file opened by Open. It does nothing for readers created
// with NewReader; the caller owns that stream.
func (r *Reader) Close() error {
	r.closed = true
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

func (r *Reader) scanRecord() bool {
	totalLength, err := r.readRecordLength()
	if err == io.EOF {
		return false
	} else if err != nil {
		r.close(err)
		return false
	}

	_, err = io.ReadFull(r.reader, r.lenBuf[:])
	if err != nil {
		r.close(brokenLength(err, 4))
		return false
	}

	keyLength := int(int32(binary.BigEndian.Uint32(r.lenBuf[:])))
	if totalLength < 0 {
		r.close(fmt.Errorf("%w: invalid record length: %d", ErrCorruptFile, totalLength))
		return false
	} else if keyLength < 0 || keyLength > totalLength {
		r.close(fmt.Errorf("%w: invalid key length: %d", ErrCorruptFile, keyLength))
		return false
	}

	r.clear()
	key, err := r.consume(keyLength)
	if err != nil {
		r.close(err)
		return false
	}

	value, err := r.consume(totalLength - keyLength)
	if err != nil {
		r.close(err)
		return false
	}

	if r.compression == RecordCompression {
		value, err = r.compressor.decompress(value)
		if err != nil {
			err = fmt.Errorf("%w: decompressing value: %v", ErrCorruptFile, err)
		}
	} else if r.text {
		value, err = unwrapText(value)
	}
	if err != nil {
		r.close(err)
		return false
	}

	r.key = key
	r.value = value
	return true
}

// readRecordLength reads the length in front of the next record. Lengths of
// -1 are sync escapes (the length is obnoxiously encoded as a cast uint32 just
// for this); the sync marker that follows is checked and skipped.
func (r *Reader) readRecordLength() (int, error) {
	for {
		_, err := io.ReadFull(r.reader, r.lenBuf[:])
		if err == io.EOF {
			return 0, io.EOF
		} else if err != nil {
			return 0, brokenLength(err, 4)
		}

		length := int(int32(binary.BigEndian.Uint32(r.lenBuf[:])))
		if length != syncEscape {
			return length, nil
		}

		if err = r.checkSync(); err != nil {
			return 0, err
		}
	}
}

// consume reads some bytes off the input stream, and returns a byte slice that
// is only valid until the next call to clear.
func (r *Reader) consume(n int) ([]byte, error) {
	off := r.buf.Len()
	_, err := io.CopyN(&r.buf, r.reader, int64(n))
	if err != nil {
		return nil, brokenLength(err, n)
	}

	return r.buf.Bytes()[off:r.buf.Len()], nil
}

// readByte reads a single byte, returning io.EOF if the stream ends cleanly.
func (r *Reader) readByte() (byte, error) {
	_, err := io.ReadFull(r.reader, r.lenBuf[:1])
	if err != nil {
		return 0, err
	}

	return r.lenBuf[0], nil
}

func (r *Reader) clear() {
	r.buf.Reset()
}

func (r *Reader) close(err error) {
	r.closed = true
	r.err = err
}

// brokenLength translates a short read into ErrBrokenDataLength.
func brokenLength(err error, want int) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: stream ended while reading %d bytes", ErrBrokenDataLength, want)
	}
	return err
}
