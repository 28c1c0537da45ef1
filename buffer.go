package sequencefile

import "fmt"

// A dataBuffer holds one column of a block: either a table of VInt lengths or
// the concatenated key or value bytes. On the write side it accumulates data
// with the write methods; on the read side it is installed with set and
// consumed front to back with next and readVInt.
type dataBuffer struct {
	buf []byte
	pos int
}

// set installs b as the backing data and rewinds the cursor.
func (d *dataBuffer) set(b []byte) {
	d.buf = b
	d.pos = 0
}

// clear empties the buffer, keeping its capacity for the next write.
func (d *dataBuffer) clear() {
	d.buf = d.buf[:0]
	d.pos = 0
}

func (d *dataBuffer) len() int {
	return len(d.buf)
}

// bytes returns the accumulated data. It is only valid until the next call
// to clear.
func (d *dataBuffer) bytes() []byte {
	return d.buf
}

func (d *dataBuffer) eof() bool {
	return d.pos >= len(d.buf)
}

func (d *dataBuffer) write(p []byte) {
	d.buf = append(d.buf, p...)
}

func (d *dataBuffer) writeVInt(n int64) {
	d.buf = append(d.buf, PutVInt(n)...)
}

// writeSection appends a compressed copy of raw, prefixed with the VInt
// length of the compressed bytes.
func (d *dataBuffer) writeSection(c compressor, raw []byte) error {
	compressed, err := c.compress(raw)
	if err != nil {
		return err
	}

	d.writeVInt(int64(len(compressed)))
	d.write(compressed)
	return nil
}

// next returns the next n bytes and advances the cursor past them. The
// returned slice aliases the buffer.
func (d *dataBuffer) next(n int) ([]byte, error) {
	if n < 0 || n > len(d.buf)-d.pos {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d of %d",
			ErrUnexpectedEndOfBuffer, n, d.pos, len(d.buf))
	}

	b := d.buf[d.pos : d.pos+n : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *dataBuffer) readVInt() (int64, error) {
	if d.eof() {
		return 0, fmt.Errorf("%w: want a vint at offset %d of %d",
			ErrUnexpectedEndOfBuffer, d.pos, len(d.buf))
	}

	first := int8(d.buf[d.pos])
	b, err := d.next(decodeVIntSize(first))
	if err != nil {
		return 0, err
	}

	if len(b) == 1 {
		return int64(first), nil
	}
	return decodeVIntBody(first, b[1:]), nil
}
