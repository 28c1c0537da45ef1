package sequencefile

import (
	"fmt"
	"io"
)

// a blockReader represents an iterator over a single compressed block, for
// block-compressed SequenceFiles. The four columns are decompressed when the
// block is loaded, and consumed in lockstep as records are popped off.
type blockReader struct {
	n     int
	i     int
	key   []byte
	value []byte

	keyLengths   dataBuffer
	keys         dataBuffer
	valueLengths dataBuffer
	values       dataBuffer
}

func (b *blockReader) columns() []*dataBuffer {
	return []*dataBuffer{&b.keyLengths, &b.keys, &b.valueLengths, &b.values}
}

// next pops the next record off the block. It returns false once all n
// records have been read.
func (b *blockReader) next() (bool, error) {
	if b.i >= b.n {
		return false, nil
	}

	key, err := nextField(&b.keyLengths, &b.keys)
	if err != nil {
		return false, fmt.Errorf("sequencefile: reading key %d of block: %w", b.i, err)
	}

	value, err := nextField(&b.valueLengths, &b.values)
	if err != nil {
		return false, fmt.Errorf("sequencefile: reading value %d of block: %w", b.i, err)
	}

	b.key = key
	b.value = value
	b.i++

	if b.i == b.n {
		for _, col := range b.columns() {
			if !col.eof() {
				return false, fmt.Errorf("%w: trailing data in block after %d records", ErrCorruptFile, b.n)
			}
		}
	}

	return true, nil
}

func nextField(lengths, data *dataBuffer) ([]byte, error) {
	length, err := lengths.readVInt()
	if err != nil {
		return nil, err
	} else if length < 0 {
		return nil, fmt.Errorf("%w: invalid length: %d", ErrCorruptFile, length)
	}

	return data.next(int(length))
}

func (r *Reader) scanBlock() bool {
	for {
		ok, err := r.block.next()
		if err != nil {
			r.close(err)
			return false
		} else if ok {
			break
		}

		err = r.startBlock()
		if err == io.EOF {
			return false
		} else if err != nil {
			r.close(err)
			return false
		}
	}

	r.key = r.block.key
	r.value = r.block.value
	return true
}

// startBlock loads the next block off the input stream. It returns io.EOF if
// there are no more blocks.
func (r *Reader) startBlock() error {
	first, err := r.readByte()
	if err != nil {
		return err
	}

	first, err = r.checkBlockSync(first)
	if err != nil {
		return err
	}

	n, err := readVIntRest(int8(first), r.reader)
	if err != nil {
		return brokenLength(err, decodeVIntSize(int8(first))-1)
	} else if n < 0 {
		return fmt.Errorf("%w: invalid record count for block: %d", ErrCorruptFile, n)
	}

	r.block = blockReader{n: int(n)}
	for _, col := range r.block.columns() {
		b, err := r.readSection()
		if err != nil {
			r.block = blockReader{}
			return err
		}
		col.set(b)
	}

	return nil
}

// readSection reads one compressed column of a block, prefixed with its
// compressed length, and returns it decompressed.
func (r *Reader) readSection() ([]byte, error) {
	length, err := ReadVInt(r.reader)
	if err != nil {
		return nil, brokenLength(err, 1)
	} else if length < 0 {
		return nil, fmt.Errorf("%w: invalid section length: %d", ErrCorruptFile, length)
	}

	r.clear()
	compressed, err := r.consume(int(length))
	if err != nil {
		return nil, err
	}

	b, err := r.compressor.decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing block: %v", ErrCorruptFile, err)
	}

	return b, nil
}
