package sequencefile

const (
	defaultBlockRecMax = 100
	defaultBlockSize   = 1000 * 1000
)

// A pairWriter encodes records for one of the three file layouts.
type pairWriter interface {
	append(key, value []byte) error
	flush() error
}

type uncompressedPairs struct {
	w    *writerHelper
	sync []byte
	text bool
}

func (p *uncompressedPairs) append(key, value []byte) error {
	if p.text {
		value = PutText(value)
	}
	return p.writeRecord(key, value)
}

func (p *uncompressedPairs) writeRecord(key, value []byte) error {
	p.w.checkSync(p.sync)
	p.w.writeInt32(int32(len(key) + len(value)))
	p.w.writeInt32(int32(len(key)))
	p.w.write(key)
	p.w.write(value)
	return p.w.err
}

func (p *uncompressedPairs) flush() error {
	return p.w.err
}

type recordCompressedPairs struct {
	uncompressedPairs
	compressor compressor
}

func (p *recordCompressedPairs) append(key, value []byte) error {
	if p.w.err != nil {
		return p.w.err
	}

	value, err := p.compressor.compress(value)
	if err != nil {
		p.w.setErr(err)
		return err
	}
	return p.writeRecord(key, value)
}

type blockPairs struct {
	w          *writerHelper
	sync       []byte
	syncMode   BlockSyncMode
	compressor compressor
	recMax     int
	blockSize  int

	count        int
	keyLengths   dataBuffer
	keys         dataBuffer
	valueLengths dataBuffer
	values       dataBuffer
	out          dataBuffer
}

func (b *blockPairs) append(key, value []byte) error {
	if b.w.err != nil {
		return b.w.err
	}

	b.keyLengths.writeVInt(int64(len(key)))
	b.keys.write(key)
	b.valueLengths.writeVInt(int64(len(value)))
	b.values.write(value)
	b.count++

	if b.count >= b.recMax || b.keys.len()+b.values.len() >= b.blockSize {
		return b.writeBlock()
	}
	return nil
}

// writeBlock compresses the buffered columns and writes them out as one block.
// Nothing is written if compression fails, and empty blocks are never written.
func (b *blockPairs) writeBlock() error {
	if b.count == 0 || b.w.err != nil {
		return b.w.err
	}

	b.out.clear()
	b.out.writeVInt(int64(b.count))
	for _, col := range []*dataBuffer{&b.keyLengths, &b.keys, &b.valueLengths, &b.values} {
		if err := b.out.writeSection(b.compressor, col.bytes()); err != nil {
			b.w.setErr(err)
			return err
		}
	}

	if b.syncMode == SyncBeforeBlock {
		b.w.writeSync(b.sync)
	}
	b.w.write(b.out.bytes())
	if b.syncMode == SyncAfterBlock {
		b.w.writeSync(b.sync)
	}

	b.count = 0
	b.keyLengths.clear()
	b.keys.clear()
	b.valueLengths.clear()
	b.values.clear()
	return b.w.err
}

func (b *blockPairs) flush() error {
	return b.writeBlock()
}
