package sequencefile

import (
	"bytes"
	"fmt"
	"io"
)

const (
	// syncEscape is written in place of a record length in front of every sync
	// marker.
	syncEscape = -1

	// syncInterval is the minimum number of bytes between two sync markers in
	// a record-oriented file.
	syncInterval = 100 * (4 + SyncSize)
)

// A BlockSyncMode controls where a block-compressed writer places sync
// markers relative to the blocks it flushes.
type BlockSyncMode int

const (
	// SyncAfterBlock writes a sync marker after every block, so the first block
	// follows the header directly and every later block is preceded by one.
	SyncAfterBlock BlockSyncMode = iota

	// SyncBeforeBlock writes a sync marker in front of every block, including
	// the first. This is the layout hadoop itself produces.
	SyncBeforeBlock
)

// writeSync writes the escape and the sync marker, and records where the
// marker ended.
func (w *writerHelper) writeSync(sync []byte) error {
	w.writeInt32(syncEscape)
	w.write(sync)
	w.lastSync = w.bytes
	return w.err
}

// checkSync writes a sync marker if at least syncInterval bytes have gone by
// since the last one.
func (w *writerHelper) checkSync(sync []byte) error {
	if sync != nil && w.bytes >= w.lastSync+syncInterval {
		return w.writeSync(sync)
	}
	return w.err
}

// checkSync reads a sync marker off the input stream, just after the escape,
// and compares it with the one from the header.
func (r *Reader) checkSync() error {
	_, err := io.ReadFull(r.reader, r.syncBuf[:])
	if err != nil {
		return brokenLength(err, SyncSize)
	}

	// If we never read the Header, infer the sync marker from the first time we
	// see it.
	if r.syncMarkerBytes == nil {
		r.syncMarkerBytes = make([]byte, SyncSize)
		copy(r.syncMarkerBytes, r.syncBuf[:])
	} else if !bytes.Equal(r.syncBuf[:], r.syncMarkerBytes) {
		return fmt.Errorf("%w: invalid sync marker", ErrCorruptFile)
	}

	return nil
}

// checkBlockSync is called with the first byte in front of a block. A record
// count can never be negative, so a leading 0xff can only be the start of a
// sync escape; in that case the rest of the escape and the sync marker are
// consumed and verified, and the byte following them is returned. io.EOF is
// returned if the stream ends cleanly after the marker.
func (r *Reader) checkBlockSync(first byte) (byte, error) {
	if first != 0xff {
		return first, nil
	}

	_, err := io.ReadFull(r.reader, r.lenBuf[1:4])
	if err != nil {
		return 0, brokenLength(err, 3)
	}

	for _, b := range r.lenBuf[1:4] {
		if b != 0xff {
			return 0, fmt.Errorf("%w: invalid sync escape", ErrCorruptFile)
		}
	}

	if err := r.checkSync(); err != nil {
		return 0, err
	}

	return r.readByte()
}
