package sequencefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// maxMetadataPairs bounds the metadata pair count accepted from a header.
const maxMetadataPairs = 1024

// A Header represents the information contained in the header of the
// SequenceFile.
type Header struct {
	Version                   int
	Compression               Compression
	CompressionCodec          CompressionCodec
	CompressionCodecClassName string
	KeyClassName              string
	ValueClassName            string
	Metadata                  map[string]string
	SyncMarker                []byte
}

// IsCompressed reports whether values are compressed, either one by one or
// in blocks.
func (h *Header) IsCompressed() bool {
	return h.Compression == RecordCompression || h.Compression == BlockCompression
}

// IsBlockCompressed reports whether records are stored in compressed blocks.
func (h *Header) IsBlockCompressed() bool {
	return h.Compression == BlockCompression
}

// ReadHeader parses the SequenceFile header from the input stream, and fills
// in the Header struct with the values. This should be called when the reader
// is positioned at the start of the file or input stream, before any records
// are read.
//
// Versions 1 through 6 are accepted; fields introduced by later versions
// take their defaults. ReadHeader fails with ErrUnsupportedCodec if the file
// uses a codec other than DefaultCodec or GzipCodec.
func (r *Reader) ReadHeader() error {
	var magic [4]byte
	if _, err := io.ReadFull(r.reader, magic[:]); err != nil {
		return fmt.Errorf("sequencefile: reading magic number: %w", err)
	} else if string(magic[:3]) != seqMagic {
		return fmt.Errorf("%w: %q", ErrInvalidMagic, magic[:3])
	}

	h := Header{Version: int(magic[3])}
	if h.Version < 1 || h.Version > maxSeqVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	var err error
	if h.KeyClassName, err = r.readString(); err != nil {
		return err
	}
	if h.ValueClassName, err = r.readString(); err != nil {
		return err
	}

	var valueCompression, blockCompression bool
	if h.Version >= compressVersion {
		if valueCompression, err = r.readBoolean(); err != nil {
			return err
		}
	}
	if h.Version >= blockCompressVersion {
		if blockCompression, err = r.readBoolean(); err != nil {
			return err
		}
	}

	if blockCompression && !valueCompression {
		return fmt.Errorf("%w: block compression flag set without compression", ErrCorruptFile)
	} else if blockCompression {
		h.Compression = BlockCompression
	} else if valueCompression {
		h.Compression = RecordCompression
	} else {
		h.Compression = NoCompression
	}

	if h.Compression != NoCompression {
		// Before custom codecs were introduced, everything was DefaultCodec.
		h.CompressionCodecClassName = ZlibClassName
		if h.Version >= customCodecVersion {
			if h.CompressionCodecClassName, err = r.readString(); err != nil {
				return err
			}
		}

		if h.CompressionCodec, err = codecForClassName(h.CompressionCodecClassName); err != nil {
			return err
		}
	}

	h.Metadata = map[string]string{}
	if h.Version >= metadataVersion {
		if h.Metadata, err = r.readMetadata(); err != nil {
			return err
		}
	}

	if h.Version >= syncVersion {
		h.SyncMarker = make([]byte, SyncSize)
		if _, err = io.ReadFull(r.reader, h.SyncMarker); err != nil {
			return brokenLength(err, SyncSize)
		}
		r.syncMarkerBytes = make([]byte, SyncSize)
		copy(r.syncMarkerBytes, h.SyncMarker)
	}

	r.Header = h
	r.compression = h.Compression
	r.codec = h.CompressionCodec
	r.text = h.Compression == NoCompression && h.ValueClassName == TextClassName
	r.compressor = nil
	return nil
}

// writeHeader writes h to w. Optional fields are only written if h.Version
// is recent enough to have them.
func writeHeader(w *writerHelper, h *Header) error {
	w.write([]byte(seqMagic))
	w.write([]byte{byte(h.Version)})
	w.writeString(h.KeyClassName)
	w.writeString(h.ValueClassName)

	if h.Version >= compressVersion {
		w.writeBool(h.IsCompressed())
	}
	if h.Version >= blockCompressVersion {
		w.writeBool(h.IsBlockCompressed())
	}
	if h.IsCompressed() && h.Version >= customCodecVersion {
		w.writeString(h.CompressionCodecClassName)
	}
	if h.Version >= metadataVersion {
		writeMetadata(w, h.Metadata)
	}
	if h.Version >= syncVersion {
		w.write(h.SyncMarker)
	}

	return w.err
}

func (r *Reader) readMetadata() (map[string]string, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.reader, b[:]); err != nil {
		return nil, brokenLength(err, 4)
	}

	pairs := int(int32(binary.BigEndian.Uint32(b[:])))
	if pairs < 0 || pairs > maxMetadataPairs {
		return nil, fmt.Errorf("%w: invalid metadata pair count: %d", ErrCorruptFile, pairs)
	}

	metadata := make(map[string]string, pairs)
	for i := 0; i < pairs; i++ {
		key, err := r.readString()
		if err != nil {
			return nil, err
		}

		value, err := r.readString()
		if err != nil {
			return nil, err
		}

		metadata[key] = value
	}

	return metadata, nil
}

func writeMetadata(w *writerHelper, metadata map[string]string) error {
	w.writeInt32(int32(len(metadata)))

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		w.writeString(key)
		w.writeString(metadata[key])
	}
	return w.err
}

func (r *Reader) readBoolean() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, brokenLength(err, 1)
	}

	return b != 0, nil
}

func (r *Reader) readString() (string, error) {
	length, err := ReadVInt(r.reader)
	if err != nil {
		return "", brokenLength(err, 1)
	} else if length < 0 {
		return "", fmt.Errorf("%w: invalid string length: %d", ErrCorruptFile, length)
	}

	r.clear()
	b, err := r.consume(int(length))
	if err != nil {
		return "", err
	}

	return string(b), nil
}
