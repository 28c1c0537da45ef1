package sequencefile

import "errors"

var (
	// ErrInvalidMagic is returned when the input does not start with "SEQ".
	ErrInvalidMagic = errors.New("sequencefile: invalid magic number")

	// ErrUnsupportedVersion is returned for header versions this package
	// can't read.
	ErrUnsupportedVersion = errors.New("sequencefile: unsupported version")

	// ErrUnsupportedCodec is returned when the header names a compression
	// codec other than DefaultCodec or GzipCodec.
	ErrUnsupportedCodec = errors.New("sequencefile: unsupported compression codec")

	// ErrCorruptFile is returned when a sync marker doesn't match the one in
	// the header, or when the framing of a record or block is inconsistent.
	ErrCorruptFile = errors.New("sequencefile: corrupt file")

	// ErrUnexpectedEndOfBuffer is returned when a block column holds fewer
	// bytes than its length table claims.
	ErrUnexpectedEndOfBuffer = errors.New("sequencefile: unexpected end of buffer")

	// ErrBrokenDataLength is returned when a length on the input stream points
	// past the end of the stream.
	ErrBrokenDataLength = errors.New("sequencefile: broken data length")

	errWriterClosed = errors.New("sequencefile: writer is closed")
)
