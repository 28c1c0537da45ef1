// Package sequencefile provides functionality for reading and writing Hadoop's
// SequenceFile format, documented here: http://goo.gl/sOSJmJ
//
// Three layouts are supported: uncompressed records, record-compressed
// records (each value compressed on its own) and block-compressed files
// (batches of records stored as four compressed columns). Two codecs are
// understood, Hadoop's DefaultCodec (zlib) and GzipCodec.
package sequencefile

type Compression int
type CompressionCodec int

const (
	SyncSize = 16

	ZlibClassName = "org.apache.hadoop.io.compress.DefaultCodec"
	GzipClassName = "org.apache.hadoop.io.compress.GzipCodec"

	BytesWritableClassName = "org.apache.hadoop.io.BytesWritable"
	TextClassName          = "org.apache.hadoop.io.Text"
)

const (
	NoCompression Compression = iota + 1
	RecordCompression
	BlockCompression
)

const (
	ZlibCompression CompressionCodec = iota + 1
	GzipCompression
)

// Header versions at which optional fields were introduced.
const (
	syncVersion          = 2
	compressVersion      = 3
	blockCompressVersion = 4
	customCodecVersion   = 5
	metadataVersion      = 6

	seqMagic          = "SEQ"
	seqVersion   byte = metadataVersion
	maxSeqVersion     = metadataVersion
)

// String returns the name of the compression layout.
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case RecordCompression:
		return "record"
	case BlockCompression:
		return "block"
	default:
		return "unknown"
	}
}
