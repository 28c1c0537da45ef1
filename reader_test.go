package sequencefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileSpec struct {
	name        string
	compression Compression
	codec       CompressionCodec
	classname   string
}

var files = []fileSpec{
	{
		"uncompressed",
		NoCompression,
		0,
		"",
	},
	{
		"record_compressed_zlib",
		RecordCompression,
		ZlibCompression,
		ZlibClassName,
	},
	{
		"record_compressed_gzip",
		RecordCompression,
		GzipCompression,
		GzipClassName,
	},
	{
		"block_compressed_zlib",
		BlockCompression,
		ZlibCompression,
		ZlibClassName,
	},
	{
		"block_compressed_gzip",
		BlockCompression,
		GzipCompression,
		GzipClassName,
	},
}

type pair struct {
	Key   []byte
	Value []byte
}

func writeFile(t *testing.T, cfg *WriterConfig, pairs []pair) []byte {
	buf := new(bytes.Buffer)
	cfg.Writer = buf
	w := newTestWriter(t, cfg)
	for _, p := range pairs {
		require.NoError(t, w.Append(p.Key, p.Value), "Append should succeed")
	}
	require.NoError(t, w.Close(), "Close should succeed")
	return buf.Bytes()
}

func readAll(t *testing.T, b []byte) (*Reader, []pair) {
	r := NewReader(bytes.NewReader(b))
	require.NoError(t, r.ReadHeader(), "reading the header should succeed")

	var pairs []pair
	for r.Scan() {
		pairs = append(pairs, pair{
			Key:   append([]byte{}, r.Key()...),
			Value: append([]byte{}, r.Value()...),
		})
	}
	return r, pairs
}

func assertPairs(t *testing.T, expected, actual []pair) {
	require.Equal(t, len(expected), len(actual), "the number of records should match")
	for i := range expected {
		assert.Equal(t, string(expected[i].Key), string(actual[i].Key), "key %d should match", i)
		assert.Equal(t, string(expected[i].Value), string(actual[i].Value), "value %d should match", i)
	}
}

var alicePairs = []pair{
	{[]byte("Alice"), []byte("Practice")},
	{[]byte("Bob"), []byte("Hope")},
}

func TestReadFile(t *testing.T) {
	for _, spec := range files {
		t.Run(spec.name, func(t *testing.T) {
			b := writeFile(t, &WriterConfig{
				KeyClass:         BytesWritableClassName,
				ValueClass:       BytesWritableClassName,
				Compression:      spec.compression,
				CompressionCodec: spec.codec,
			}, []pair{
				{PutBytesWritable([]byte("Alice")), PutBytesWritable([]byte("Practice"))},
				{PutBytesWritable([]byte("Bob")), PutBytesWritable([]byte("Hope"))},
			})

			r := NewReader(bytes.NewReader(b))
			err := r.ReadHeader()
			require.NoError(t, err, "reading the header should succeed")

			testFileSpec(t, r, spec)
		})
	}
}

func testFileSpec(t *testing.T, r *Reader, spec fileSpec) {
	assert.Equal(t, 6, r.Header.Version, "The version should be set")
	assert.Equal(t, "org.apache.hadoop.io.BytesWritable", r.Header.KeyClassName, "The key class name should be set")
	assert.Equal(t, "org.apache.hadoop.io.BytesWritable", r.Header.ValueClassName, "The value class name should be set")
	assert.Equal(t, map[string]string{}, r.Header.Metadata, "The metadata should be set")

	assert.Equal(t, spec.compression, r.Header.Compression, "The compression should be set")
	assert.Equal(t, spec.codec, r.Header.CompressionCodec, "The compression codec should be set")
	assert.Equal(t, spec.classname, r.Header.CompressionCodecClassName, "The compression codec should be set")

	file := r.reader.(*bytes.Reader)
	offset1, _ := file.Seek(0, io.SeekCurrent)
	ok := r.Scan()
	require.NoError(t, r.Err(), "Scan should succeed")
	require.True(t, ok, "Scan should succeed")

	assert.Equal(t, "Alice", string(BytesWritable(r.Key())), "The key should be correct")
	assert.Equal(t, "Practice", string(BytesWritable(r.Value())), "The value should be correct")

	ok = r.Scan()
	require.NoError(t, r.Err(), "Scan should succeed")
	require.True(t, ok, "Scan should succeed")

	assert.Equal(t, "Bob", string(BytesWritable(r.Key())), "The key should be correct")
	assert.Equal(t, "Hope", string(BytesWritable(r.Value())), "The value should be correct")

	// EOF
	ok = r.Scan()
	require.NoError(t, r.Err(), "Scan at the end of the file should fail without an error")
	require.False(t, ok, "Scan at the end of the file should fail without an error")
	assert.Equal(t, "Bob", string(BytesWritable(r.Key())), "The key should survive the end of the file")
	assert.Equal(t, "Hope", string(BytesWritable(r.Value())), "The value should survive the end of the file")

	file.Seek(offset1, io.SeekStart)
	r.Reset()
	ok = r.Scan()
	require.NoError(t, r.Err(), "Scan should succeed")
	require.True(t, ok, "Scan should succeed")

	assert.Equal(t, "Alice", string(BytesWritable(r.Key())), "The key should be correct")
	assert.Equal(t, "Practice", string(BytesWritable(r.Value())), "The value should be correct")
}

func TestRoundTripEmptyKeysAndValues(t *testing.T) {
	pairs := []pair{
		{[]byte(""), []byte("")},
		{[]byte("key"), []byte("")},
		{[]byte(""), []byte("value")},
		{[]byte("key"), []byte("value")},
	}

	for _, spec := range files {
		t.Run(spec.name, func(t *testing.T) {
			b := writeFile(t, &WriterConfig{Compression: spec.compression, CompressionCodec: spec.codec}, pairs)
			r, actual := readAll(t, b)
			require.NoError(t, r.Err())
			assertPairs(t, pairs, actual)
		})
	}
}

func TestRoundTripFuzz(t *testing.T) {
	fz := fuzz.NewWithSeed(31415)
	fz.NilChance(0)
	fz.NumElements(1, 300)
	var pairs []pair
	fz.Fuzz(&pairs)

	for _, spec := range files {
		for _, mode := range []BlockSyncMode{SyncAfterBlock, SyncBeforeBlock} {
			t.Run(fmt.Sprintf("%s/%d", spec.name, mode), func(t *testing.T) {
				b := writeFile(t, &WriterConfig{
					Compression:      spec.compression,
					CompressionCodec: spec.codec,
					BlockRecMax:      7,
					BlockSync:        mode,
				}, pairs)
				r, actual := readAll(t, b)
				require.NoError(t, r.Err())
				assertPairs(t, pairs, actual)
			})
		}
	}
}

func TestRoundTripTextValues(t *testing.T) {
	pairs := []pair{
		{[]byte("greeting"), []byte("héllo, wörld")},
		{[]byte("empty"), []byte("")},
		{[]byte("long"), bytes.Repeat([]byte("ü"), 500)},
	}

	for _, spec := range files {
		t.Run(spec.name, func(t *testing.T) {
			b := writeFile(t, &WriterConfig{
				ValueClass:       TextClassName,
				Compression:      spec.compression,
				CompressionCodec: spec.codec,
			}, pairs)
			r, actual := readAll(t, b)
			require.NoError(t, r.Err())
			assert.Equal(t, TextClassName, r.Header.ValueClassName)
			assertPairs(t, pairs, actual)
		})
	}
}

func TestReadTextValueCorrupt(t *testing.T) {
	// A Text value whose length prefix disagrees with the record length.
	b := writeFile(t, &WriterConfig{}, []pair{{[]byte("k"), []byte{0x05, 'a', 'b'}}})
	b = bytes.Replace(b, []byte(BytesWritableClassName+"\x00"), []byte(TextClassName+"\x00"), 1)
	b[4+1+len(BytesWritableClassName)] = byte(len(TextClassName))

	r := NewReader(bytes.NewReader(b))
	require.NoError(t, r.ReadHeader())
	require.Equal(t, TextClassName, r.Header.ValueClassName)
	assert.False(t, r.Scan())
	assert.True(t, errors.Is(r.Err(), ErrCorruptFile), "a bad Text length should be reported as corruption")
}

func TestReadOlderVersions(t *testing.T) {
	for version := 1; version <= 6; version++ {
		for _, compression := range []Compression{NoCompression, RecordCompression, BlockCompression} {
			if compression == RecordCompression && version < compressVersion {
				continue
			} else if compression == BlockCompression && version < blockCompressVersion {
				continue
			}

			t.Run(fmt.Sprintf("v%d %s", version, compression), func(t *testing.T) {
				buf := new(bytes.Buffer)
				w := &writerHelper{w: buf}
				h := Header{
					Version:                   version,
					Compression:               compression,
					CompressionCodecClassName: ZlibClassName,
					KeyClassName:              "k",
					ValueClassName:            "v",
				}
				var sync []byte
				if version >= syncVersion {
					sync = testSync
					h.SyncMarker = sync
				}
				require.NoError(t, writeHeader(w, &h))

				var pairs pairWriter
				switch compression {
				case NoCompression:
					pairs = &uncompressedPairs{w: w, sync: sync}
				case RecordCompression:
					pairs = &recordCompressedPairs{
						uncompressedPairs: uncompressedPairs{w: w, sync: sync},
						compressor:        &zlibCompressor{},
					}
				case BlockCompression:
					pairs = &blockPairs{
						w:          w,
						sync:       sync,
						compressor: &zlibCompressor{},
						recMax:     2,
						blockSize:  defaultBlockSize,
					}
				}

				for _, p := range alicePairs {
					require.NoError(t, pairs.append(p.Key, p.Value))
				}
				require.NoError(t, pairs.flush())

				r, actual := readAll(t, buf.Bytes())
				require.NoError(t, r.Err())
				assert.Equal(t, version, r.Header.Version)
				assert.Equal(t, compression, r.Header.Compression)
				assertPairs(t, alicePairs, actual)
			})
		}
	}
}

func TestReadTruncated(t *testing.T) {
	for _, spec := range files {
		t.Run(spec.name, func(t *testing.T) {
			b := writeFile(t, &WriterConfig{Compression: spec.compression, CompressionCodec: spec.codec}, alicePairs)

			r, _ := readAll(t, b[:len(b)-5])
			assert.True(t, errors.Is(r.Err(), ErrBrokenDataLength), "a truncated file should fail, got %v", r.Err())
			assert.False(t, r.Scan(), "the reader should stay closed after an error")
		})
	}
}

func TestReadInvalidLengths(t *testing.T) {
	h := new(bytes.Buffer)
	w := &writerHelper{w: h}
	require.NoError(t, writeHeader(w, &Header{Version: 6, KeyClassName: "k", ValueClassName: "v", SyncMarker: testSync}))
	header := h.Bytes()

	cases := map[string][]byte{
		"negative record length": {0xff, 0xff, 0xff, 0xfe, 0x00, 0x00, 0x00, 0x00},
		"negative key length":    {0x00, 0x00, 0x00, 0x04, 0xff, 0xff, 0xff, 0xf0},
		"key longer than record": {0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x05, 'a', 'b', 'c', 'd', 'e'},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			r, pairs := readAll(t, append(append([]byte{}, header...), body...))
			assert.Empty(t, pairs)
			assert.True(t, errors.Is(r.Err(), ErrCorruptFile), "expected corruption, got %v", r.Err())
		})
	}
}

func TestReadCodecsNotInterchangeable(t *testing.T) {
	rename := func(b []byte, from, to string) []byte {
		old := append([]byte{byte(len(from))}, from...)
		replacement := append([]byte{byte(len(to))}, to...)
		require.True(t, bytes.Contains(b, old))
		return bytes.Replace(b, old, replacement, 1)
	}

	for _, compression := range []Compression{RecordCompression, BlockCompression} {
		t.Run(compression.String(), func(t *testing.T) {
			gz := writeFile(t, &WriterConfig{Compression: compression, CompressionCodec: GzipCompression}, alicePairs)
			r, pairs := readAll(t, gz)
			require.NoError(t, r.Err(), "gzip data should decode with the gzip codec")
			assertPairs(t, alicePairs, pairs)

			r, pairs = readAll(t, rename(gz, GzipClassName, ZlibClassName))
			assert.Equal(t, ZlibCompression, r.Header.CompressionCodec)
			assert.Empty(t, pairs, "gzip data should not decode as zlib")
			assert.True(t, errors.Is(r.Err(), ErrCorruptFile), "expected corruption, got %v", r.Err())

			z := writeFile(t, &WriterConfig{Compression: compression, CompressionCodec: ZlibCompression}, alicePairs)
			r, pairs = readAll(t, z)
			require.NoError(t, r.Err(), "zlib data should decode with the zlib codec")
			assertPairs(t, alicePairs, pairs)

			r, pairs = readAll(t, rename(z, ZlibClassName, GzipClassName))
			assert.Equal(t, GzipCompression, r.Header.CompressionCodec)
			assert.Empty(t, pairs, "zlib data should not decode as gzip")
			assert.True(t, errors.Is(r.Err(), ErrCorruptFile), "expected corruption, got %v", r.Err())
		})
	}
}

func TestNewReaderCompression(t *testing.T) {
	b := writeFile(t, &WriterConfig{Compression: RecordCompression, CompressionCodec: GzipCompression}, alicePairs)

	// Skip the header by reading it with a throwaway reader.
	br := bytes.NewReader(b)
	require.NoError(t, NewReader(br).ReadHeader())

	r := NewReaderCompression(br, RecordCompression, GzipCompression)
	var actual []pair
	for r.Scan() {
		actual = append(actual, pair{append([]byte{}, r.Key()...), append([]byte{}, r.Value()...)})
	}
	require.NoError(t, r.Err())
	assertPairs(t, alicePairs, actual)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part-00000")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := newTestWriter(t, &WriterConfig{Writer: f, Compression: BlockCompression})
	for _, p := range alicePairs {
		require.NoError(t, w.Append(p.Key, p.Value))
	}
	require.NoError(t, w.Close(), "Close should flush and close the file")

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var actual []pair
	for r.Scan() {
		actual = append(actual, pair{append([]byte{}, r.Key()...), append([]byte{}, r.Value()...)})
	}
	require.NoError(t, r.Err())
	assertPairs(t, alicePairs, actual)

	_, err = Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
