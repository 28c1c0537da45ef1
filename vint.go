package sequencefile

import "io"

// ReadVInt reads an int64 encoded in hadoop's "VInt" format, described and
// implemented here: https://goo.gl/1h4mrG. It does at most two reads to the
// underlying io.Reader.
func ReadVInt(r io.Reader) (int64, error) {
	first, err := mustReadByte(r)
	if err != nil {
		return 0, err
	}

	return readVIntRest(int8(first), r)
}

// readVIntRest finishes decoding a VInt whose first byte has already been
// read off r.
func readVIntRest(first int8, r io.Reader) (int64, error) {
	size := decodeVIntSize(first)
	if size == 1 {
		return int64(first), nil
	}

	var buf [8]byte
	rest := buf[:size-1]
	_, err := io.ReadFull(r, rest)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return 0, err
	}

	return decodeVIntBody(first, rest), nil
}

// decodeVIntSize returns the total encoded size of a VInt, including the
// first byte.
func decodeVIntSize(first int8) int {
	v := int(first)
	if v >= -112 {
		return 1
	} else if v < -120 {
		return -119 - v
	}
	return -111 - v
}

func isNegativeVInt(first int8) bool {
	v := int(first)
	return v < -120 || (v >= -112 && v < 0)
}

func decodeVIntBody(first int8, b []byte) int64 {
	var res uint64
	for _, c := range b {
		res = (res << 8) | uint64(c)
	}

	if isNegativeVInt(first) {
		res = ^res
	}

	return int64(res)
}

func mustReadByte(r io.Reader) (byte, error) {
	var b byte
	var err error

	if br, ok := r.(io.ByteReader); ok {
		b, err = br.ReadByte()
	} else {
		var buf [1]byte
		_, err = io.ReadFull(r, buf[:])
		b = buf[0]
	}

	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return b, err
}

// PutVInt encodes n in hadoop's "VInt" format.
func PutVInt(n int64) []byte {
	if n >= -112 && n <= 127 {
		return []byte{byte(n)}
	}

	length := -112
	if n < 0 {
		n ^= -1
		length = -120
	}

	for tmp := n; tmp != 0; tmp >>= 8 {
		length--
	}

	lengthByte := byte(length)
	if length < -120 {
		length = -(length + 120)
	} else {
		length = -(length + 112)
	}

	b := make([]byte, length+1)
	b[0] = lengthByte
	for i := 1; i <= length; i++ {
		b[i] = byte(n >> uint(8*(length-i)))
	}

	return b
}

// WriteVInt writes n to w in hadoop's "VInt" format, returning the number of
// bytes written.
func WriteVInt(w io.Writer, n int64) (int, error) {
	return w.Write(PutVInt(n))
}
