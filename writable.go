package sequencefile

import (
	"encoding/binary"
	"fmt"
)

// BytesWritable unwraps a hadoop BytesWritable and returns the actual bytes.
func BytesWritable(b []byte) []byte {
	if len(b) < 4 {
		return nil
	}
	return b[4:]
}

// PutBytesWritable wraps b as a hadoop BytesWritable, with a four-byte length
// in front.
func PutBytesWritable(b []byte) []byte {
	res := make([]byte, 4, 4+len(b))
	binary.BigEndian.PutUint32(res, uint32(len(b)))
	return append(res, b...)
}

// Text unwraps a Text and returns the deserialized string.
func Text(b []byte) (string, error) {
	s, err := unwrapText(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// PutText wraps UTF-8 bytes as a hadoop Text, with a VInt length in front.
func PutText(b []byte) []byte {
	res := PutVInt(int64(len(b)))
	return append(res, b...)
}

func unwrapText(b []byte) ([]byte, error) {
	var d dataBuffer
	d.set(b)
	n, err := d.readVInt()
	if err != nil {
		return nil, fmt.Errorf("%w: unwrapping Text: %v", ErrCorruptFile, err)
	}

	if n < 0 || int(n) != len(b)-d.pos {
		return nil, fmt.Errorf("%w: unwrapping Text: bad length %d", ErrCorruptFile, n)
	}

	return b[d.pos:], nil
}
