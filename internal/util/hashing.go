package util

import (
	"bytes"
	"crypto/sha256"
	"strconv"
)

// HashVector is a stable digest of a vector, used as a cache key.
func HashVector(vec []float64) [32]byte {
	var sum [32]byte
	_ = WithBuffer(func(buf *bytes.Buffer) error {
		for i := range vec {
			buf.WriteString(strconv.FormatFloat(vec[i], 'g', -1, 64))
			buf.WriteByte(';')
		}
		sum = sha256.Sum256(buf.Bytes())
		return nil
	})
	return sum
}
