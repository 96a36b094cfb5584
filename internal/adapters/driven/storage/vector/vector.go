// Package vector holds the similarity and encoding helpers shared by stores that
// score embeddings in process.
package vector

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrMalformed is returned when an encoded vector has a length that is not a multiple of 4.
var ErrMalformed = errors.New("malformed vector encoding")

// Similarity returns 1 - cosine distance between a and b, which equals their cosine similarity.
// Vectors of different length, or with zero magnitude, have similarity 0.
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Encode converts a float32 slice to little-endian bytes for BLOB storage.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode converts little-endian bytes back to a float32 slice.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, ErrMalformed
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
