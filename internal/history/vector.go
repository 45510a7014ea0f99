package history

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// serializeVector packs v as little-endian float32 and base64-encodes the
// result for storage in the EmbeddingVector text column.
func serializeVector(v []float32) string {
	if len(v) == 0 {
		return ""
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// deserializeVector reverses serializeVector. An empty or malformed string
// yields a nil vector.
func deserializeVector(encoded string) []float32 {
	if encoded == "" {
		return nil
	}
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(buf)%4 != 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosineSimilarity returns the cosine similarity of a and b, or 0 if
// either has zero magnitude or they differ in length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		fa, fb := float64(a[i]), float64(b[i])
		dot += fa * fb
		magA += fa * fa
		magB += fb * fb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
