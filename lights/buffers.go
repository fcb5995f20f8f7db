package lights

import (
	"encoding/binary"
	"math"

	"github.com/achilleasa/emissive/types"
)

// Wire strides in bytes. All values are little endian float32.
const (
	PositionStride = 12
	UVStride       = 8
	TexelSumStride = 16
)

// Serialize vertex positions (3 x float32 per vertex).
func EncodePositions(positions []types.Vec3) []byte {
	out := make([]byte, len(positions)*PositionStride)
	for idx, p := range positions {
		putFloats(out[idx*PositionStride:], p[:])
	}
	return out
}

// Deserialize vertex positions.
func DecodePositions(data []byte) ([]types.Vec3, error) {
	if len(data)%PositionStride != 0 {
		return nil, ErrInvalidBufferSize
	}
	out := make([]types.Vec3, len(data)/PositionStride)
	for idx := range out {
		getFloats(data[idx*PositionStride:], out[idx][:])
	}
	return out, nil
}

// Serialize texture coordinates (2 x float32 per vertex).
func EncodeUVs(uvs []types.Vec2) []byte {
	out := make([]byte, len(uvs)*UVStride)
	for idx, uv := range uvs {
		putFloats(out[idx*UVStride:], uv[:])
	}
	return out
}

// Deserialize texture coordinates.
func DecodeUVs(data []byte) ([]types.Vec2, error) {
	if len(data)%UVStride != 0 {
		return nil, ErrInvalidBufferSize
	}
	out := make([]types.Vec2, len(data)/UVStride)
	for idx := range out {
		getFloats(data[idx*UVStride:], out[idx][:])
	}
	return out, nil
}

// Serialize texel sums (4 x float32 per triangle).
func EncodeTexelSums(sums TexelSums) []byte {
	out := make([]byte, len(sums)*TexelSumStride)
	for idx, s := range sums {
		putFloats(out[idx*TexelSumStride:], s[:])
	}
	return out
}

// Deserialize texel sums.
func DecodeTexelSums(data []byte) (TexelSums, error) {
	if len(data)%TexelSumStride != 0 {
		return nil, ErrInvalidBufferSize
	}
	out := make(TexelSums, len(data)/TexelSumStride)
	for idx := range out {
		getFloats(data[idx*TexelSumStride:], out[idx][:])
	}
	return out, nil
}

func putFloats(dst []byte, values []float32) {
	for idx, v := range values {
		binary.LittleEndian.PutUint32(dst[idx*4:], math.Float32bits(v))
	}
}

func getFloats(src []byte, values []float32) {
	for idx := range values {
		values[idx] = math.Float32frombits(binary.LittleEndian.Uint32(src[idx*4:]))
	}
}
