// Package stego conceals and recovers an opaque byte payload inside an
// ImageBuffer's least-significant red-channel bits, in the style of the
// zanicar/stegano Conceal/Reveal pair: a length header followed by the
// payload, bit-packed one bit per pixel.
package stego

import (
	"encoding/binary"
	"fmt"

	imageflow "github.com/imageflow/imageflow"
)

// headerBits is the fixed-width big-endian length header, in bits: a
// uint32 byte count written one bit per pixel before the payload.
const headerBits = 32

// Steganography is the capability this package exposes: how many payload
// bytes a carrier image can hold, and how to conceal/reveal a payload
// within it.
type Steganography interface {
	CapacityBytes(carrier *imageflow.ImageBuffer) int
	Encode(carrier *imageflow.ImageBuffer, payload []byte) (*imageflow.ImageBuffer, error)
	Decode(carrier *imageflow.ImageBuffer) ([]byte, error)
}

// ErrCapacityExceeded is returned by Encode when payload does not fit in
// the carrier's least-significant-bit capacity.
var ErrCapacityExceeded = fmt.Errorf("stego: payload exceeds carrier capacity")

// LSB conceals data in the least significant bit of each pixel's red
// channel, one bit per pixel, header-then-payload.
type LSB struct{}

// CapacityBytes returns the number of payload bytes carrier can hold after
// the fixed 32-bit length header.
func (LSB) CapacityBytes(carrier *imageflow.ImageBuffer) int {
	totalBits := carrier.Width() * carrier.Height()
	if totalBits <= headerBits {
		return 0
	}
	return (totalBits - headerBits) / 8
}

// Encode returns a copy of carrier with payload's length (32-bit
// big-endian) and bytes concealed one bit per pixel in the red channel's
// low bit, in raster order.
func (LSB) Encode(carrier *imageflow.ImageBuffer, payload []byte) (*imageflow.ImageBuffer, error) {
	lsb := LSB{}
	if len(payload) > lsb.CapacityBytes(carrier) {
		return nil, ErrCapacityExceeded
	}

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	bits := bytesToBits(append(header, payload...))

	out := carrier.Clone()
	width := out.Width()
	for i, bit := range bits {
		x, y := i%width, i/width
		p := out.GetPixel(x, y)
		p.R = setLowBit(p.R, bit)
		out.SetPixel(x, y, p)
	}
	return out, nil
}

// Decode extracts the concealed payload from carrier's red-channel low
// bits, reading the 32-bit length header first.
func (LSB) Decode(carrier *imageflow.ImageBuffer) ([]byte, error) {
	width, height := carrier.Width(), carrier.Height()
	totalBits := width * height
	if totalBits < headerBits {
		return nil, fmt.Errorf("stego: carrier too small for header")
	}

	headerBitsBuf := make([]byte, headerBits)
	for i := 0; i < headerBits; i++ {
		x, y := i%width, i/width
		headerBitsBuf[i] = carrier.GetPixel(x, y).R & 1
	}
	header := bitsToBytes(headerBitsBuf)
	length := binary.BigEndian.Uint32(header)

	needBits := int(length) * 8
	if needBits > totalBits-headerBits {
		return nil, fmt.Errorf("stego: decoded length %d exceeds carrier capacity", length)
	}

	payloadBitsBuf := make([]byte, needBits)
	for i := 0; i < needBits; i++ {
		idx := headerBits + i
		x, y := idx%width, idx/width
		payloadBitsBuf[i] = carrier.GetPixel(x, y).R & 1
	}
	return bitsToBytes(payloadBitsBuf), nil
}

func bytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

func bitsToBytes(bits []byte) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | (bits[i*8+j] & 1)
		}
		out[i] = b
	}
	return out
}

func setLowBit(v uint8, bit byte) uint8 {
	return (v &^ 1) | (bit & 1)
}

var _ Steganography = LSB{}
