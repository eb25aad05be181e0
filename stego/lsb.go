// Package stego to implement LSB
package stego

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// LengthPrefixBits is the width of the big-endian payload length header
	// embedded ahead of the payload bits.
	LengthPrefixBits = 32

	// DefaultStealthStep is the sample stride below which LSB changes start
	// to become audible in informal listening tests. Advisory only, never
	// enforced by the codec.
	DefaultStealthStep = 100
)

// ErrCorruptData means the decoded length prefix implies more samples than
// the stream holds, i.e. the file was not produced by this codec at this
// step rate.
var ErrCorruptData = errors.New("corrupt stego data")

// CapacityError reports an embed request that does not fit the sample stream.
type CapacityError struct {
	RequiredSamples  int
	AvailableSamples int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("payload too large: required %d samples, available %d samples",
		e.RequiredSamples, e.AvailableSamples)
}

// LSBCodec embeds a length-prefixed payload in the least significant bit of
// every step-th sample of an interleaved PCM stream, and extracts it back.
// Both operations are pure: no state survives between calls, and the same
// inputs always produce the same outputs.
type LSBCodec struct {
	step int
}

func NewLSBCodec(step int) (*LSBCodec, error) {
	if step < 1 {
		return nil, fmt.Errorf("invalid step rate %d: must be at least 1", step)
	}
	return &LSBCodec{step: step}, nil
}

func (c *LSBCodec) Step() int {
	return c.step
}

// AbsoluteCapacityBits returns the payload bits a stream of sampleCount
// samples can carry at step 1, after reserving the length prefix.
func AbsoluteCapacityBits(sampleCount int) int {
	if sampleCount <= LengthPrefixBits {
		return 0
	}
	return sampleCount - LengthPrefixBits
}

// StealthCapacityBits returns the payload bits that fit while keeping the
// stride at DefaultStealthStep. Callers decide whether to go past it.
func StealthCapacityBits(sampleCount int) int {
	return AbsoluteCapacityBits(sampleCount) / DefaultStealthStep
}

// CapacityBytes returns the whole payload bytes that fit at the codec's
// own step rate.
func (c *LSBCodec) CapacityBytes(sampleCount int) int {
	bits := sampleCount/c.step - LengthPrefixBits
	if bits < 0 {
		return 0
	}
	return bits / 8
}

// Embed writes payload into a copy of samples and returns the copy; the
// input stream is left untouched. Bit i of the prefix-plus-payload stream,
// most significant bit first within each byte, lands in the least
// significant bit of samples[i*step]. Every other bit of the stream is
// preserved exactly.
func (c *LSBCodec) Embed(samples []int, payload []byte) ([]int, error) {
	totalBits := LengthPrefixBits + len(payload)*8
	required := requiredSamples(totalBits, c.step)
	if required > len(samples) {
		return nil, &CapacityError{
			RequiredSamples:  required,
			AvailableSamples: len(samples),
		}
	}

	var prefix [LengthPrefixBits / 8]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))

	stegoSamples := make([]int, len(samples))
	copy(stegoSamples, samples)

	writeBits(stegoSamples, prefix[:], 0, c.step)
	writeBits(stegoSamples, payload, LengthPrefixBits, c.step)

	return stegoSamples, nil
}

// Extract reads the length prefix and payload back from the sample LSBs.
// It fails with ErrCorruptData when the stream is too short for a prefix or
// the decoded length implies more samples than the stream holds.
func (c *LSBCodec) Extract(samples []int) ([]byte, error) {
	if requiredSamples(LengthPrefixBits, c.step) > len(samples) {
		return nil, fmt.Errorf("%w: %d samples is too short for a length prefix at step %d",
			ErrCorruptData, len(samples), c.step)
	}

	prefix := readBits(samples, 0, LengthPrefixBits/8, c.step)
	payloadLen := binary.BigEndian.Uint32(prefix)

	// Division keeps the fit check exact even when totalBits*step would
	// wrap an int64.
	totalBits := int64(LengthPrefixBits) + int64(payloadLen)*8
	if int64(c.step) > int64(len(samples))/totalBits {
		return nil, fmt.Errorf("%w: decoded length %d does not fit %d samples at step %d",
			ErrCorruptData, payloadLen, len(samples), c.step)
	}

	return readBits(samples, LengthPrefixBits, int(payloadLen), c.step), nil
}

// requiredSamples is totalBits*step without wrapping: on overflow it
// saturates, which is beyond any stream that can exist in memory. totalBits
// is always at least LengthPrefixBits.
func requiredSamples(totalBits, step int) int {
	if step > math.MaxInt/totalBits {
		return math.MaxInt
	}
	return totalBits * step
}

// writeBits stores each bit of data, most significant first, into the LSB of
// every step-th sample starting at bit offset bitOffset.
func writeBits(samples []int, data []byte, bitOffset, step int) {
	for i, b := range data {
		for j := range 8 {
			bit := int(b>>(7-j)) & 1
			idx := (bitOffset + i*8 + j) * step
			samples[idx] = (samples[idx] &^ 1) | bit
		}
	}
}

// readBits reassembles byteCount bytes, most significant bit first, from the
// LSB of every step-th sample starting at bit offset bitOffset.
func readBits(samples []int, bitOffset, byteCount, step int) []byte {
	out := make([]byte, byteCount)
	for i := range out {
		var b byte
		for j := range 8 {
			b = (b << 1) | byte(samples[(bitOffset+i*8+j)*step]&1)
		}
		out[i] = b
	}
	return out
}
