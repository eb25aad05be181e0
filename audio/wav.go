// Package audio handles WAV container decoding and encoding
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/EdTheDev254/audio-steganography/models"
)

// WAV format tag for uncompressed PCM
const wavFormatPCM = 1

// ErrUnsupportedFormat is returned when a file is not uncompressed PCM or
// uses a bit depth other than 8, 16, 24 or 32.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

func supportedBitDepth(depth int) bool {
	switch depth {
	case 8, 16, 24, 32:
		return true
	default:
		return false
	}
}

// Load reads a PCM WAV file and returns its interleaved sample stream plus
// the format metadata needed to write the samples back unchanged. Samples are
// decoded the way go-audio stores them: 8-bit unsigned, 16/24/32-bit signed
// little-endian. Save uses the same convention, so load/save round-trips are
// bit-for-bit stable.
func Load(path string) ([]int, *models.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		if err := decoder.Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to parse WAV header: %w", err)
		}
		return nil, nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, nil, fmt.Errorf("%w: format tag %d, only uncompressed PCM (1) is supported",
			ErrUnsupportedFormat, decoder.WavAudioFormat)
	}
	bitDepth := int(decoder.BitDepth)
	if !supportedBitDepth(bitDepth) {
		return nil, nil, fmt.Errorf("%w: bit depth %d, supported depths are 8, 16, 24 and 32",
			ErrUnsupportedFormat, bitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}

	// A data chunk that declares more bytes than the file holds decodes
	// short; reject it instead of returning a partial stream.
	if declared := decoder.PCMSize / (bitDepth / 8); len(buf.Data) < declared {
		return nil, nil, fmt.Errorf("truncated WAV file: data chunk declares %d samples, only %d present",
			declared, len(buf.Data))
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	if channels <= 0 || sampleRate <= 0 {
		return nil, nil, fmt.Errorf("%w: invalid channel count %d or sample rate %d",
			ErrUnsupportedFormat, channels, sampleRate)
	}

	frames := len(buf.Data) / channels
	metadata := &models.AudioMetadata{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Frames:     frames,
		Duration:   float64(frames) / float64(sampleRate),
	}

	return buf.Data, metadata, nil
}

// Save encodes the interleaved samples as a PCM WAV file at path, using the
// same bit depth and sample convention as Load. The data is written to a
// temporary file in the destination directory and renamed into place, so a
// failed write never leaves a truncated WAV behind.
func Save(path string, samples []int, metadata *models.AudioMetadata) error {
	if !supportedBitDepth(metadata.BitDepth) {
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, metadata.BitDepth)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".stego_*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	discard := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	encoder := wav.NewEncoder(tmp, metadata.SampleRate, metadata.BitDepth, metadata.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: metadata.Channels,
			SampleRate:  metadata.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: metadata.BitDepth,
	}

	if err := encoder.Write(buf); err != nil {
		discard()
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := encoder.Close(); err != nil {
		discard()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move WAV into place: %w", err)
	}

	return nil
}
