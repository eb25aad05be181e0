package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/EdTheDev254/audio-steganography/models"
)

// testSamples builds an interleaved stream with values spanning the legal
// range for the depth, including the extremes.
func testSamples(n, bitDepth int) []int {
	samples := make([]int, n)
	for i := range samples {
		switch bitDepth {
		case 8:
			samples[i] = (i * 37) % 256
		case 16:
			samples[i] = (i*7919)%65536 - 32768
		case 24:
			samples[i] = (i*104729)%(1<<24) - (1 << 23)
		case 32:
			samples[i] = ((i*7919)%65536 - 32768) * 65536
		default:
			samples[i] = (i*7919)%65536 - 32768
		}
	}
	samples[0] = 0
	if bitDepth == 8 {
		samples[n-1] = 255
	} else {
		samples[n-1] = (1 << (bitDepth - 1)) - 1
	}
	return samples
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		channels   int
		sampleRate int
		bitDepth   int
		frames     int
	}{
		{"mono 8-bit", 1, 8000, 8, 400},
		{"mono 16-bit", 1, 44100, 16, 441},
		{"stereo 16-bit", 2, 44100, 16, 300},
		{"stereo 24-bit", 2, 48000, 24, 200},
		{"mono 32-bit", 1, 96000, 32, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "roundtrip.wav")
			samples := testSamples(tt.frames*tt.channels, tt.bitDepth)
			metadata := &models.AudioMetadata{
				SampleRate: tt.sampleRate,
				Channels:   tt.channels,
				BitDepth:   tt.bitDepth,
				Frames:     tt.frames,
			}

			if err := Save(path, samples, metadata); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, loadedMeta, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if loadedMeta.Channels != tt.channels || loadedMeta.SampleRate != tt.sampleRate ||
				loadedMeta.BitDepth != tt.bitDepth || loadedMeta.Frames != tt.frames {
				t.Errorf("metadata mismatch: got %+v", loadedMeta)
			}
			if len(loaded) != len(samples) {
				t.Fatalf("sample count mismatch: got %d, want %d", len(loaded), len(samples))
			}
			for i := range samples {
				if loaded[i] != samples[i] {
					t.Fatalf("sample %d mismatch: got %d, want %d", i, loaded[i], samples[i])
				}
			}
		})
	}
}

// Saving a loaded file and loading it again must not drift.
func TestLoadSaveLoadIsStable(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.wav")
	second := filepath.Join(dir, "second.wav")

	samples := testSamples(1000, 16)
	metadata := &models.AudioMetadata{SampleRate: 44100, Channels: 2, BitDepth: 16, Frames: 500}
	if err := Save(first, samples, metadata); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded1, meta1, err := Load(first)
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	if err := Save(second, loaded1, meta1); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	loaded2, meta2, err := Load(second)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	if *meta1 != *meta2 {
		t.Errorf("metadata drift: %+v vs %+v", meta1, meta2)
	}
	for i := range loaded1 {
		if loaded1[i] != loaded2[i] {
			t.Fatalf("sample drift at %d: %d vs %d", i, loaded1[i], loaded2[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Error("Load of garbage bytes should fail")
	}
}

// writeRawWAV builds a minimal 44-byte-header WAV with an arbitrary format
// tag and bit depth, for exercising the PCM validation paths.
func writeRawWAV(t *testing.T, path string, formatTag, bitDepth uint16) {
	t.Helper()

	data := make([]byte, 64)
	dataSize := uint32(len(data))
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatTag)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], 44100)
	byteRate := uint32(44100) * uint32(bitDepth) / 8
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], bitDepth/8)
	binary.LittleEndian.PutUint16(header[34:36], bitDepth)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		t.Fatal(err)
	}
}

// A data chunk whose declared size exceeds the bytes actually present must
// be rejected, not decoded into a partial stream.
func TestLoadRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "full.wav")
	samples := testSamples(1000, 16)
	metadata := &models.AudioMetadata{SampleRate: 44100, Channels: 1, BitDepth: 16, Frames: 1000}
	if err := Save(path, samples, metadata); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "truncated.wav")
	if err := os.WriteFile(truncated, data[:len(data)-500], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(truncated); err == nil {
		t.Error("Load of a truncated file should fail")
	}
}

func TestLoadRejectsNonPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	writeRawWAV(t, path, 3, 32) // IEEE float format tag

	_, _, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load of a non-PCM file should fail with ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadRejectsOddBitDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.wav")
	writeRawWAV(t, path, 1, 12)

	_, _, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load of a 12-bit file should fail with ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveLeavesNoFileOnBadDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	metadata := &models.AudioMetadata{SampleRate: 44100, Channels: 1, BitDepth: 13, Frames: 10}
	if err := Save(path, make([]int, 10), metadata); err == nil {
		t.Fatal("Save with an unsupported depth should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed Save must not leave a file at the destination")
	}
}
