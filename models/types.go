// Package models contain needed models
package models

import "fmt"

// InsertResponse represents the response after inserting a message
type InsertResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	PSNR    float64 `json:"psnr,omitempty"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AnalyzeResponse represents the capacity report for a carrier WAV file
type AnalyzeResponse struct {
	Success               bool    `json:"success"`
	Channels              int     `json:"channels"`
	ChannelLayout         string  `json:"channel_layout"`
	SampleRate            int     `json:"sample_rate"`
	BitDepth              int     `json:"bit_depth"`
	DurationSeconds       float64 `json:"duration_seconds"`
	TotalSamples          int     `json:"total_samples"`
	RawAudioBytes         int     `json:"raw_audio_bytes"`
	StepRate              int     `json:"step_rate"`
	CapacityBytes         int     `json:"capacity_bytes"`
	CapacityReadable      string  `json:"capacity_readable"`
	AbsoluteCapacityBytes int     `json:"absolute_capacity_bytes"`
	StealthCapacityBytes  int     `json:"stealth_capacity_bytes"`
}

// AudioMetadata represents the format of a loaded PCM WAV stream
type AudioMetadata struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
	Duration   float64
}

// TotalSamples returns the length of the interleaved sample stream.
func (m *AudioMetadata) TotalSamples() int {
	return m.Frames * m.Channels
}

// ChannelLayout returns a human readable channel description.
func (m *AudioMetadata) ChannelLayout() string {
	switch m.Channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%d channels", m.Channels)
	}
}
