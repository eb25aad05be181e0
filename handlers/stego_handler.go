// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EdTheDev254/audio-steganography/audio"
	"github.com/EdTheDev254/audio-steganography/models"
	"github.com/EdTheDev254/audio-steganography/stego"
)

const maxUploadBytes = 32 << 20 // 32MB limit

type StegoHandler struct{}

func NewStegoHandler() *StegoHandler {
	return &StegoHandler{}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "1.0.0",
	})
}

// InsertMessage embeds an uploaded secret into an uploaded carrier WAV and
// streams the stego WAV back.
func (h *StegoHandler) InsertMessage(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.InsertResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	step, err := parseStep(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.InsertResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	secretData, err := readSecret(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.InsertResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	audioFile, audioHeader, err := c.Request.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.InsertResponse{
			Success: false,
			Message: "Audio file is required",
		})
		return
	}
	defer audioFile.Close()

	if !isValidWAVFile(audioHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.InsertResponse{
			Success: false,
			Message: "Invalid audio file format. Only WAV files are supported",
		})
		return
	}

	samples, metadata, status, err := loadUploadedWAV(audioFile)
	if err != nil {
		c.JSON(status, models.InsertResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to load audio file: %v", err),
		})
		return
	}

	codec, err := stego.NewLSBCodec(step)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.InsertResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	stegoSamples, err := codec.Embed(samples, secretData)
	if err != nil {
		var capErr *stego.CapacityError
		if errors.As(err, &capErr) {
			c.JSON(http.StatusBadRequest, models.InsertResponse{
				Success: false,
				Message: fmt.Sprintf("Secret data too large at step %d: required %d samples, available %d. Use a smaller step or a shorter message",
					step, capErr.RequiredSamples, capErr.AvailableSamples),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.InsertResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to embed secret data: %v", err),
		})
		return
	}

	psnr := audio.CalculatePSNR(samples, stegoSamples, metadata.BitDepth)

	stegoWAV, err := encodeToWAVBytes(stegoSamples, metadata)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.InsertResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to encode stego WAV: %v", err),
		})
		return
	}

	baseFilename := strings.TrimSuffix(audioHeader.Filename, filepath.Ext(audioHeader.Filename))
	outputFilename := fmt.Sprintf("%s_stego.wav", baseFilename)

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(stegoWAV)))

	c.Header("X-Stego-Method", "Interleaved LSB")
	c.Header("X-Stego-Step", strconv.Itoa(step))
	c.Header("X-Stego-PSNR", fmt.Sprintf("%.2f", psnr))
	c.Header("X-Stego-Capacity", strconv.Itoa(codec.CapacityBytes(len(samples))))
	if step < stego.DefaultStealthStep {
		c.Header("X-Stego-Warning", fmt.Sprintf("step %d is below the stealth threshold %d, modifications may be audible",
			step, stego.DefaultStealthStep))
	}

	c.Data(http.StatusOK, "audio/wav", stegoWAV)
}

// ExtractMessage recovers the secret from an uploaded stego WAV and streams
// it back as a file.
func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	step, err := parseStep(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	stegoFile, stegoHeader, err := c.Request.FormFile("stego_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: "Stego audio file is required",
		})
		return
	}
	defer stegoFile.Close()

	if !isValidWAVFile(stegoHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: "Invalid audio file format. Only WAV files are supported",
		})
		return
	}

	samples, _, status, err := loadUploadedWAV(stegoFile)
	if err != nil {
		c.JSON(status, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to load stego audio file: %v", err),
		})
		return
	}

	codec, err := stego.NewLSBCodec(step)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	secretData, err := codec.Extract(samples)
	if err != nil {
		if errors.Is(err, stego.ErrCorruptData) {
			c.JSON(http.StatusUnprocessableEntity, models.ExtractResponse{
				Success: false,
				Message: fmt.Sprintf("No valid message found: %v. The file may not contain embedded data, or a different step rate was used for embedding", err),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to extract secret data: %v", err),
		})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", "attachment; filename=secret_message.txt")
	c.Header("Content-Length", fmt.Sprintf("%d", len(secretData)))
	c.Header("X-Stego-Step", strconv.Itoa(step))

	c.Data(http.StatusOK, "application/octet-stream", secretData)
}

// AnalyzeAudio reports the format and storage capacity of an uploaded
// carrier WAV without modifying it.
func (h *StegoHandler) AnalyzeAudio(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": fmt.Sprintf("Failed to parse form: %v", err)})
		return
	}

	step, err := parseStep(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	audioFile, audioHeader, err := c.Request.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Audio file is required"})
		return
	}
	defer audioFile.Close()

	if !isValidWAVFile(audioHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid audio file format. Only WAV files are supported"})
		return
	}

	samples, metadata, status, err := loadUploadedWAV(audioFile)
	if err != nil {
		c.JSON(status, gin.H{"success": false, "message": fmt.Sprintf("Failed to load audio file: %v", err)})
		return
	}

	codec, err := stego.NewLSBCodec(step)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	capacityBytes := codec.CapacityBytes(len(samples))
	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Success:               true,
		Channels:              metadata.Channels,
		ChannelLayout:         metadata.ChannelLayout(),
		SampleRate:            metadata.SampleRate,
		BitDepth:              metadata.BitDepth,
		DurationSeconds:       metadata.Duration,
		TotalSamples:          len(samples),
		RawAudioBytes:         len(samples) * metadata.BitDepth / 8,
		StepRate:              step,
		CapacityBytes:         capacityBytes,
		CapacityReadable:      readableSize(capacityBytes),
		AbsoluteCapacityBytes: stego.AbsoluteCapacityBits(len(samples)) / 8,
		StealthCapacityBytes:  stego.StealthCapacityBits(len(samples)) / 8,
	})
}

// parseStep reads the optional step form field, defaulting to the stealth
// threshold.
func parseStep(c *gin.Context) (int, error) {
	stepStr := c.PostForm("step")
	if stepStr == "" {
		return stego.DefaultStealthStep, nil
	}
	step, err := strconv.Atoi(stepStr)
	if err != nil || step < 1 {
		return 0, fmt.Errorf("step must be a positive integer, got %q", stepStr)
	}
	return step, nil
}

// readSecret takes the message from the "message" form field, or from an
// uploaded "secret_file" when the field is absent. An empty field is a valid
// empty payload.
func readSecret(c *gin.Context) ([]byte, error) {
	if message, ok := c.GetPostForm("message"); ok {
		return []byte(message), nil
	}

	secretFile, _, err := c.Request.FormFile("secret_file")
	if err != nil {
		return nil, fmt.Errorf("a message field or secret_file upload is required")
	}
	defer secretFile.Close()

	secretData, err := io.ReadAll(secretFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %v", err)
	}
	return secretData, nil
}

// loadUploadedWAV spools the upload to a temporary file so the path-based
// accessor can decode it. Returns the HTTP status to use when err is non-nil.
func loadUploadedWAV(upload multipart.File) ([]int, *models.AudioMetadata, int, error) {
	tmp, err := os.CreateTemp("", "stego_in_*.wav")
	if err != nil {
		return nil, nil, http.StatusInternalServerError, fmt.Errorf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, upload); err != nil {
		return nil, nil, http.StatusInternalServerError, fmt.Errorf("failed to spool upload: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, nil, http.StatusInternalServerError, fmt.Errorf("failed to close temp file: %v", err)
	}

	samples, metadata, err := audio.Load(tmp.Name())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, audio.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		return nil, nil, status, err
	}
	return samples, metadata, http.StatusOK, nil
}

// encodeToWAVBytes writes the samples through the accessor and reads the
// resulting file back for streaming.
func encodeToWAVBytes(samples []int, metadata *models.AudioMetadata) ([]byte, error) {
	dir, err := os.MkdirTemp("", "stego_out_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	outPath := filepath.Join(dir, "out.wav")
	if err := audio.Save(outPath, samples, metadata); err != nil {
		return nil, err
	}
	return os.ReadFile(outPath)
}

func isValidWAVFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".wav"
}

// readableSize formats a byte count the way the analysis report shows it.
func readableSize(n int) string {
	switch {
	case n > 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n > 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
