package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service handles audio and video transcription through a Whisper-compatible
// API (OpenAI or Groq).
type Service struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewService creates a transcription service for the given provider.
func NewService(baseURL, apiKey, model string) *Service {
	return &Service{
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Whisper can take a while for long audio
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// Transcribe uploads the media file at audioPath and returns its transcript.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (string, error) {
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audioFile.Close()

	fileInfo, err := audioFile.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat audio file: %w", err)
	}

	log.Printf("🎵 [AUDIO] Sending audio to Whisper API (%d bytes, model: %s)", fileInfo.Size(), s.model)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return "", fmt.Errorf("failed to copy audio data: %w", err)
	}

	if err := writer.WriteField("model", s.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return "", fmt.Errorf("failed to write response_format field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	endpoint := s.baseURL + "/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [AUDIO] Whisper API error: %d - %s", resp.StatusCode, string(respBody))

		var errorResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return "", fmt.Errorf("whisper API error: %s", errorResp.Error.Message)
		}
		return "", fmt.Errorf("whisper API error: %d", resp.StatusCode)
	}

	var apiResp struct {
		Text     string  `json:"text"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}

	log.Printf("✅ [AUDIO] Transcription successful (%d chars, %.1fs duration)", len(apiResp.Text), apiResp.Duration)

	return apiResp.Text, nil
}
