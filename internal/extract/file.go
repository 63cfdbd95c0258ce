package extract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/markusmobius/go-trafilatura"

	"github.com/Devam42/Answerly-chatbot/internal/audio"
)

// documentExtensions are handled by the format-specific text extractors.
var documentExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "txt": true,
	"csv": true, "xls": true, "xlsx": true, "html": true,
}

// mediaExtensions are routed to Whisper transcription instead of
// document extraction.
var mediaExtensions = map[string]bool{
	"mp3": true, "mp4": true, "wav": true, "avi": true,
	"mkv": true, "flv": true, "mov": true,
}

// FileExtension returns the lower-cased extension of filename without the dot.
func FileExtension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// AllowedFile reports whether the filename carries a supported extension.
func AllowedFile(filename string) bool {
	ext := FileExtension(filename)
	return documentExtensions[ext] || mediaExtensions[ext]
}

// FileExtractor turns an uploaded file into plain text, dispatching on the
// file extension. Audio and video files go through the transcription service.
type FileExtractor struct {
	transcriber *audio.Service
}

// NewFileExtractor creates a file extractor.
func NewFileExtractor(transcriber *audio.Service) *FileExtractor {
	return &FileExtractor{transcriber: transcriber}
}

// Extract reads the file stored at path and returns its plain text.
// filename is the user-supplied name whose extension selects the decoder.
func (e *FileExtractor) Extract(ctx context.Context, path, filename string) (string, error) {
	ext := FileExtension(filename)

	if mediaExtensions[ext] {
		if e.transcriber == nil {
			return "", fmt.Errorf("transcription is not configured")
		}
		log.Printf("🎵 [EXTRACT] Transcribing media file %s", filename)
		return e.transcriber.Transcribe(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	switch ext {
	case "pdf":
		return extractPDFText(data)
	case "doc", "docx":
		return extractDOCXText(data)
	case "txt":
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("text file is empty")
		}
		return text, nil
	case "csv":
		return extractCSVText(data)
	case "xls", "xlsx":
		return extractSpreadsheetText(data)
	case "html":
		return extractHTMLText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// extractHTMLText pulls the readable content out of an HTML document.
func extractHTMLText(data []byte) (string, error) {
	result, err := trafilatura.Extract(bytes.NewReader(data), trafilatura.Options{})
	if err != nil {
		return "", fmt.Errorf("failed to extract HTML content: %w", err)
	}
	if result == nil || result.ContentText == "" {
		return "", fmt.Errorf("no readable content in HTML document")
	}
	return result.ContentText, nil
}
