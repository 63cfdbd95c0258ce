package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/Devam42/Answerly-chatbot/internal/audio"
)

func TestExtractVideoID(t *testing.T) {
	e := NewYouTubeExtractor("", nil)

	valid := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":  "dQw4w9WgXcQ",
		"http://youtube.com/watch?v=dQw4w9WgXcQ&t=10s": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                 "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":    "dQw4w9WgXcQ",
		"www.youtube.com/watch?v=a1B2c3D4e5F":          "a1B2c3D4e5F",
	}

	for link, want := range valid {
		got, err := e.ExtractVideoID(link)
		if err != nil {
			t.Errorf("ExtractVideoID(%q) failed: %v", link, err)
			continue
		}
		if got != want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", link, got, want)
		}
	}

	invalid := []string{
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/short",
		"not a link at all",
		"",
	}
	for _, link := range invalid {
		if _, err := e.ExtractVideoID(link); err == nil {
			t.Errorf("ExtractVideoID(%q) should have failed", link)
		}
	}
}

func TestMetadataFetchesAndCaches(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("url"); !strings.Contains(got, "dQw4w9WgXcQ") {
			t.Errorf("Expected video URL in oEmbed query, got %q", got)
		}
		w.Write([]byte(`{"title":"Test Video","author_name":"Test Channel"}`))
	}))
	defer server.Close()

	e := NewYouTubeExtractor("", nil)
	e.oembedURL = server.URL

	meta, err := e.Metadata(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta.Title != "Test Video" || meta.Author != "Test Channel" {
		t.Errorf("Unexpected metadata: %+v", meta)
	}

	if _, err := e.Metadata(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Cached metadata lookup failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 oEmbed request, got %d", calls)
	}
}

func TestMetadataErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := NewYouTubeExtractor("", nil)
	e.oembedURL = server.URL

	if _, err := e.Metadata(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("Expected error for 404 oEmbed response")
	}
}

func TestTranscriptService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.Write([]byte(`{"transcript":"hello from the video"}`))
	}))
	defer server.Close()

	e := NewYouTubeExtractor(server.URL, nil)
	text, err := e.Transcript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if text != "hello from the video" {
		t.Errorf("Unexpected transcript: %q", text)
	}
}

func TestTranscriptUnconfigured(t *testing.T) {
	e := NewYouTubeExtractor("", nil)
	if _, err := e.Transcript(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("Expected error when no transcript service is configured")
	}
}

func TestTranscriptEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript":""}`))
	}))
	defer server.Close()

	e := NewYouTubeExtractor(server.URL, nil)
	if _, err := e.Transcript(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("Expected error for empty transcript")
	}
}

// fakeDownloader serves a fixed audio stream without touching the network.
type fakeDownloader struct {
	streamErr error
}

func (f *fakeDownloader) GetVideoContext(ctx context.Context, id string) (*ytdl.Video, error) {
	return &ytdl.Video{
		ID: id,
		Formats: ytdl.FormatList{
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`},
		},
	}, nil
}

func (f *fakeDownloader) GetStreamContext(ctx context.Context, video *ytdl.Video, format *ytdl.Format) (io.ReadCloser, int64, error) {
	if f.streamErr != nil {
		return nil, 0, f.streamErr
	}
	data := "fake audio bytes"
	return io.NopCloser(strings.NewReader(data)), int64(len(data)), nil
}

func TestTranscriptFallsBackToAudioTranscription(t *testing.T) {
	transcriptServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer transcriptServer.Close()

	whisperServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("Unexpected Whisper path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
		}
		w.Write([]byte(`{"text":"spoken words from the audio track","duration":4.2}`))
	}))
	defer whisperServer.Close()

	e := NewYouTubeExtractor(transcriptServer.URL, audio.NewService(whisperServer.URL, "test-key", "whisper-1"))
	e.downloader = &fakeDownloader{}

	text, err := e.Transcript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if text != "spoken words from the audio track" {
		t.Errorf("Unexpected transcript: %q", text)
	}
}

func TestTranscriptFallbackDownloadFailure(t *testing.T) {
	e := NewYouTubeExtractor("", audio.NewService("http://localhost:1", "test-key", "whisper-1"))
	e.downloader = &fakeDownloader{streamErr: fmt.Errorf("stream unavailable")}

	_, err := e.Transcript(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("Expected error when the audio stream cannot be downloaded")
	}
	if !strings.Contains(err.Error(), "failed to download audio") {
		t.Errorf("Unexpected error: %v", err)
	}
}
