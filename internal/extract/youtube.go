package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	ytdl "github.com/kkdai/youtube/v2"
	cache "github.com/patrickmn/go-cache"

	"github.com/Devam42/Answerly-chatbot/internal/audio"
	"github.com/Devam42/Answerly-chatbot/internal/models"
)

// videoIDPattern matches the 11-character video ID in the common YouTube
// URL shapes (watch, embed, short youtu.be links).
var videoIDPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

const oembedEndpoint = "https://www.youtube.com/oembed"

// maxAudioDownloadSize bounds the audio stream downloaded for the
// transcription fallback (100MB).
const maxAudioDownloadSize = 100 * 1024 * 1024

// videoDownloader is the part of the YouTube download client the audio
// fallback needs.
type videoDownloader interface {
	GetVideoContext(ctx context.Context, id string) (*ytdl.Video, error)
	GetStreamContext(ctx context.Context, video *ytdl.Video, format *ytdl.Format) (io.ReadCloser, int64, error)
}

// YouTubeExtractor resolves YouTube links to transcript text. Transcripts
// come from an external transcript service; when that fails, the video's
// audio stream is downloaded and sent through Whisper transcription. Video
// metadata comes from the public oEmbed endpoint and is cached process-wide.
type YouTubeExtractor struct {
	httpClient    *http.Client
	transcriptURL string
	oembedURL     string
	metadataCache *cache.Cache
	transcriber   *audio.Service
	downloader    videoDownloader
}

// NewYouTubeExtractor creates a YouTube extractor. transcriptServiceURL may
// be empty and transcriber may be nil; with neither configured every
// transcript resolution fails per-item.
func NewYouTubeExtractor(transcriptServiceURL string, transcriber *audio.Service) *YouTubeExtractor {
	return &YouTubeExtractor{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		transcriptURL: transcriptServiceURL,
		oembedURL:     oembedEndpoint,
		metadataCache: cache.New(1*time.Hour, 10*time.Minute),
		transcriber:   transcriber,
		downloader:    &ytdl.Client{},
	}
}

// ExtractVideoID pulls the video ID out of a YouTube URL.
func (e *YouTubeExtractor) ExtractVideoID(link string) (string, error) {
	match := videoIDPattern.FindStringSubmatch(link)
	if match == nil {
		return "", fmt.Errorf("invalid YouTube URL format")
	}
	return match[1], nil
}

// Metadata fetches the video title and channel name via oEmbed. Metadata
// is immutable for practical purposes, so results are cached with a TTL.
func (e *YouTubeExtractor) Metadata(ctx context.Context, videoID string) (models.Metadata, error) {
	if cached, found := e.metadataCache.Get(videoID); found {
		return cached.(models.Metadata), nil
	}

	endpoint := fmt.Sprintf("%s?url=https://www.youtube.com/watch?v=%s&format=json", e.oembedURL, videoID)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return models.Metadata{}, fmt.Errorf("failed to fetch video metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Metadata{}, fmt.Errorf("failed to fetch video metadata: HTTP %d", resp.StatusCode)
	}

	var oembed struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oembed); err != nil {
		return models.Metadata{}, fmt.Errorf("failed to parse video metadata: %w", err)
	}

	meta := models.Metadata{Title: oembed.Title, Author: oembed.AuthorName}
	e.metadataCache.Set(videoID, meta, cache.DefaultExpiration)
	log.Printf("✅ [YOUTUBE] Fetched metadata for video %s: %q", videoID, meta.Title)
	return meta, nil
}

// Transcript fetches the transcript for videoID from the external
// transcript service, falling back to audio download plus Whisper
// transcription when the service fails or has no transcript.
func (e *YouTubeExtractor) Transcript(ctx context.Context, videoID string) (string, error) {
	text, err := e.serviceTranscript(ctx, videoID)
	if err == nil {
		return text, nil
	}

	log.Printf("🔄 [YOUTUBE] Transcript service failed for video %s, falling back to audio transcription: %v", videoID, err)
	return e.transcribeAudio(ctx, videoID)
}

// serviceTranscript asks the external transcript service for videoID.
func (e *YouTubeExtractor) serviceTranscript(ctx context.Context, videoID string) (string, error) {
	if e.transcriptURL == "" {
		return "", fmt.Errorf("no transcript service configured")
	}

	payload, err := json.Marshal(map[string]string{
		"video_url": "https://www.youtube.com/watch?v=" + videoID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.transcriptURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcript service returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse transcript response: %w", err)
	}
	if result.Transcript == "" {
		return "", fmt.Errorf("no transcript available for video %s", videoID)
	}

	log.Printf("✅ [YOUTUBE] Fetched transcript for video %s (%d chars)", videoID, len(result.Transcript))
	return result.Transcript, nil
}

// transcribeAudio downloads the video's audio stream to a temporary file
// and sends it through Whisper transcription.
func (e *YouTubeExtractor) transcribeAudio(ctx context.Context, videoID string) (string, error) {
	if e.transcriber == nil {
		return "", fmt.Errorf("no transcript available for video %s and transcription is not configured", videoID)
	}

	video, err := e.downloader.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("failed to load video %s: %w", videoID, err)
	}

	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		return "", fmt.Errorf("no audio stream available for video %s", videoID)
	}

	stream, _, err := e.downloader.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("failed to download audio for video %s: %w", videoID, err)
	}
	defer stream.Close()

	tmp, err := os.CreateTemp("", "audio-*.mp4")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, io.LimitReader(stream, maxAudioDownloadSize))
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", fmt.Errorf("failed to download audio for video %s: %w", videoID, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to write audio file: %w", closeErr)
	}

	log.Printf("🎵 [YOUTUBE] Downloaded audio for video %s, transcribing", videoID)
	return e.transcriber.Transcribe(ctx, tmp.Name())
}
