package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Port      string
	UploadDir string

	// LLM provider (OpenAI-compatible chat completions endpoint)
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Whisper provider for audio/video transcription
	WhisperBaseURL string
	WhisperAPIKey  string
	WhisperModel   string

	// External transcript service for YouTube videos (optional)
	TranscriptServiceURL string

	// Wikipedia language edition to query
	WikipediaLang string

	// Aggregation limits
	MaxSourcesPerKind    int // inputs accepted per source kind per request
	MaxContentLength     int // characters of extracted text fed to the model
	SummaryWordLimit     int // target word count for per-source summaries
	HistoryWindow        int // recent Q&A pairs included in answer prompts
	ShortAnswerThreshold int // merged answers below this length trigger one retry
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "5000"),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),

		WhisperBaseURL: getEnv("WHISPER_BASE_URL", "https://api.openai.com/v1"),
		WhisperAPIKey:  getEnv("WHISPER_API_KEY", ""),
		WhisperModel:   getEnv("WHISPER_MODEL", "whisper-1"),

		TranscriptServiceURL: getEnv("TRANSCRIPT_SERVICE_URL", ""),

		WikipediaLang: getEnv("WIKIPEDIA_LANG", "en"),

		MaxSourcesPerKind:    getIntEnv("MAX_SOURCES_PER_KIND", 5),
		MaxContentLength:     getIntEnv("MAX_CONTENT_LENGTH", 10000),
		SummaryWordLimit:     getIntEnv("SUMMARY_WORD_LIMIT", 500),
		HistoryWindow:        getIntEnv("HISTORY_WINDOW", 5),
		ShortAnswerThreshold: getIntEnv("SHORT_ANSWER_THRESHOLD", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
