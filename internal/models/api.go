package models

// SummaryResponse is the response body for POST /api/summary.
// The unsupported arrays list the raw inputs that failed, one array per
// source kind.
type SummaryResponse struct {
	Summary                    string   `json:"summary"`
	UnsupportedYouTubeLinks    []string `json:"unsupported_youtube_links"`
	UnsupportedFiles           []string `json:"unsupported_files"`
	UnsupportedWebsites        []string `json:"unsupported_websites"`
	UnsupportedWikipediaTitles []string `json:"unsupported_wikipedia_titles"`
}

// AnswerResponse is the response body for POST /api/ask_question.
// Unlike the summary flow, each unsupported entry carries an inline
// reason ("input: reason").
type AnswerResponse struct {
	Answer                     string   `json:"answer"`
	UnsupportedYouTubeLinks    []string `json:"unsupported_youtube_links"`
	UnsupportedFiles           []string `json:"unsupported_files"`
	UnsupportedWebsites        []string `json:"unsupported_websites"`
	UnsupportedWikipediaTitles []string `json:"unsupported_wikipedia_titles"`
}

// EndConversationRequest is the JSON body for POST /api/end_conversation.
type EndConversationRequest struct {
	Username string `json:"username"`
}
