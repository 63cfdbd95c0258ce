package models

// SourceKind identifies which content pipeline an input belongs to.
type SourceKind string

const (
	KindVideo     SourceKind = "video"
	KindFile      SourceKind = "file"
	KindWebsite   SourceKind = "website"
	KindWikipedia SourceKind = "wikipedia"
)

// Metadata describes a resolved source for prompt construction.
// Every source kind fills Title; Author is only known for videos.
type Metadata struct {
	Title  string
	Author string
}

// TitleOrDefault returns the title or a placeholder when unknown.
func (m Metadata) TitleOrDefault() string {
	if m.Title == "" {
		return "Unknown Title"
	}
	return m.Title
}

// AuthorOrDefault returns the author or a placeholder when unknown.
func (m Metadata) AuthorOrDefault() string {
	if m.Author == "" {
		return "Unknown Author"
	}
	return m.Author
}

// SourceFailure records one input that could not be processed, with the
// reason it failed. Failures are collected, never raised past the batch
// that produced them.
type SourceFailure struct {
	Kind   SourceKind
	Input  string
	Reason string
}

// String renders the failure with its inline reason ("input: reason").
func (f SourceFailure) String() string {
	return f.Input + ": " + f.Reason
}

// QA is one question/answer exchange in a user's conversation history.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
