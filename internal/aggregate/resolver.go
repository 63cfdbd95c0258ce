package aggregate

import (
	"context"
	"log"

	"github.com/Devam42/Answerly-chatbot/internal/models"
	"github.com/Devam42/Answerly-chatbot/internal/session"
)

// VideoSource resolves YouTube links to transcripts and metadata.
type VideoSource interface {
	ExtractVideoID(link string) (string, error)
	Metadata(ctx context.Context, videoID string) (models.Metadata, error)
	Transcript(ctx context.Context, videoID string) (string, error)
}

// FileSource extracts plain text from an uploaded file on disk.
type FileSource interface {
	Extract(ctx context.Context, path, filename string) (string, error)
}

// WebsiteSource fetches a web page's readable text.
type WebsiteSource interface {
	Extract(ctx context.Context, url, username string) (string, error)
}

// WikipediaSource fetches an article's plain text by title.
type WikipediaSource interface {
	Extract(ctx context.Context, title string) (string, error)
}

// FileAllower validates an uploaded filename before extraction.
type FileAllower func(filename string) bool

// Upload is one uploaded file reference: where the payload was saved and
// the name the user gave it. The filename is the session cache key.
type Upload struct {
	Path     string
	Filename string
}

// Resolved is one source turned into extracted text, ready for generation.
type Resolved struct {
	Kind  models.SourceKind
	Input string // the raw submitted value, echoed in failure manifests
	ID    string // session cache key: video ID, filename, URL or title
	Meta  models.Metadata
	Text  string
}

// Resolver turns batches of source identifiers into extracted text,
// consulting the user's session cache before invoking an extractor.
// Failures never cross item boundaries: each failed item is recorded and
// its siblings keep processing.
type Resolver struct {
	videos    VideoSource
	files     FileSource
	websites  WebsiteSource
	wikipedia WikipediaSource
	allowFile FileAllower
}

// NewResolver creates a resolver over the four kind-specific extractors.
func NewResolver(videos VideoSource, files FileSource, websites WebsiteSource, wikipedia WikipediaSource, allowFile FileAllower) *Resolver {
	return &Resolver{
		videos:    videos,
		files:     files,
		websites:  websites,
		wikipedia: wikipedia,
		allowFile: allowFile,
	}
}

// ResolveVideos resolves a batch of YouTube links for one user session.
// The caller must hold the session lock.
func (r *Resolver) ResolveVideos(ctx context.Context, sess *session.Session, links []string) ([]Resolved, []models.SourceFailure) {
	var resolved []Resolved
	var failures []models.SourceFailure

	for _, link := range links {
		videoID, err := r.videos.ExtractVideoID(link)
		if err != nil {
			log.Printf("⚠️  [RESOLVE] Invalid YouTube link %s: %v", link, err)
			failures = append(failures, models.SourceFailure{Kind: models.KindVideo, Input: link, Reason: err.Error()})
			continue
		}

		meta, err := r.videos.Metadata(ctx, videoID)
		if err != nil {
			log.Printf("⚠️  [RESOLVE] Failed to fetch metadata for %s: %v", link, err)
			failures = append(failures, models.SourceFailure{Kind: models.KindVideo, Input: link, Reason: err.Error()})
			continue
		}

		text, ok := sess.Cached(models.KindVideo, videoID)
		if !ok {
			text, err = r.videos.Transcript(ctx, videoID)
			if err != nil {
				log.Printf("⚠️  [RESOLVE] Failed to fetch transcript for %s: %v", link, err)
				failures = append(failures, models.SourceFailure{Kind: models.KindVideo, Input: link, Reason: err.Error()})
				continue
			}
			sess.Put(models.KindVideo, videoID, text)
		}

		resolved = append(resolved, Resolved{
			Kind:  models.KindVideo,
			Input: link,
			ID:    videoID,
			Meta:  meta,
			Text:  text,
		})
	}

	return resolved, failures
}

// ResolveFiles resolves a batch of uploaded files for one user session.
// The caller must hold the session lock.
func (r *Resolver) ResolveFiles(ctx context.Context, sess *session.Session, uploads []Upload) ([]Resolved, []models.SourceFailure) {
	var resolved []Resolved
	var failures []models.SourceFailure

	for _, up := range uploads {
		if r.allowFile != nil && !r.allowFile(up.Filename) {
			failures = append(failures, models.SourceFailure{Kind: models.KindFile, Input: up.Filename, Reason: "unsupported file type"})
			continue
		}

		text, ok := sess.Cached(models.KindFile, up.Filename)
		if !ok {
			var err error
			text, err = r.files.Extract(ctx, up.Path, up.Filename)
			if err != nil {
				log.Printf("⚠️  [RESOLVE] Failed to process file %s: %v", up.Filename, err)
				failures = append(failures, models.SourceFailure{Kind: models.KindFile, Input: up.Filename, Reason: err.Error()})
				continue
			}
			sess.Put(models.KindFile, up.Filename, text)
		}

		resolved = append(resolved, Resolved{
			Kind:  models.KindFile,
			Input: up.Filename,
			ID:    up.Filename,
			Meta:  models.Metadata{Title: up.Filename},
			Text:  text,
		})
	}

	return resolved, failures
}

// ResolveWebsites resolves a batch of website URLs for one user session.
// The caller must hold the session lock.
func (r *Resolver) ResolveWebsites(ctx context.Context, sess *session.Session, urls []string) ([]Resolved, []models.SourceFailure) {
	var resolved []Resolved
	var failures []models.SourceFailure

	for _, urlStr := range urls {
		text, ok := sess.Cached(models.KindWebsite, urlStr)
		if !ok {
			var err error
			text, err = r.websites.Extract(ctx, urlStr, sess.Username())
			if err != nil {
				log.Printf("⚠️  [RESOLVE] Failed to fetch website %s: %v", urlStr, err)
				failures = append(failures, models.SourceFailure{Kind: models.KindWebsite, Input: urlStr, Reason: err.Error()})
				continue
			}
			sess.Put(models.KindWebsite, urlStr, text)
		}

		resolved = append(resolved, Resolved{
			Kind:  models.KindWebsite,
			Input: urlStr,
			ID:    urlStr,
			Meta:  models.Metadata{Title: urlStr},
			Text:  text,
		})
	}

	return resolved, failures
}

// ResolveWikipedia resolves a batch of article titles for one user session.
// The caller must hold the session lock.
func (r *Resolver) ResolveWikipedia(ctx context.Context, sess *session.Session, titles []string) ([]Resolved, []models.SourceFailure) {
	var resolved []Resolved
	var failures []models.SourceFailure

	for _, title := range titles {
		text, ok := sess.Cached(models.KindWikipedia, title)
		if !ok {
			var err error
			text, err = r.wikipedia.Extract(ctx, title)
			if err != nil {
				log.Printf("⚠️  [RESOLVE] Failed to fetch Wikipedia article %q: %v", title, err)
				failures = append(failures, models.SourceFailure{Kind: models.KindWikipedia, Input: title, Reason: err.Error()})
				continue
			}
			sess.Put(models.KindWikipedia, title, text)
		}

		resolved = append(resolved, Resolved{
			Kind:  models.KindWikipedia,
			Input: title,
			ID:    title,
			Meta:  models.Metadata{Title: title},
			Text:  text,
		})
	}

	return resolved, failures
}
