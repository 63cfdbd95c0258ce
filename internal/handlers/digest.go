package handlers

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Devam42/Answerly-chatbot/internal/aggregate"
	"github.com/Devam42/Answerly-chatbot/internal/logging"
	"github.com/Devam42/Answerly-chatbot/internal/models"
	"github.com/Devam42/Answerly-chatbot/internal/session"
)

// DigestHandler serves the summary, question and end-conversation endpoints.
type DigestHandler struct {
	sessions   *session.Store
	resolver   *aggregate.Resolver
	aggregator *aggregate.Aggregator
	uploadDir  string
	maxSources int
}

// NewDigestHandler creates the handler and ensures the upload directory
// exists.
func NewDigestHandler(sessions *session.Store, resolver *aggregate.Resolver, aggregator *aggregate.Aggregator, uploadDir string, maxSources int) *DigestHandler {
	if err := os.MkdirAll(uploadDir, 0700); err != nil {
		log.Printf("⚠️  Warning: Could not create upload directory: %v", err)
	}
	return &DigestHandler{
		sessions:   sessions,
		resolver:   resolver,
		aggregator: aggregator,
		uploadDir:  uploadDir,
		maxSources: maxSources,
	}
}

// sourceBatch holds the parsed per-kind inputs of one request.
type sourceBatch struct {
	links   []string
	urls    []string
	titles  []string
	uploads []aggregate.Upload
}

func (b sourceBatch) empty() bool {
	return len(b.links) == 0 && len(b.urls) == 0 && len(b.titles) == 0 && len(b.uploads) == 0
}

// parseSources reads the numbered form fields (youtube_link1..N,
// website_url1..N, wikipedia_title1..N, uploaded_file1..N) and persists
// uploads to disk under a unique name. A file that cannot be saved is
// reported as a per-item failure so sibling sources still go through.
func (h *DigestHandler) parseSources(c *fiber.Ctx) (sourceBatch, []models.SourceFailure) {
	var batch sourceBatch
	var failures []models.SourceFailure

	for i := 1; i <= h.maxSources; i++ {
		if link := c.FormValue(fmt.Sprintf("youtube_link%d", i)); link != "" {
			batch.links = append(batch.links, link)
		}
		if url := c.FormValue(fmt.Sprintf("website_url%d", i)); url != "" {
			batch.urls = append(batch.urls, url)
		}
		if title := c.FormValue(fmt.Sprintf("wikipedia_title%d", i)); title != "" {
			batch.titles = append(batch.titles, title)
		}

		fileHeader, err := c.FormFile(fmt.Sprintf("uploaded_file%d", i))
		if err != nil || fileHeader == nil {
			continue
		}

		filename := filepath.Base(fileHeader.Filename)
		path := filepath.Join(h.uploadDir, uuid.New().String()+"_"+filename)
		if err := c.SaveFile(fileHeader, path); err != nil {
			failures = append(failures, models.SourceFailure{
				Kind:   models.KindFile,
				Input:  filename,
				Reason: fmt.Sprintf("failed to save uploaded file: %v", err),
			})
			continue
		}
		batch.uploads = append(batch.uploads, aggregate.Upload{Path: path, Filename: filename})
	}

	return batch, failures
}

// removeUploads deletes the saved copies of this request's uploads. The
// extracted text lives in the session cache, so the files are only needed
// for the duration of one request.
func (h *DigestHandler) removeUploads(uploads []aggregate.Upload) {
	for _, u := range uploads {
		if err := os.Remove(u.Path); err != nil {
			log.Printf("⚠️  Warning: Could not remove uploaded file %s: %v", u.Path, err)
		}
	}
}

// Summary handles POST /api/summary.
func (h *DigestHandler) Summary(c *fiber.Ctx) error {
	username := c.FormValue("username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username is required.",
		})
	}

	batch, saveFailures := h.parseSources(c)
	defer h.removeUploads(batch.uploads)
	if batch.empty() && len(saveFailures) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No links, files, or titles provided.",
		})
	}

	reqLog := logging.WithRequest(uuid.New().String(), username)
	reqLog.Info("summary request",
		"videos", len(batch.links), "files", len(batch.uploads),
		"websites", len(batch.urls), "wikipedia", len(batch.titles))

	sess := h.sessions.GetOrCreate(username)
	sess.Lock()
	defer sess.Unlock()

	ctx := c.Context()
	resolved, failures := h.resolveAll(ctx, sess, batch)
	failures = append(saveFailures, failures...)

	summary, genFailures, err := h.aggregator.Summarize(ctx, resolved)
	if err != nil {
		log.Printf("❌ [SUMMARY] Merge failed for user %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	failures = append(failures, genFailures...)
	logFailures(reqLog, failures)

	return c.JSON(models.SummaryResponse{
		Summary:                    summary,
		UnsupportedYouTubeLinks:    failureStrings(failures, models.KindVideo, false),
		UnsupportedFiles:           failureStrings(failures, models.KindFile, false),
		UnsupportedWebsites:        failureStrings(failures, models.KindWebsite, false),
		UnsupportedWikipediaTitles: failureStrings(failures, models.KindWikipedia, false),
	})
}

// AskQuestion handles POST /api/ask_question.
func (h *DigestHandler) AskQuestion(c *fiber.Ctx) error {
	username := c.FormValue("username")
	question := c.FormValue("question")
	if username == "" || question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and question are required.",
		})
	}

	batch, saveFailures := h.parseSources(c)
	defer h.removeUploads(batch.uploads)
	if batch.empty() && len(saveFailures) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No links, files, or titles provided.",
		})
	}

	reqLog := logging.WithRequest(uuid.New().String(), username)
	reqLog.Info("question request",
		"videos", len(batch.links), "files", len(batch.uploads),
		"websites", len(batch.urls), "wikipedia", len(batch.titles))

	sess := h.sessions.GetOrCreate(username)
	sess.Lock()
	defer sess.Unlock()

	ctx := c.Context()
	resolved, failures := h.resolveAll(ctx, sess, batch)
	failures = append(saveFailures, failures...)

	answer, genFailures, err := h.aggregator.Answer(ctx, sess, question, resolved)
	if err != nil {
		log.Printf("❌ [QUESTION] Merge failed for user %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	failures = append(failures, genFailures...)
	logFailures(reqLog, failures)

	return c.JSON(models.AnswerResponse{
		Answer:                     answer,
		UnsupportedYouTubeLinks:    failureStrings(failures, models.KindVideo, true),
		UnsupportedFiles:           failureStrings(failures, models.KindFile, true),
		UnsupportedWebsites:        failureStrings(failures, models.KindWebsite, true),
		UnsupportedWikipediaTitles: failureStrings(failures, models.KindWikipedia, true),
	})
}

// EndConversation handles POST /api/end_conversation.
func (h *DigestHandler) EndConversation(c *fiber.Ctx) error {
	var req models.EndConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body.",
		})
	}
	if req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username is required.",
		})
	}

	h.sessions.End(req.Username)
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Conversation ended and in-memory cache cleared for user '%s'.", req.Username),
	})
}

// resolveAll resolves every source kind of one request in a fixed order:
// videos, files, websites, Wikipedia articles. Failures from all kinds are
// collected together and routed back to per-kind arrays at render time.
func (h *DigestHandler) resolveAll(ctx context.Context, sess *session.Session, batch sourceBatch) ([]aggregate.Resolved, []models.SourceFailure) {
	var resolved []aggregate.Resolved
	var failures []models.SourceFailure

	videos, videoFails := h.resolver.ResolveVideos(ctx, sess, batch.links)
	resolved = append(resolved, videos...)
	failures = append(failures, videoFails...)

	files, fileFails := h.resolver.ResolveFiles(ctx, sess, batch.uploads)
	resolved = append(resolved, files...)
	failures = append(failures, fileFails...)

	websites, websiteFails := h.resolver.ResolveWebsites(ctx, sess, batch.urls)
	resolved = append(resolved, websites...)
	failures = append(failures, websiteFails...)

	articles, wikiFails := h.resolver.ResolveWikipedia(ctx, sess, batch.titles)
	resolved = append(resolved, articles...)
	failures = append(failures, wikiFails...)

	return resolved, failures
}

// logFailures emits one structured log line per failed source item.
func logFailures(reqLog *slog.Logger, failures []models.SourceFailure) {
	for _, f := range failures {
		logging.WithSource(reqLog, string(f.Kind), f.Input).Warn("source skipped", "reason", f.Reason)
	}
}

// failureStrings renders the failures of one kind. Answer-flow entries
// carry the inline reason; summary-flow entries echo the bare input.
func failureStrings(failures []models.SourceFailure, kind models.SourceKind, withReason bool) []string {
	out := make([]string, 0)
	for _, f := range failures {
		if f.Kind != kind {
			continue
		}
		if withReason {
			out = append(out, f.String())
		} else {
			out = append(out, f.Input)
		}
	}
	return out
}
