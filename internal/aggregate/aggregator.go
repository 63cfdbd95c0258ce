package aggregate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/Devam42/Answerly-chatbot/internal/llm"
	"github.com/Devam42/Answerly-chatbot/internal/models"
	"github.com/Devam42/Answerly-chatbot/internal/session"
)

const (
	// NoContentMessage is returned when zero sources resolved in a
	// summary request.
	NoContentMessage = "No valid content to summarize."

	// NoAnswerMessage is returned when zero sources resolved in a
	// question request.
	NoAnswerMessage = "No valid information available to answer the question."
)

// Options bound the aggregator's prompt construction and retry policy.
type Options struct {
	MaxContentLength     int // prefix length of extracted text fed to prompts
	SummaryWordLimit     int // base word target; detailed summaries ask for double
	HistoryWindow        int // recent Q&A pairs included in answer prompts
	ShortAnswerThreshold int // merged answers shorter than this trigger one retry
}

// Aggregator drives per-source generation and the second-stage merge call.
type Aggregator struct {
	generator llm.Generator
	opts      Options
}

// New creates an aggregator over the given generation client.
func New(generator llm.Generator, opts Options) *Aggregator {
	return &Aggregator{generator: generator, opts: opts}
}

// truncate applies the content length bound by taking a prefix, backing up
// so the cut never lands inside a multi-byte rune.
func (a *Aggregator) truncate(text string) string {
	if a.opts.MaxContentLength <= 0 || len(text) <= a.opts.MaxContentLength {
		return text
	}
	limit := a.opts.MaxContentLength
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// Summarize generates one summary per resolved source and merges them into
// a single text when more than one succeeded. Per-source generation
// failures are collected; only a failed merge call aborts the request.
func (a *Aggregator) Summarize(ctx context.Context, sources []Resolved) (string, []models.SourceFailure, error) {
	var summaries []string
	var failures []models.SourceFailure

	for _, src := range sources {
		summary, err := a.summarizeOne(ctx, src)
		if err != nil {
			log.Printf("⚠️  [AGGREGATE] Failed to summarize %s source %s: %v", src.Kind, src.Input, err)
			failures = append(failures, models.SourceFailure{Kind: src.Kind, Input: src.Input, Reason: err.Error()})
			continue
		}
		summaries = append(summaries, summary)
	}

	switch len(summaries) {
	case 0:
		return NoContentMessage, failures, nil
	case 1:
		return summaries[0], failures, nil
	}

	merged, err := a.mergeSummaries(ctx, summaries)
	if err != nil {
		return "", failures, fmt.Errorf("failed to merge summaries: %w", err)
	}
	return merged, failures, nil
}

// summarizeOne produces one source's summary, retrying once with a
// simplified prompt when the first response comes back empty.
func (a *Aggregator) summarizeOne(ctx context.Context, src Resolved) (string, error) {
	content := a.truncate(src.Text)
	detailedWordLimit := a.opts.SummaryWordLimit * 2

	prompt := fmt.Sprintf(
		"You are an expert summarizer. Read the following content and generate a highly detailed summary of about %d words.\n\n"+
			"Title: %s\nDescription: %s\n\nContent:\n%s\n\nDetailed Summary:",
		detailedWordLimit, src.Meta.Title, src.Meta.Author, content)

	summary, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if summary != "" {
		return summary, nil
	}

	log.Printf("🔄 [AGGREGATE] Empty summary for %s, retrying with fallback prompt", src.Input)
	fallback := fmt.Sprintf(
		"Try again. Summarize the following content in about %d words.\n\nContent:\n%s\n\nSummary:",
		detailedWordLimit, content)
	return a.generator.Generate(ctx, fallback)
}

// mergeSummaries issues the second-stage call that folds all per-source
// summaries into one cohesive text, retrying once on an empty response.
func (a *Aggregator) mergeSummaries(ctx context.Context, summaries []string) (string, error) {
	var sb strings.Builder
	for i, summary := range summaries {
		fmt.Fprintf(&sb, "Summary %d:\n%s\n\n", i+1, summary)
	}

	prompt := fmt.Sprintf(
		"You are an expert in summarization. You have multiple summaries. "+
			"Merge them into one cohesive summary covering all key points.\n\n%sFinal Merged Summary:",
		sb.String())

	merged, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if merged != "" {
		return merged, nil
	}

	log.Printf("🔄 [AGGREGATE] Empty merged summary, retrying with fallback prompt")
	fallback := fmt.Sprintf("Combine the following summaries into one:\n\n%s", sb.String())
	return a.generator.Generate(ctx, fallback)
}

// Answer generates one answer per resolved source using the question and
// the session's recent conversation history, merges when two or more
// answers exist, and appends the final question/answer pair to the
// history exactly once. The caller must hold the session lock.
func (a *Aggregator) Answer(ctx context.Context, sess *session.Session, question string, sources []Resolved) (string, []models.SourceFailure, error) {
	history := renderHistory(sess.RecentHistory(a.opts.HistoryWindow))

	var answers []string
	var failures []models.SourceFailure

	for _, src := range sources {
		answer, err := a.answerOne(ctx, src, question, history)
		if err != nil {
			log.Printf("⚠️  [AGGREGATE] Failed to answer from %s source %s: %v", src.Kind, src.Input, err)
			failures = append(failures, models.SourceFailure{Kind: src.Kind, Input: src.Input, Reason: err.Error()})
			continue
		}
		answers = append(answers, answer)
	}

	var final string
	switch len(answers) {
	case 0:
		final = NoAnswerMessage
	case 1:
		final = answers[0]
	default:
		merged, err := a.mergeAnswers(ctx, question, answers)
		if err != nil {
			return "", failures, fmt.Errorf("failed to merge answers: %w", err)
		}
		final = merged
	}

	sess.AppendHistory(question, final)
	return final, failures, nil
}

// answerOne produces one source's answer, retrying once with a fallback
// prompt that drops the conversational framing when the first response
// comes back empty.
func (a *Aggregator) answerOne(ctx context.Context, src Resolved, question, history string) (string, error) {
	content := a.truncate(src.Text)

	prompt := fmt.Sprintf(
		"You are an intelligent assistant. Use the content and conversation history below to answer the user's question.\n\n"+
			"Title: %s\nDescription: %s\n\nContent:\n%s\n\nConversation History:\n%s\n\nUser Question:\n%s\n\nAnswer in detail:",
		src.Meta.TitleOrDefault(), src.Meta.AuthorOrDefault(), content, history, question)

	answer, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if answer != "" {
		return answer, nil
	}

	log.Printf("🔄 [AGGREGATE] Empty answer for %s, retrying with fallback prompt", src.Input)
	fallback := fmt.Sprintf(
		"Try again. Based on the following content, answer the user's question.\n\n"+
			"Content:\n%s\n\nUser Question:\n%s\n\nAnswer in as much detail as possible:",
		content, question)
	return a.generator.Generate(ctx, fallback)
}

// mergeAnswers folds all per-source answers into one, retrying once when
// the merged answer is empty or too short to be useful.
func (a *Aggregator) mergeAnswers(ctx context.Context, question string, answers []string) (string, error) {
	var sb strings.Builder
	for i, answer := range answers {
		fmt.Fprintf(&sb, "Answer %d:\n%s\n\n", i+1, answer)
	}

	prompt := fmt.Sprintf(
		"You are an intelligent assistant. You have multiple answers to the same question:\n\n"+
			"Question: %s\n\n%sMerge them into one cohesive, comprehensive answer that addresses all points without referencing sources.",
		question, sb.String())

	merged, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if len(merged) >= a.opts.ShortAnswerThreshold {
		return merged, nil
	}

	log.Printf("🔄 [AGGREGATE] Merged answer too short (%d chars), retrying with fallback prompt", len(merged))
	fallback := fmt.Sprintf(
		"Combine the following answers to the question %q into one complete answer:\n\n%s",
		question, sb.String())
	return a.generator.Generate(ctx, fallback)
}

// renderHistory renders recent exchanges as alternating user/assistant lines.
func renderHistory(entries []models.QA) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, qa := range entries {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", qa.Question, qa.Answer))
	}
	return strings.Join(lines, "\n")
}
