package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"
)

const quizPromptTemplate = `You are an expert educational content creator. Turn the Wikipedia article below into a structured quiz that is grounded entirely in the article text.

ARTICLE
Title: {{.title}}
Section headings: {{.sections}}
Content:
{{.content}}

Respond with ONLY a JSON object of this exact shape:
{
  "summary": "2-3 sentence overview of the article",
  "key_entities": {
    "people": ["..."],
    "organizations": ["..."],
    "locations": ["..."]
  },
  "sections": ["main sections or themes covered"],
  "quiz": [
    {
      "question": "clear, specific question",
      "options": ["option A", "option B", "option C", "option D"],
      "answer": "the exact text of the correct option",
      "difficulty": "easy | medium | hard",
      "explanation": "why the answer is correct, referencing the article"
    }
  ],
  "related_topics": ["related Wikipedia topics"]
}

Rules:
- Generate between {{.min_questions}} and {{.max_questions}} questions.
- Every question has exactly 4 distinct options and exactly one correct answer.
- "answer" must repeat one option verbatim.
- "difficulty" is one of "easy", "medium" or "hard"; vary it across questions.
- List at least one section and 3-5 related topics.
- Only include entities that are mentioned in the article.
- Do not use knowledge that is not in the article.`

// LLMQuizGenerator implements domain.QuizGenerator with a langchaingo model.
type LLMQuizGenerator struct {
	llm           llms.Model
	template      prompts.PromptTemplate
	temperature   float64
	maxTokens     int
	timeout       time.Duration
	maxInputChars int
}

var _ domain.QuizGenerator = (*LLMQuizGenerator)(nil)

func NewLLMQuizGenerator(llm llms.Model, cfg config.LLMConfig) domain.QuizGenerator {
	tmpl := prompts.NewPromptTemplate(quizPromptTemplate, []string{"title", "sections", "content"})
	tmpl.PartialVariables = map[string]any{
		"min_questions": strconv.Itoa(domain.MinQuestions),
		"max_questions": strconv.Itoa(domain.MaxQuestions),
	}
	return &LLMQuizGenerator{
		llm:           llm,
		template:      tmpl,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		timeout:       cfg.Timeout,
		maxInputChars: cfg.MaxInputChars,
	}
}

func (g *LLMQuizGenerator) Generate(ctx context.Context, article *domain.Article) (*domain.QuizPayload, error) {
	l := logger.Get().With(zap.String("title", article.Title))

	content := TruncateContent(article.CleanedText, g.maxInputChars)
	if len(content) < len(article.CleanedText) {
		l.Info("Article content truncated for generation",
			zap.Int("original_chars", len([]rune(article.CleanedText))),
			zap.Int("truncated_chars", len([]rune(content))))
	}

	sections := "none"
	if len(article.Sections) > 0 {
		sections = strings.Join(article.Sections, "; ")
	}
	prompt, err := g.template.Format(map[string]any{
		"title":    article.Title,
		"sections": sections,
		"content":  content,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %v", domain.ErrGenerationUnavailable, err)
	}

	raw, err := g.callLLM(ctx, prompt)
	if err != nil {
		l.Error("LLM call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	l.Debug("Raw LLM response received", zap.String("raw_response", raw))

	payload, err := ParseQuizPayload(raw)
	if err != nil {
		l.Warn("LLM response rejected", zap.Error(err))
		return nil, err
	}

	l.Info("Quiz generated", zap.Int("questions", len(payload.Quiz)))
	return payload, nil
}

func (g *LLMQuizGenerator) callLLM(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	opts := []llms.CallOption{
		llms.WithTemperature(g.temperature),
		llms.WithJSONMode(),
	}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, opts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("LLM request timed out after %s: %w", g.timeout, err)
		}
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return "", errors.New("LLM returned an empty completion")
	}
	return response, nil
}

// TruncateContent limits text to maxChars runes. Inside the last tenth of the
// window the cut backs off to a sentence end, or failing that to whitespace.
func TruncateContent(text string, maxChars int) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}
	cut := runes[:maxChars]
	floor := maxChars - maxChars/10

	// Prefer a sentence end inside the last tenth, then any whitespace.
	for i := len(cut) - 2; i >= floor; i-- {
		if cut[i] == '.' && unicode.IsSpace(cut[i+1]) {
			return string(cut[:i+1])
		}
	}
	for i := len(cut) - 1; i >= floor && i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			return strings.TrimRightFunc(string(cut[:i]), unicode.IsSpace)
		}
	}
	return string(cut)
}

// ParseQuizPayload extracts the JSON document from a model response and
// validates it. Every failure wraps domain.ErrGenerationParse.
func ParseQuizPayload(raw string) (*domain.QuizPayload, error) {
	doc, err := extractJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationParse, err)
	}

	var payload domain.QuizPayload
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrGenerationParse, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationParse, err)
	}
	payload.KeyEntities.Normalize()
	return &payload, nil
}

func extractJSONObject(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return "", errors.New("no JSON object found in response")
	}
	return cleaned[start : end+1], nil
}
