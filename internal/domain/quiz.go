package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MinQuestions    = 5
	MaxQuestions    = 10
	OptionsPerQuiz  = 4
	MaxURLLength    = 500
	MaxTitleLength  = 200
	DefaultPageSize = 100
	MaxPageSize     = 100
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Article is the cleaned result of fetching a Wikipedia page.
type Article struct {
	URL         string
	Title       string
	CleanedText string
	Sections    []string
}

type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Normalize replaces missing categories with empty lists so they serialise
// as [] rather than null.
func (k *KeyEntities) Normalize() {
	if k.People == nil {
		k.People = []string{}
	}
	if k.Organizations == nil {
		k.Organizations = []string{}
	}
	if k.Locations == nil {
		k.Locations = []string{}
	}
}

type Question struct {
	Question    string     `json:"question" validate:"notblank"`
	Options     []string   `json:"options" validate:"len=4,dive,notblank"`
	Answer      string     `json:"answer" validate:"notblank"`
	Difficulty  Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
	Explanation string     `json:"explanation" validate:"notblank"`
}

// QuizPayload is the generated document stored with every record.
type QuizPayload struct {
	Summary       string      `json:"summary" validate:"notblank"`
	KeyEntities   KeyEntities `json:"key_entities"`
	Sections      []string    `json:"sections" validate:"min=1,dive,notblank"`
	Quiz          []Question  `json:"quiz" validate:"min=5,max=10,dive"`
	RelatedTopics []string    `json:"related_topics" validate:"min=1,dive,notblank"`
}

// QuizRecord is one persisted generation result. It is never updated.
type QuizRecord struct {
	ID             int64       `json:"id"`
	URL            string      `json:"url"`
	Title          string      `json:"title"`
	DateGenerated  time.Time   `json:"date_generated"`
	ScrapedContent string      `json:"scraped_content"`
	Payload        QuizPayload `json:"payload"`
}

// QuizSummary is the history projection of a QuizRecord.
type QuizSummary struct {
	ID            int64     `db:"id"`
	URL           string    `db:"url"`
	Title         string    `db:"title"`
	DateGenerated time.Time `db:"date_generated"`
}

var optionLabels = []string{"A", "B", "C", "D"}

// ResolveAnswer returns the index of the option the answer names, either by
// exact value or by its A-D label. ok is false when no option or more than one
// option matches.
func (q Question) ResolveAnswer() (int, bool) {
	answer := strings.TrimSpace(q.Answer)
	match := -1
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == answer {
			if match >= 0 {
				return -1, false
			}
			match = i
		}
	}
	if match >= 0 {
		return match, true
	}

	label := strings.ToUpper(strings.TrimSuffix(strings.TrimSuffix(answer, ")"), "."))
	for i, l := range optionLabels {
		if i < len(q.Options) && label == l {
			return i, true
		}
	}
	return -1, false
}

var payloadValidator = newPayloadValidator()

// newPayloadValidator registers notblank so whitespace-only text is rejected.
func newPayloadValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks a payload against the quiz schema. The generator treats any
// failure here as an unusable response.
func (p *QuizPayload) Validate() error {
	if err := payloadValidator.Struct(p); err != nil {
		return fmt.Errorf("quiz payload: %w", err)
	}
	for i, q := range p.Quiz {
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			key := strings.TrimSpace(opt)
			if _, dup := seen[key]; dup {
				return fmt.Errorf("question %d: duplicate option %q", i+1, opt)
			}
			seen[key] = struct{}{}
		}
		if _, ok := q.ResolveAnswer(); !ok {
			return fmt.Errorf("question %d: answer %q does not match exactly one option", i+1, q.Answer)
		}
	}
	return nil
}

// NewQuizRecord assembles an unsaved record from a fetched article and its
// generated payload.
func NewQuizRecord(article *Article, payload QuizPayload, now time.Time) *QuizRecord {
	title := article.Title
	if r := []rune(title); len(r) > MaxTitleLength {
		title = string(r[:MaxTitleLength])
	}
	return &QuizRecord{
		URL:            article.URL,
		Title:          title,
		DateGenerated:  now.UTC(),
		ScrapedContent: article.CleanedText,
		Payload:        payload,
	}
}

// ValidatePagination enforces skip >= 0 and 1 <= limit <= MaxPageSize.
func ValidatePagination(skip, limit int) *DomainError {
	if skip < 0 {
		return NewInvalidPaginationError("Query parameter 'skip' must be greater than or equal to 0").
			WithContext("skip", skip)
	}
	if limit < 1 || limit > MaxPageSize {
		return NewInvalidPaginationError(fmt.Sprintf("Query parameter 'limit' must be between 1 and %d", MaxPageSize)).
			WithContext("limit", limit)
	}
	return nil
}
