package dto

import (
	"time"

	"wiki-quiz/internal/domain"
)

// GenerateQuizRequest is the body of POST /generate_quiz.
// @Description Wikipedia article to build a quiz from
type GenerateQuizRequest struct {
	URL *string `json:"url" validate:"required" example:"https://en.wikipedia.org/wiki/Alan_Turing"`
}

type KeyEntitiesResponse struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

type QuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty" enums:"easy,medium,hard"`
	Explanation string   `json:"explanation"`
}

// QuizRecordResponse is the full record returned by POST /generate_quiz and
// GET /quiz/{id}.
// @Description Generated quiz with article metadata
type QuizRecordResponse struct {
	ID             int64               `json:"id"`
	URL            string              `json:"url"`
	Title          string              `json:"title"`
	DateGenerated  time.Time           `json:"date_generated"`
	Summary        string              `json:"summary"`
	KeyEntities    KeyEntitiesResponse `json:"key_entities"`
	Sections       []string            `json:"sections"`
	Quiz           []QuestionResponse  `json:"quiz"`
	RelatedTopics  []string            `json:"related_topics"`
	ScrapedContent string              `json:"scraped_content"`
}

// HistoryItem is one entry of GET /history.
type HistoryItem struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	DateGenerated time.Time `json:"date_generated"`
}

// HistoryResponse is ordered newest first.
type HistoryResponse []HistoryItem

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status            string    `json:"status" example:"healthy"`
	DatabaseConnected bool      `json:"database_connected"`
	CacheConnected    *bool     `json:"cache_connected,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type EndpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// APIInfoResponse is the static catalogue served at GET /api/info.
type APIInfoResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []EndpointInfo `json:"endpoints"`
}

// RootResponse is the banner served at GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NewQuizRecordResponse flattens a record and its payload.
func NewQuizRecordResponse(r *domain.QuizRecord) *QuizRecordResponse {
	questions := make([]QuestionResponse, 0, len(r.Payload.Quiz))
	for _, q := range r.Payload.Quiz {
		questions = append(questions, QuestionResponse{
			Question:    q.Question,
			Options:     stringsOrEmpty(q.Options),
			Answer:      q.Answer,
			Difficulty:  string(q.Difficulty),
			Explanation: q.Explanation,
		})
	}
	return &QuizRecordResponse{
		ID:            r.ID,
		URL:           r.URL,
		Title:         r.Title,
		DateGenerated: r.DateGenerated,
		Summary:       r.Payload.Summary,
		KeyEntities: KeyEntitiesResponse{
			People:        stringsOrEmpty(r.Payload.KeyEntities.People),
			Organizations: stringsOrEmpty(r.Payload.KeyEntities.Organizations),
			Locations:     stringsOrEmpty(r.Payload.KeyEntities.Locations),
		},
		Sections:       stringsOrEmpty(r.Payload.Sections),
		Quiz:           questions,
		RelatedTopics:  stringsOrEmpty(r.Payload.RelatedTopics),
		ScrapedContent: r.ScrapedContent,
	}
}

func NewHistoryResponse(summaries []domain.QuizSummary) HistoryResponse {
	items := make(HistoryResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, HistoryItem{
			ID:            s.ID,
			URL:           s.URL,
			Title:         s.Title,
			DateGenerated: s.DateGenerated,
		})
	}
	return items
}
