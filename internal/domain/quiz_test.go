package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion(n int) Question {
	return Question{
		Question:    fmt.Sprintf("Question %d?", n),
		Options:     []string{"Alpha", "Beta", "Gamma", "Delta"},
		Answer:      "Beta",
		Difficulty:  DifficultyMedium,
		Explanation: "Beta is described in the History section.",
	}
}

func validPayload(questions int) QuizPayload {
	p := QuizPayload{
		Summary:       "A short summary.",
		KeyEntities:   KeyEntities{People: []string{"Ada Lovelace"}},
		Sections:      []string{"History", "Legacy"},
		RelatedTopics: []string{"Charles Babbage"},
	}
	for i := 0; i < questions; i++ {
		p.Quiz = append(p.Quiz, validQuestion(i+1))
	}
	return p
}

func TestQuestion_ResolveAnswer(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		answer  string
		want    int
		wantOK  bool
	}{
		{"by value", []string{"a", "b", "c", "d"}, "c", 2, true},
		{"by value with whitespace", []string{"a", "b", "c", "d"}, " d ", 3, true},
		{"by label", []string{"w", "x", "y", "z"}, "B", 1, true},
		{"by lower label with dot", []string{"w", "x", "y", "z"}, "d.", 3, true},
		{"by label with paren", []string{"w", "x", "y", "z"}, "A)", 0, true},
		{"no match", []string{"a", "b", "c", "d"}, "e", -1, false},
		{"ambiguous value", []string{"a", "a", "c", "d"}, "a", -1, false},
		{"label out of range", []string{"a", "b"}, "D", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{Options: tt.options, Answer: tt.answer}
			got, ok := q.ResolveAnswer()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuizPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *QuizPayload)
		wantErr string
	}{
		{name: "valid minimum", mutate: func(p *QuizPayload) {}},
		{name: "valid maximum", mutate: func(p *QuizPayload) {
			for i := len(p.Quiz); i < MaxQuestions; i++ {
				p.Quiz = append(p.Quiz, validQuestion(i+1))
			}
		}},
		{name: "too few questions", mutate: func(p *QuizPayload) { p.Quiz = p.Quiz[:4] }, wantErr: "Quiz"},
		{name: "too many questions", mutate: func(p *QuizPayload) {
			for i := len(p.Quiz); i <= MaxQuestions; i++ {
				p.Quiz = append(p.Quiz, validQuestion(i+1))
			}
		}, wantErr: "Quiz"},
		{name: "three options", mutate: func(p *QuizPayload) { p.Quiz[0].Options = []string{"a", "b", "c"} }, wantErr: "Options"},
		{name: "empty option", mutate: func(p *QuizPayload) { p.Quiz[1].Options[2] = "" }, wantErr: "Options"},
		{name: "bad difficulty", mutate: func(p *QuizPayload) { p.Quiz[2].Difficulty = "extreme" }, wantErr: "Difficulty"},
		{name: "missing explanation", mutate: func(p *QuizPayload) { p.Quiz[3].Explanation = "" }, wantErr: "Explanation"},
		{name: "answer not an option", mutate: func(p *QuizPayload) { p.Quiz[4].Answer = "Omega" }, wantErr: "question 5"},
		{name: "duplicate options", mutate: func(p *QuizPayload) {
			p.Quiz[0].Options = []string{"Beta", "Beta", "Gamma", "Delta"}
		}, wantErr: "duplicate option"},
		{name: "missing summary", mutate: func(p *QuizPayload) { p.Summary = "" }, wantErr: "Summary"},
		{name: "no sections", mutate: func(p *QuizPayload) { p.Sections = nil }, wantErr: "Sections"},
		{name: "no related topics", mutate: func(p *QuizPayload) { p.RelatedTopics = []string{} }, wantErr: "RelatedTopics"},
		{name: "blank question", mutate: func(p *QuizPayload) { p.Quiz[0].Question = "   " }, wantErr: "Question"},
		{name: "blank option", mutate: func(p *QuizPayload) { p.Quiz[1].Options[3] = " \t" }, wantErr: "Options"},
		{name: "blank explanation", mutate: func(p *QuizPayload) { p.Quiz[2].Explanation = " " }, wantErr: "Explanation"},
		{name: "blank summary", mutate: func(p *QuizPayload) { p.Summary = "  \n" }, wantErr: "Summary"},
		{name: "blank section", mutate: func(p *QuizPayload) { p.Sections = []string{" "} }, wantErr: "Sections"},
		{name: "blank related topic", mutate: func(p *QuizPayload) { p.RelatedTopics = []string{" "} }, wantErr: "RelatedTopics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload(MinQuestions)
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKeyEntities_Normalize(t *testing.T) {
	k := KeyEntities{People: []string{"x"}}
	k.Normalize()
	assert.Equal(t, []string{"x"}, k.People)
	assert.NotNil(t, k.Organizations)
	assert.NotNil(t, k.Locations)
}

func TestNewQuizRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))
	article := &Article{
		URL:         "https://en.wikipedia.org/wiki/Alan_Turing",
		Title:       strings.Repeat("é", MaxTitleLength+20),
		CleanedText: "text",
	}
	rec := NewQuizRecord(article, validPayload(MinQuestions), now)

	assert.Zero(t, rec.ID)
	assert.Equal(t, article.URL, rec.URL)
	assert.Len(t, []rune(rec.Title), MaxTitleLength)
	assert.Equal(t, time.UTC, rec.DateGenerated.Location())
	assert.True(t, rec.DateGenerated.Equal(now))
	assert.Equal(t, "text", rec.ScrapedContent)
}

func TestDifficulty_Valid(t *testing.T) {
	assert.True(t, DifficultyEasy.Valid())
	assert.True(t, Difficulty("hard").Valid())
	assert.False(t, Difficulty("Hard").Valid())
	assert.False(t, Difficulty("").Valid())
}
