package models

import (
	"testing"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuiz(t *testing.T) {
	quiz, err := ParseQuiz(`{
		"questions": [
			{"question": "What is Go?", "options": ["a language", "a board game"], "correctAnswer": 0},
			{"question": "Pick one", "options": ["a", "b", "c"], "correctAnswer": 2, "explanation": "c it is"}
		]
	}`)

	require.NoError(t, err)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "What is Go?", quiz.Questions[0].Prompt)
	assert.Equal(t, 2, quiz.Questions[1].CorrectOption)
	assert.Equal(t, "c it is", quiz.Questions[1].Explanation)
}

func TestParseQuizRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"questions": [`},
		{"no questions", `{"questions": []}`},
		{"missing prompt", `{"questions": [{"options": ["a", "b"], "correctAnswer": 0}]}`},
		{"single option", `{"questions": [{"question": "q", "options": ["a"], "correctAnswer": 0}]}`},
		{"answer out of range", `{"questions": [{"question": "q", "options": ["a", "b"], "correctAnswer": 2}]}`},
		{"negative answer", `{"questions": [{"question": "q", "options": ["a", "b"], "correctAnswer": -1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuiz(tc.content)
			assert.ErrorIs(t, err, app_errors.ErrValidation)
		})
	}
}
