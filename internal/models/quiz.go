package models

import (
	"encoding/json"
	"fmt"

	"github.com/HeChing/Capacitapp/internal/app_errors"
)

// Quiz is the structured payload carried in the Content field of a
// quiz-type lesson.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// ParseQuiz decodes and validates a quiz payload.
func ParseQuiz(content string) (*Quiz, error) {
	var quiz Quiz
	if err := json.Unmarshal([]byte(content), &quiz); err != nil {
		return nil, fmt.Errorf("%w: malformed quiz payload: %v", app_errors.ErrValidation, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", app_errors.ErrValidation)
	}
	for i, q := range quiz.Questions {
		if q.Prompt == "" {
			return nil, fmt.Errorf("%w: question %d has no prompt", app_errors.ErrValidation, i)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d needs at least two options", app_errors.ErrValidation, i)
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d has an out-of-range correct option", app_errors.ErrValidation, i)
		}
	}
	return &quiz, nil
}
