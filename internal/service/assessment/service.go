package assessment

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

const (
	StateNotStarted = "not_started"
	StateInProgress = "in_progress"
	StateSubmitted  = "submitted"
)

type enrollmentRepo interface {
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type progressTracker interface {
	MarkLessonComplete(ctx context.Context, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*models.Enrollment, error)
	RetractLesson(ctx context.Context, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*models.Enrollment, error)
}

type sessionKey struct {
	userID       uuid.UUID
	enrollmentID uuid.UUID
	lessonKey    string
}

// session is one quiz-viewing attempt. It lives in process memory only
// and is discarded on abandon or restart of the process.
type session struct {
	quiz        *models.Quiz
	moduleIdx   int
	lessonIdx   int
	state       string
	answers     map[int]int
	score       int
	passed      bool
	submittedAt *time.Time
}

// Attempt is a caller-facing snapshot of a session. It never exposes
// correct option indices for an unsubmitted attempt.
type Attempt struct {
	State         string      `json:"state"`
	QuestionCount int         `json:"question_count"`
	Answers       map[int]int `json:"answers"`
	Score         int         `json:"score"`
	Passed        bool        `json:"passed"`
}

type QuestionResult struct {
	Prompt        string `json:"question"`
	Selected      int    `json:"selected"`
	CorrectOption int    `json:"correct_option"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

type Result struct {
	Score     int              `json:"score"`
	Passed    bool             `json:"passed"`
	PassScore int              `json:"pass_score"`
	Questions []QuestionResult `json:"questions"`
}

type Engine struct {
	log         logger.Log
	enrollments enrollmentRepo
	courses     courseRepo
	tracker     progressTracker

	passScore        int
	retractOnRestart bool

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

func NewEngine(log logger.Log, enrollments enrollmentRepo, courses courseRepo, tracker progressTracker, passScore int, retractOnRestart bool) *Engine {
	if passScore <= 0 {
		passScore = 70
	}
	return &Engine{
		log:              log,
		enrollments:      enrollments,
		courses:          courses,
		tracker:          tracker,
		passScore:        passScore,
		retractOnRestart: retractOnRestart,
		sessions:         make(map[sessionKey]*session),
	}
}

// Start opens (or re-enters) the attempt for a quiz lesson. Re-entering
// an attempt already in progress keeps its recorded answers.
func (e *Engine) Start(ctx context.Context, userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*Attempt, error) {
	enr, err := e.enrollments.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enr.UserID != userID {
		return nil, app_errors.ErrNotAuthorized
	}
	if enr.Status == models.EnrollmentDropped {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	course, err := e.courses.CourseByID(ctx, enr.CourseID)
	if err != nil {
		return nil, err
	}
	lesson, ok := course.LessonAt(moduleIdx, lessonIdx)
	if !ok {
		return nil, app_errors.ErrLessonNotFound
	}
	if lesson.Type != models.LessonTypeQuiz {
		return nil, fmt.Errorf("%w: lesson is not a quiz", app_errors.ErrValidation)
	}
	quiz, err := models.ParseQuiz(lesson.Content)
	if err != nil {
		return nil, err
	}

	key := sessionKey{userID: userID, enrollmentID: enrollmentID, lessonKey: models.LessonKey(moduleIdx, lessonIdx)}

	e.mu.Lock()
	defer e.mu.Unlock()
	s, exists := e.sessions[key]
	if !exists || s.state != StateInProgress {
		s = &session{
			quiz:      quiz,
			moduleIdx: moduleIdx,
			lessonIdx: lessonIdx,
			state:     StateInProgress,
			answers:   make(map[int]int),
		}
		e.sessions[key] = s
	}
	return snapshot(s), nil
}

// SelectAnswer records the option chosen for a question. The last choice
// wins; there is no answer history.
func (e *Engine) SelectAnswer(userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx, questionIdx, optionIdx int) (*Attempt, error) {
	key := sessionKey{userID: userID, enrollmentID: enrollmentID, lessonKey: models.LessonKey(moduleIdx, lessonIdx)}

	e.mu.Lock()
	defer e.mu.Unlock()
	s, exists := e.sessions[key]
	if !exists {
		return nil, app_errors.ErrQuizNotStarted
	}
	if s.state != StateInProgress {
		return nil, app_errors.ErrQuizNotInProgress
	}
	if questionIdx < 0 || questionIdx >= len(s.quiz.Questions) {
		return nil, fmt.Errorf("%w: question index out of range", app_errors.ErrValidation)
	}
	if optionIdx < 0 || optionIdx >= len(s.quiz.Questions[questionIdx].Options) {
		return nil, fmt.Errorf("%w: option index out of range", app_errors.ErrValidation)
	}
	s.answers[questionIdx] = optionIdx
	return snapshot(s), nil
}

// Submit scores the attempt and, on a pass, delivers exactly one
// completion event to the progress tracker. Partial submission is
// rejected: every question needs a selection.
func (e *Engine) Submit(ctx context.Context, userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*Result, error) {
	key := sessionKey{userID: userID, enrollmentID: enrollmentID, lessonKey: models.LessonKey(moduleIdx, lessonIdx)}

	e.mu.Lock()
	s, exists := e.sessions[key]
	if !exists {
		e.mu.Unlock()
		return nil, app_errors.ErrQuizNotStarted
	}
	if s.state != StateInProgress {
		e.mu.Unlock()
		return nil, app_errors.ErrQuizNotInProgress
	}
	if len(s.answers) < len(s.quiz.Questions) {
		e.mu.Unlock()
		return nil, app_errors.ErrQuizIncomplete
	}

	result := score(s.quiz, s.answers, e.passScore)
	now := time.Now().UTC()
	s.state = StateSubmitted
	s.score = result.Score
	s.passed = result.Passed
	s.submittedAt = &now
	e.mu.Unlock()

	if result.Passed {
		if _, err := e.tracker.MarkLessonComplete(ctx, enrollmentID, moduleIdx, lessonIdx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Restart clears the recorded answers and returns the attempt to
// in-progress. A previously recorded pass is retracted only when the
// retract-on-restart policy is enabled.
func (e *Engine) Restart(ctx context.Context, userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*Attempt, error) {
	key := sessionKey{userID: userID, enrollmentID: enrollmentID, lessonKey: models.LessonKey(moduleIdx, lessonIdx)}

	e.mu.Lock()
	s, exists := e.sessions[key]
	if !exists {
		e.mu.Unlock()
		return nil, app_errors.ErrQuizNotStarted
	}
	if s.state != StateSubmitted {
		e.mu.Unlock()
		return nil, app_errors.ErrQuizNotSubmitted
	}
	hadPassed := s.passed
	s.state = StateInProgress
	s.answers = make(map[int]int)
	s.score = 0
	s.passed = false
	s.submittedAt = nil
	snap := snapshot(s)
	e.mu.Unlock()

	if e.retractOnRestart && hadPassed {
		if _, err := e.tracker.RetractLesson(ctx, enrollmentID, moduleIdx, lessonIdx); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Result returns the outcome of the last submitted attempt.
func (e *Engine) Result(userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*Result, error) {
	key := sessionKey{userID: userID, enrollmentID: enrollmentID, lessonKey: models.LessonKey(moduleIdx, lessonIdx)}

	e.mu.Lock()
	defer e.mu.Unlock()
	s, exists := e.sessions[key]
	if !exists {
		return nil, app_errors.ErrQuizNotStarted
	}
	if s.state != StateSubmitted {
		return nil, app_errors.ErrQuizNotSubmitted
	}
	return score(s.quiz, s.answers, e.passScore), nil
}

// Abandon discards the transient attempt, recorded completions are
// unaffected.
func (e *Engine) Abandon(userID, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) {
	key := sessionKey{userID: userID, enrollmentID: enrollmentID, lessonKey: models.LessonKey(moduleIdx, lessonIdx)}

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, key)
}

func score(quiz *models.Quiz, answers map[int]int, passScore int) *Result {
	result := &Result{PassScore: passScore}
	correct := 0
	for i, q := range quiz.Questions {
		selected, answered := answers[i]
		if !answered {
			selected = -1
		}
		ok := answered && selected == q.CorrectOption
		if ok {
			correct++
		}
		result.Questions = append(result.Questions, QuestionResult{
			Prompt:        q.Prompt,
			Selected:      selected,
			CorrectOption: q.CorrectOption,
			Correct:       ok,
			Explanation:   q.Explanation,
		})
	}
	result.Score = int(math.Round(100 * float64(correct) / float64(len(quiz.Questions))))
	result.Passed = result.Score >= passScore
	return result
}

func snapshot(s *session) *Attempt {
	answers := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return &Attempt{
		State:         s.state,
		QuestionCount: len(s.quiz.Questions),
		Answers:       answers,
		Score:         s.score,
		Passed:        s.passed,
	}
}
