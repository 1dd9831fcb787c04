package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	LessonTypeVideo    = "video"
	LessonTypeDocument = "document"
	LessonTypeLink     = "link"
	LessonTypeQuiz     = "quiz"
)

type Course struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	CoverObjectKey string    `json:"cover_object_key,omitempty"`
	MaxStudents    int       `json:"max_students"`
	Status         string    `json:"status"`
	InstructorID   uuid.UUID `json:"instructor_id"`
	Modules        []Module  `json:"modules"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Module struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Lesson struct {
	Title           string `json:"title"`
	Type            string `json:"type"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"duration_minutes"`
	Required        bool   `json:"required"`
}

type CoursePreview struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	CoverURL      string    `json:"cover_url,omitempty"`
	MaxStudents   int       `json:"max_students"`
	EnrolledCount int       `json:"enrolled_count"`
	TotalLessons  int       `json:"total_lessons"`
	InstructorID  uuid.UUID `json:"instructor_id"`
}

// CourseStats is a per-course aggregate derived by query for reporting.
type CourseStats struct {
	CourseID        uuid.UUID `json:"course_id"`
	Title           string    `json:"title"`
	Enrolled        int       `json:"enrolled"`
	Completed       int       `json:"completed"`
	AverageProgress float64   `json:"average_progress"`
}

func ValidLessonType(t string) bool {
	switch t {
	case LessonTypeVideo, LessonTypeDocument, LessonTypeLink, LessonTypeQuiz:
		return true
	}
	return false
}

func (c *Course) TotalLessons() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

func (c *Course) LessonAt(moduleIdx, lessonIdx int) (*Lesson, bool) {
	if moduleIdx < 0 || moduleIdx >= len(c.Modules) {
		return nil, false
	}
	lessons := c.Modules[moduleIdx].Lessons
	if lessonIdx < 0 || lessonIdx >= len(lessons) {
		return nil, false
	}
	return &lessons[lessonIdx], true
}

// ValidLessonKey reports whether key addresses a lesson in the course's
// current module/lesson shape. Keys recorded before a course edit may no
// longer be valid and are excluded from progress computation.
func (c *Course) ValidLessonKey(key string) bool {
	moduleIdx, lessonIdx, err := ParseLessonKey(key)
	if err != nil {
		return false
	}
	_, ok := c.LessonAt(moduleIdx, lessonIdx)
	return ok
}
