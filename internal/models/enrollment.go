package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentPaused    = "paused"
	EnrollmentDropped   = "dropped"
)

// Enrollment records a user's relationship to a course. At most one
// enrollment exists per (user, course) pair for the life of the pair;
// unenrolling marks it dropped instead of deleting it.
type Enrollment struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	CourseID         uuid.UUID  `json:"course_id"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	CompletedLessons []string   `json:"completed_lessons"`
	CurrentModule    int        `json:"current_module"`
	CurrentLesson    int        `json:"current_lesson"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (e *Enrollment) HasCompleted(key string) bool {
	for _, k := range e.CompletedLessons {
		if k == key {
			return true
		}
	}
	return false
}

// LessonKey builds the composite "moduleIndex-lessonIndex" identifier used
// as the element type of the completed-lessons set.
func LessonKey(moduleIdx, lessonIdx int) string {
	return fmt.Sprintf("%d-%d", moduleIdx, lessonIdx)
}

func ParseLessonKey(key string) (moduleIdx, lessonIdx int, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed lesson key %q", key)
	}
	moduleIdx, err = strconv.Atoi(parts[0])
	if err != nil || moduleIdx < 0 {
		return 0, 0, fmt.Errorf("malformed lesson key %q", key)
	}
	lessonIdx, err = strconv.Atoi(parts[1])
	if err != nil || lessonIdx < 0 {
		return 0, 0, fmt.Errorf("malformed lesson key %q", key)
	}
	return moduleIdx, lessonIdx, nil
}
