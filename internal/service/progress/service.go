package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

type enrollmentRepo interface {
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
	SaveProgress(ctx context.Context, e *models.Enrollment) error
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type Tracker struct {
	log         logger.Log
	enrollments enrollmentRepo
	courses     courseRepo
}

func NewTracker(log logger.Log, enrollments enrollmentRepo, courses courseRepo) *Tracker {
	return &Tracker{
		log:         log,
		enrollments: enrollments,
		courses:     courses,
	}
}

// MarkLessonComplete records a lesson completion and re-derives aggregate
// progress. Re-marking an already completed lesson is a no-op for the set
// but still recomputes, so duplicate signals are safe. When progress
// reaches 100 the enrollment transitions to completed; the completion
// timestamp is set once and never overwritten.
func (t *Tracker) MarkLessonComplete(ctx context.Context, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*models.Enrollment, error) {
	e, err := t.enrollments.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status == models.EnrollmentDropped {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	course, err := t.courses.CourseByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}

	key := models.LessonKey(moduleIdx, lessonIdx)
	if !course.ValidLessonKey(key) {
		return nil, fmt.Errorf("%w: lesson %s is outside the course structure", app_errors.ErrLessonNotFound, key)
	}

	if !e.HasCompleted(key) {
		e.CompletedLessons = append(e.CompletedLessons, key)
	}
	e.CurrentModule = moduleIdx
	e.CurrentLesson = lessonIdx

	t.recompute(e, course)

	if e.Progress >= 100 {
		e.Status = models.EnrollmentCompleted
		if e.CompletedAt == nil {
			now := time.Now().UTC()
			e.CompletedAt = &now
		}
	}

	if err := t.enrollments.SaveProgress(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RetractLesson removes a recorded completion. It exists only for the
// retract-on-restart quiz policy; the completion timestamp stays in place
// even when the status drops back to active.
func (t *Tracker) RetractLesson(ctx context.Context, enrollmentID uuid.UUID, moduleIdx, lessonIdx int) (*models.Enrollment, error) {
	e, err := t.enrollments.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.Status == models.EnrollmentDropped {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	course, err := t.courses.CourseByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}

	key := models.LessonKey(moduleIdx, lessonIdx)
	kept := e.CompletedLessons[:0]
	for _, k := range e.CompletedLessons {
		if k != key {
			kept = append(kept, k)
		}
	}
	e.CompletedLessons = kept

	t.recompute(e, course)
	if e.Progress < 100 && e.Status == models.EnrollmentCompleted {
		e.Status = models.EnrollmentActive
	}

	if err := t.enrollments.SaveProgress(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ModuleProgress is the percentage of one module's lessons completed,
// used for per-module display only.
func (t *Tracker) ModuleProgress(e *models.Enrollment, course *models.Course, moduleIdx int) int {
	if moduleIdx < 0 || moduleIdx >= len(course.Modules) {
		return 0
	}
	total := len(course.Modules[moduleIdx].Lessons)
	if total == 0 {
		return 0
	}
	done := 0
	for i := range course.Modules[moduleIdx].Lessons {
		if e.HasCompleted(models.LessonKey(moduleIdx, i)) {
			done++
		}
	}
	return roundPercent(done, total)
}

// recompute derives progress from the live course shape. Keys recorded
// before a course edit that no longer address a lesson are excluded, so
// progress stays within [0, 100].
func (t *Tracker) recompute(e *models.Enrollment, course *models.Course) {
	total := course.TotalLessons()
	if total == 0 {
		e.Progress = 0
		return
	}
	done := 0
	for _, key := range e.CompletedLessons {
		if course.ValidLessonKey(key) {
			done++
		}
	}
	e.Progress = roundPercent(done, total)
}

func roundPercent(done, total int) int {
	return int(math.Round(100 * float64(done) / float64(total)))
}
