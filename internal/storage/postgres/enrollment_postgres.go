package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

const enrollmentColumns = `id, user_id, course_id, status, progress, completed_lessons, current_module, current_lesson, enrolled_at, completed_at`

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CourseID,
		&e.Status,
		&e.Progress,
		&e.CompletedLessons,
		&e.CurrentModule,
		&e.CurrentLesson,
		&e.EnrolledAt,
		&e.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrEnrollmentNotFound
		}
		return nil, err
	}
	if e.CompletedLessons == nil {
		e.CompletedLessons = []string{}
	}
	return e, nil
}

// CreateWithCapacityCheck locks the course row, counts live enrollments
// and inserts in one transaction, so the check-then-act capacity test
// cannot race with a concurrent join.
func (r *EnrollmentPostgres) CreateWithCapacityCheck(ctx context.Context, e *models.Enrollment, maxStudents int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockAndCheckCapacity(ctx, tx, e.CourseID, maxStudents); err != nil {
		return err
	}

	query := `
		INSERT INTO enrollments (id, user_id, course_id, status, progress, completed_lessons, current_module, current_lesson, enrolled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		e.ID, e.UserID, e.CourseID, e.Status, e.Progress,
		e.CompletedLessons, e.CurrentModule, e.CurrentLesson, e.EnrolledAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return app_errors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}

	return tx.Commit(ctx)
}

// ReactivateWithCapacityCheck brings a dropped enrollment back to active
// under the same course lock, preserving its recorded completions.
func (r *EnrollmentPostgres) ReactivateWithCapacityCheck(ctx context.Context, enrollmentID, courseID uuid.UUID, maxStudents int) (*models.Enrollment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockAndCheckCapacity(ctx, tx, courseID, maxStudents); err != nil {
		return nil, err
	}

	query := `
		UPDATE enrollments
		   SET status = $2
		 WHERE id = $1 AND status = $3
		RETURNING ` + enrollmentColumns
	e, err := scanEnrollment(tx.QueryRow(ctx, query, enrollmentID, models.EnrollmentActive, models.EnrollmentDropped))
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func lockAndCheckCapacity(ctx context.Context, tx pgx.Tx, courseID uuid.UUID, maxStudents int) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, courseID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrCourseNotFound
		}
		return err
	}
	if maxStudents <= 0 {
		return nil
	}
	var live int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status <> $2`,
		courseID, models.EnrollmentDropped,
	).Scan(&live)
	if err != nil {
		return err
	}
	if live >= maxStudents {
		return app_errors.ErrCapacityExceeded
	}
	return nil
}

func (r *EnrollmentPostgres) EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	return scanEnrollment(r.db.QueryRow(ctx, query, id))
}

func (r *EnrollmentPostgres) ByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND course_id = $2`
	return scanEnrollment(r.db.QueryRow(ctx, query, userID, courseID))
}

func (r *EnrollmentPostgres) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE enrollments SET status = $2 WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrEnrollmentNotFound
	}
	return nil
}

// SaveProgress persists the whole derived progress state in one update,
// so a call either lands completely or not at all.
func (r *EnrollmentPostgres) SaveProgress(ctx context.Context, e *models.Enrollment) error {
	query := `
		UPDATE enrollments
		   SET completed_lessons = $2,
		       progress = $3,
		       current_module = $4,
		       current_lesson = $5,
		       status = $6,
		       completed_at = $7
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		e.ID, e.CompletedLessons, e.Progress, e.CurrentModule, e.CurrentLesson, e.Status, e.CompletedAt,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrEnrollmentNotFound
	}
	return nil
}

func (r *EnrollmentPostgres) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND status <> $2 ORDER BY enrolled_at DESC`
	return r.queryEnrollments(ctx, query, userID, models.EnrollmentDropped)
}

func (r *EnrollmentPostgres) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = $1 AND status <> $2 ORDER BY enrolled_at`
	return r.queryEnrollments(ctx, query, courseID, models.EnrollmentDropped)
}

func (r *EnrollmentPostgres) CountLive(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status <> $2`,
		courseID, models.EnrollmentDropped,
	).Scan(&count)
	return count, err
}

func (r *EnrollmentPostgres) queryEnrollments(ctx context.Context, query string, args ...any) ([]models.Enrollment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}
