package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `id, title, description, category, cover_object_key, max_students, status, instructor_id, modules, created_at, updated_at`

// Modules live as one JSONB document on the course row: the module and
// lesson lists are ordered, index-addressed, and always read/written as a
// whole.
func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	var modulesJSON []byte
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Category,
		&course.CoverObjectKey,
		&course.MaxStudents,
		&course.Status,
		&course.InstructorID,
		&modulesJSON,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	if len(modulesJSON) > 0 {
		if err := json.Unmarshal(modulesJSON, &course.Modules); err != nil {
			return nil, fmt.Errorf("failed to decode course modules: %w", err)
		}
	}
	return course, nil
}

func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) error {
	modulesJSON, err := json.Marshal(course.Modules)
	if err != nil {
		return fmt.Errorf("failed to encode course modules: %w", err)
	}
	query := `
		INSERT INTO courses (id, title, description, category, cover_object_key, max_students, status, instructor_id, modules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Exec(ctx, query,
		course.ID, course.Title, course.Description, course.Category, course.CoverObjectKey,
		course.MaxStudents, course.Status, course.InstructorID, modulesJSON,
		course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (r *CoursePostgres) UpdateCourse(ctx context.Context, course *models.Course) error {
	modulesJSON, err := json.Marshal(course.Modules)
	if err != nil {
		return fmt.Errorf("failed to encode course modules: %w", err)
	}
	query := `
		UPDATE courses
		   SET title = $2,
		       description = $3,
		       category = $4,
		       cover_object_key = $5,
		       max_students = $6,
		       modules = $7,
		       updated_at = $8
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		course.ID, course.Title, course.Description, course.Category,
		course.CoverObjectKey, course.MaxStudents, modulesJSON, course.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRow(ctx, query, id))
}

func (r *CoursePostgres) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE courses
		   SET status = $2,
		       updated_at = NOW()
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) ListPublished(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE status = $1 ORDER BY created_at DESC`
	return r.queryCourses(ctx, query, models.StatusPublished)
}

func (r *CoursePostgres) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE instructor_id = $1 ORDER BY created_at DESC`
	return r.queryCourses(ctx, query, instructorID)
}

func (r *CoursePostgres) CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1)`
	return r.queryCourses(ctx, query, ids)
}

func (r *CoursePostgres) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func (r *CoursePostgres) CourseStats(ctx context.Context, courseID uuid.UUID) (*models.CourseStats, error) {
	query := `
		SELECT c.id, c.title,
		       COUNT(e.id) FILTER (WHERE e.status IN ('active', 'completed')),
		       COUNT(e.id) FILTER (WHERE e.status = 'completed'),
		       COALESCE(AVG(e.progress) FILTER (WHERE e.status IN ('active', 'completed')), 0)
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		WHERE c.id = $1
		GROUP BY c.id
	`
	stats := &models.CourseStats{}
	err := r.db.QueryRow(ctx, query, courseID).Scan(
		&stats.CourseID, &stats.Title, &stats.Enrolled, &stats.Completed, &stats.AverageProgress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return stats, nil
}

func (r *CoursePostgres) AllCourseStats(ctx context.Context) ([]models.CourseStats, error) {
	query := `
		SELECT c.id, c.title,
		       COUNT(e.id) FILTER (WHERE e.status IN ('active', 'completed')),
		       COUNT(e.id) FILTER (WHERE e.status = 'completed'),
		       COALESCE(AVG(e.progress) FILTER (WHERE e.status IN ('active', 'completed')), 0)
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query course stats: %w", err)
	}
	defer rows.Close()

	var all []models.CourseStats
	for rows.Next() {
		var stats models.CourseStats
		if err := rows.Scan(&stats.CourseID, &stats.Title, &stats.Enrolled, &stats.Completed, &stats.AverageProgress); err != nil {
			return nil, err
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}
