package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// CourseRepository handles database operations for the course catalog
type CourseRepository struct {
	db DB
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListActive retrieves the active course catalog ordered by name
func (r *CourseRepository) ListActive() ([]models.Course, error) {
	return r.list(`SELECT id, name, code, base_price, category, active, created_at, updated_at
		FROM courses WHERE active = TRUE ORDER BY name`)
}

// ListAll retrieves every catalog entry including inactive ones (admin view)
func (r *CourseRepository) ListAll() ([]models.Course, error) {
	return r.list(`SELECT id, name, code, base_price, category, active, created_at, updated_at
		FROM courses ORDER BY name`)
}

// GetByID retrieves a course by catalog id
func (r *CourseRepository) GetByID(courseID string) (*models.Course, error) {
	query := `
		SELECT id, name, code, base_price, category, active, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	course := &models.Course{}
	err := r.db.QueryRow(query, courseID).Scan(
		&course.ID, &course.Name, &course.Code, &course.BasePrice,
		&course.Category, &course.Active, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	return course, nil
}

// Upsert creates or replaces a catalog entry
func (r *CourseRepository) Upsert(course *models.Course) error {
	query := `
		INSERT INTO courses (id, name, code, base_price, category, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, code = EXCLUDED.code,
		    base_price = EXCLUDED.base_price, category = EXCLUDED.category,
		    active = EXCLUDED.active, updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		course.ID, course.Name, course.Code, course.BasePrice,
		course.Category, course.Active,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}

	return nil
}

// Delete removes a catalog entry
func (r *CourseRepository) Delete(courseID string) error {
	result, err := r.db.Exec(`DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("course not found: %w", ErrNotFound)
	}

	return nil
}

func (r *CourseRepository) list(query string) ([]models.Course, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var course models.Course
		err := rows.Scan(
			&course.ID, &course.Name, &course.Code, &course.BasePrice,
			&course.Category, &course.Active, &course.CreatedAt, &course.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}
