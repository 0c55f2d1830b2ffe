package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/university-admin-api/internal/models"
)

const courseColumns = "id, title, code, description, created_at, updated_at"

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter in creation order.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses"
	var args []interface{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += " WHERE (title ILIKE $1 OR code ILIKE $1)"
		args = append(args, searchPattern(search))
	}
	query += " ORDER BY created_at ASC, id ASC"

	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by ID. sql.ErrNoRows is returned unwrapped when absent.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = "SELECT " + courseColumns + " FROM courses WHERE id = $1"
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDs fetches all courses whose ID is in ids.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	courses := []models.Course{}
	if len(ids) == 0 {
		return courses, nil
	}
	const query = "SELECT " + courseColumns + " FROM courses WHERE id = ANY($1::uuid[])"
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	return courses, nil
}

// ExistsByCode checks whether the normalized code is taken, optionally excluding an ID.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM courses WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += ")"
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check course code: %w", err)
	}
	return exists, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, title, code, description, created_at, updated_at)
        VALUES (:id, :title, :code, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return wrapWriteError("create course", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, code = :code, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return wrapWriteError("update course", err)
	}
	return nil
}

// Delete removes a course and its enrollments in one transaction.
func (r *CourseRepository) Delete(ctx context.Context, id string) (found bool, removed int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin delete course: %w", err)
	}
	defer func() {
		if err != nil || !found {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE course_id = $1`, id)
	if err != nil {
		return false, 0, fmt.Errorf("delete course enrollments: %w", err)
	}
	if removed, err = res.RowsAffected(); err != nil {
		return false, 0, fmt.Errorf("count course enrollments: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, 0, fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("count deleted courses: %w", err)
	}
	if affected == 0 {
		return false, 0, nil
	}
	found = true

	if err = tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit delete course: %w", err)
	}
	return true, removed, nil
}
