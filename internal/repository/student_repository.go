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

const studentColumns = "id, name, email, age, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters in creation order.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students"
	var args []interface{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += " WHERE (name ILIKE $1 OR email ILIKE $1)"
		args = append(args, searchPattern(search))
	}
	query += " ORDER BY created_at ASC, id ASC"

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID. sql.ErrNoRows is returned unwrapped when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = "SELECT " + studentColumns + " FROM students WHERE id = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDs fetches all students whose ID is in ids. Unknown IDs are skipped.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	students := []models.Student{}
	if len(ids) == 0 {
		return students, nil
	}
	const query = "SELECT " + studentColumns + " FROM students WHERE id = ANY($1::uuid[])"
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find students by ids: %w", err)
	}
	return students, nil
}

// ExistsByEmail checks if a student with given email exists optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += ")"
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, email, age, created_at, updated_at)
        VALUES (:id, :name, :email, :age, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return wrapWriteError("create student", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, age = :age, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return wrapWriteError("update student", err)
	}
	return nil
}

// Delete removes a student together with its enrollments in one transaction.
// It reports whether the student existed and how many enrollments were removed.
func (r *StudentRepository) Delete(ctx context.Context, id string) (found bool, removed int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin delete student: %w", err)
	}
	defer func() {
		if err != nil || !found {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, id)
	if err != nil {
		return false, 0, fmt.Errorf("delete student enrollments: %w", err)
	}
	if removed, err = res.RowsAffected(); err != nil {
		return false, 0, fmt.Errorf("count student enrollments: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, 0, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("count deleted students: %w", err)
	}
	if affected == 0 {
		return false, 0, nil
	}
	found = true

	if err = tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit delete student: %w", err)
	}
	return true, removed, nil
}
