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

const enrollmentColumns = "id, student_id, course_id, enrolled_at, created_at, updated_at"

// EnrollmentRepository handles persistence of enrollments. It is the only
// store of the student-course relationship; both back-reference views are
// derived from it.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

type enrollmentRow struct {
	ID           string    `db:"id"`
	EnrolledAt   time.Time `db:"enrolled_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	StudentID    string    `db:"student_id"`
	StudentName  string    `db:"student_name"`
	StudentEmail string    `db:"student_email"`
	CourseID     string    `db:"course_id"`
	CourseTitle  string    `db:"course_title"`
	CourseCode   string    `db:"course_code"`
}

func (row enrollmentRow) detail() models.EnrollmentDetail {
	return models.EnrollmentDetail{
		ID:         row.ID,
		Student:    models.StudentSummary{ID: row.StudentID, Name: row.StudentName, Email: row.StudentEmail},
		Course:     models.CourseSummary{ID: row.CourseID, Title: row.CourseTitle, Code: row.CourseCode},
		EnrolledAt: row.EnrolledAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// List returns enrollments joined with student and course summaries, most
// recent first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT e.id, e.enrolled_at, e.created_at, e.updated_at,
        s.id AS student_id, s.name AS student_name, s.email AS student_email,
        c.id AS course_id, c.title AS course_title, c.code AS course_code
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id` + clause + `
        ORDER BY e.enrolled_at DESC, e.id DESC`

	var rows []enrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	details := make([]models.EnrollmentDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}

// FindByPair returns the enrollment for the student-course pair.
// sql.ErrNoRows is returned unwrapped when absent.
func (r *EnrollmentRepository) FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = "SELECT " + enrollmentColumns + " FROM enrollments WHERE student_id = $1 AND course_id = $2"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new enrollment record. A concurrent insert of the same
// pair fails with ErrUniqueViolation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrolled_at, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :enrolled_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return wrapWriteError("create enrollment", err)
	}
	return nil
}

// DeleteByPair removes the enrollment for the pair and returns it.
// sql.ErrNoRows is returned unwrapped when nothing matched.
func (r *EnrollmentRepository) DeleteByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = "DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2 RETURNING " + enrollmentColumns
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns a student's enrollments in enrollment order.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = "SELECT " + enrollmentColumns + " FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at ASC"
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByCourse returns a course's enrollments in enrollment order.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	const query = "SELECT " + enrollmentColumns + " FROM enrollments WHERE course_id = $1 ORDER BY enrolled_at ASC"
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// CourseSummariesByStudents resolves the enrolled courses of many students in
// a single query.
func (r *EnrollmentRepository) CourseSummariesByStudents(ctx context.Context, studentIDs []string) ([]models.EnrolledCourse, error) {
	courses := []models.EnrolledCourse{}
	if len(studentIDs) == 0 {
		return courses, nil
	}
	const query = `SELECT e.student_id, c.id, c.title, c.code
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = ANY($1::uuid[])
        ORDER BY e.enrolled_at ASC`
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return courses, nil
}

// StudentSummariesByCourses resolves the enrolled students of many courses in
// a single query.
func (r *EnrollmentRepository) StudentSummariesByCourses(ctx context.Context, courseIDs []string) ([]models.EnrolledStudent, error) {
	students := []models.EnrolledStudent{}
	if len(courseIDs) == 0 {
		return students, nil
	}
	const query = `SELECT e.course_id, s.id, s.name, s.email
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.course_id = ANY($1::uuid[])
        ORDER BY e.enrolled_at ASC`
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}
