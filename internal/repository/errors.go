package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrUniqueViolation reports a write rejected by a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ErrForeignKeyViolation reports a write referencing a row that no longer exists.
var ErrForeignKeyViolation = errors.New("foreign key violation")

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// Foreign keys of the enrollments table.
const (
	ConstraintEnrollmentStudent = "enrollments_student_id_fkey"
	ConstraintEnrollmentCourse  = "enrollments_course_id_fkey"
)

// ConstraintError carries the name of the violated constraint. Kind is
// ErrUniqueViolation or ErrForeignKeyViolation.
type ConstraintError struct {
	Constraint string
	Kind       error
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
}

// Is lets callers match Kind with errors.Is.
func (e *ConstraintError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// wrapWriteError annotates err with op, translating unique and foreign key violations.
func wrapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case uniqueViolationCode:
			return fmt.Errorf("%s: %w", op, &ConstraintError{Constraint: pqErr.Constraint, Kind: ErrUniqueViolation, Err: err})
		case foreignKeyViolationCode:
			return fmt.Errorf("%s: %w", op, &ConstraintError{Constraint: pqErr.Constraint, Kind: ErrForeignKeyViolation, Err: err})
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func searchPattern(search string) string {
	return "%" + search + "%"
}
