package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/university-admin-api/internal/models"
	"github.com/noah-isme/university-admin-api/internal/repository"
	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	DeleteByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollmentRequest identifies a student/course pair for enroll and unenroll.
type EnrollmentRequest struct {
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
}

// EnrollmentService keeps the student/course relation consistent. The
// enrollments table is the only record of the relation, so each operation is a
// single write guarded by the unique (student_id, course_id) constraint.
type EnrollmentService struct {
	repo     enrollmentRepository
	students studentReader
	courses  courseReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, courses courseReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, cache: cache, metrics: metrics, logger: logger}
}

// Enroll links a student to a course.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollmentRequest) (*models.Enrollment, error) {
	enrollment, err := s.enroll(ctx, req)
	s.metrics.RecordEnrollment(EnrollmentOpEnroll, enrollmentResult(err))
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateViews(ctx)
	s.logger.Info("student enrolled",
		zap.String("student_id", enrollment.StudentID),
		zap.String("course_id", enrollment.CourseID),
		zap.String("enrollment_id", enrollment.ID),
	)
	return enrollment, nil
}

func (s *EnrollmentService) enroll(ctx context.Context, req EnrollmentRequest) (*models.Enrollment, error) {
	studentID, courseID, err := pairIDs(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if isNoRows(err) {
			return nil, missingReference("studentId", "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if isNoRows(err) {
			return nil, missingReference("courseId", "course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	if _, err := s.repo.FindByPair(ctx, studentID, courseID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	} else if !isNoRows(err) {
		return nil, internalError(err, "failed to check enrollment")
	}

	enrollment := &models.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		// A concurrent enroll of the same pair lost the race on the unique constraint.
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		// The student or course was deleted after the existence checks above.
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, vanishedReference(err)
		}
		return nil, internalError(err, "failed to create enrollment")
	}
	return enrollment, nil
}

// Unenroll removes the enrollment for the pair.
func (s *EnrollmentService) Unenroll(ctx context.Context, req EnrollmentRequest) error {
	removed, err := s.unenroll(ctx, req)
	s.metrics.RecordEnrollment(EnrollmentOpUnenroll, enrollmentResult(err))
	if err != nil {
		return err
	}
	s.cache.InvalidateViews(ctx)
	s.logger.Info("student unenrolled",
		zap.String("student_id", removed.StudentID),
		zap.String("course_id", removed.CourseID),
		zap.String("enrollment_id", removed.ID),
	)
	return nil
}

func (s *EnrollmentService) unenroll(ctx context.Context, req EnrollmentRequest) (*models.Enrollment, error) {
	studentID, courseID, err := pairIDs(req)
	if err != nil {
		return nil, err
	}
	removed, err := s.repo.DeleteByPair(ctx, studentID, courseID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrEnrollmentNotFound, "")
		}
		return nil, internalError(err, "failed to delete enrollment")
	}
	return removed, nil
}

// pairIDs requires both ids to be present and well formed.
func pairIDs(req EnrollmentRequest) (string, string, error) {
	studentID := strings.TrimSpace(req.StudentID)
	courseID := strings.TrimSpace(req.CourseID)
	switch {
	case studentID == "" || !validID(studentID):
		return "", "", appErrors.WithField(appErrors.Clone(appErrors.ErrMalformedReference, ""), "studentId")
	case courseID == "" || !validID(courseID):
		return "", "", appErrors.WithField(appErrors.Clone(appErrors.ErrMalformedReference, ""), "courseId")
	}
	return studentID, courseID, nil
}

func missingReference(field, message string) *appErrors.Error {
	return appErrors.WithField(appErrors.Clone(appErrors.ErrInvalidReference, message), field)
}

func vanishedReference(err error) *appErrors.Error {
	var constraintErr *repository.ConstraintError
	if errors.As(err, &constraintErr) && constraintErr.Constraint == repository.ConstraintEnrollmentCourse {
		return missingReference("courseId", "course not found")
	}
	return missingReference("studentId", "student not found")
}

func enrollmentResult(err error) string {
	switch {
	case err == nil:
		return EnrollmentResultSuccess
	case errors.Is(err, appErrors.ErrAlreadyEnrolled):
		return EnrollmentResultAlreadyEnrolled
	case errors.Is(err, appErrors.ErrEnrollmentNotFound):
		return EnrollmentResultNotFound
	case errors.Is(err, appErrors.ErrMalformedReference), errors.Is(err, appErrors.ErrInvalidReference):
		return EnrollmentResultInvalidReference
	default:
		return EnrollmentResultError
	}
}
