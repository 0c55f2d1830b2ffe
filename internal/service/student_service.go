package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/university-admin-api/internal/models"
	"github.com/noah-isme/university-admin-api/internal/repository"
	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, int64, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Age   *int   `json:"age" validate:"required,min=1,max=120"`
}

// UpdateStudentRequest holds a partial student update. Nil fields are left
// unchanged; derived fields such as enrolledCourses are not accepted.
type UpdateStudentRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,min=1"`
	Age   *int    `json:"age" validate:"omitempty,min=1,max=120"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload", i18n.StudentFieldsRequired)
	}
	if err := s.ensureEmailAvailable(ctx, req.Email, ""); err != nil {
		return nil, err
	}
	student := &models.Student{Name: req.Name, Email: req.Email, Age: *req.Age}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, emailTakenError()
		}
		return nil, internalError(err, "failed to create student")
	}
	s.cache.InvalidateViews(ctx)
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update applies the provided fields to an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if !validID(id) {
		return nil, invalidIDError("id")
	}
	trimPtr(req.Name)
	trimPtr(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload", i18n.StudentFieldsRequired)
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("student not found", i18n.StudentNotFound)
		}
		return nil, internalError(err, "failed to load student")
	}
	if req.Email != nil && *req.Email != student.Email {
		if err := s.ensureEmailAvailable(ctx, *req.Email, id); err != nil {
			return nil, err
		}
		student.Email = *req.Email
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Age != nil {
		student.Age = *req.Age
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, emailTakenError()
		}
		return nil, internalError(err, "failed to update student")
	}
	s.cache.InvalidateViews(ctx)
	return student, nil
}

// Delete removes a student together with its enrollments.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return invalidIDError("id")
	}
	found, removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internalError(err, "failed to delete student")
	}
	if !found {
		return notFoundError("student not found", i18n.StudentNotFound)
	}
	s.metrics.RecordCascade(removed)
	s.cache.InvalidateViews(ctx)
	s.logger.Info("student deleted", zap.String("student_id", id), zap.Int64("enrollments_removed", removed))
	return nil
}

func (s *StudentService) ensureEmailAvailable(ctx context.Context, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return internalError(err, "failed to validate email")
	}
	if exists {
		return emailTakenError()
	}
	return nil
}

func emailTakenError() *appErrors.Error {
	return appErrors.WithField(appErrors.WithKey(appErrors.Clone(appErrors.ErrUniqueViolation, "email already used"), i18n.EmailTaken), "email")
}
