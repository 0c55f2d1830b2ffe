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

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) (bool, int64, error)
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
}

// UpdateCourseRequest holds a partial course update.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Code        *string `json:"code" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a new course. Codes are stored upper-case.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Code = normalizeCode(req.Code)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload", i18n.CourseFieldsRequired)
	}
	if err := s.ensureCodeAvailable(ctx, req.Code, ""); err != nil {
		return nil, err
	}
	course := &models.Course{Title: req.Title, Code: req.Code, Description: req.Description}
	if err := s.repo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, codeTakenError()
		}
		return nil, internalError(err, "failed to create course")
	}
	s.cache.InvalidateViews(ctx)
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update applies the provided fields to an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if !validID(id) {
		return nil, invalidIDError("id")
	}
	trimPtr(req.Title)
	trimPtr(req.Description)
	if req.Code != nil {
		code := normalizeCode(*req.Code)
		req.Code = &code
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload", i18n.CourseFieldsRequired)
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("course not found", i18n.CourseNotFound)
		}
		return nil, internalError(err, "failed to load course")
	}
	if req.Code != nil && *req.Code != course.Code {
		if err := s.ensureCodeAvailable(ctx, *req.Code, id); err != nil {
			return nil, err
		}
		course.Code = *req.Code
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, codeTakenError()
		}
		return nil, internalError(err, "failed to update course")
	}
	s.cache.InvalidateViews(ctx)
	return course, nil
}

// Delete removes a course together with its enrollments.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return invalidIDError("id")
	}
	found, removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internalError(err, "failed to delete course")
	}
	if !found {
		return notFoundError("course not found", i18n.CourseNotFound)
	}
	s.metrics.RecordCascade(removed)
	s.cache.InvalidateViews(ctx)
	s.logger.Info("course deleted", zap.String("course_id", id), zap.Int64("enrollments_removed", removed))
	return nil
}

func (s *CourseService) ensureCodeAvailable(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return internalError(err, "failed to validate course code")
	}
	if exists {
		return codeTakenError()
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func codeTakenError() *appErrors.Error {
	return appErrors.WithField(appErrors.WithKey(appErrors.Clone(appErrors.ErrUniqueViolation, "course code already used"), i18n.CodeTaken), "code")
}
