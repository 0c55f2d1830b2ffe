package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/university-admin-api/internal/models"
	"github.com/noah-isme/university-admin-api/internal/service"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
	"github.com/noah-isme/university-admin-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, req service.EnrollmentRequest) (*models.Enrollment, error)
	Unenroll(ctx context.Context, req service.EnrollmentRequest) error
}

type enrollmentQueries interface {
	ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, format string, filter models.EnrollmentFilter) (*service.ExportResult, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	queries     enrollmentQueries
	exports     rosterExporter
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, queries enrollmentQueries, exports rosterExporter) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, queries: queries, exports: exports}
}

// List godoc
// @Summary List enrollments, newest first
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Success 200 {array} models.EnrollmentDetail
// @Router /enroll [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, err := h.queries.ListEnrollments(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Enroll godoc
// @Summary Enroll a student in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollmentRequest true "Student and course ids"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, i18n.Enrolled, gin.H{"enrollment": enrollment})
}

// Unenroll godoc
// @Summary Remove a student from a course
// @Description Ids are read from the JSON body, or from the query string when the body is empty.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollmentRequest false "Student and course ids"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /enroll [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	var req service.EnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.StudentID == "" && req.CourseID == "" {
		req.StudentID = c.Query("studentId")
		req.CourseID = c.Query("courseId")
	}
	if err := h.enrollments.Unenroll(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, i18n.Unenrolled, nil)
}

// Export godoc
// @Summary Download the enrollment roster
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorEnvelope
// @Router /enroll/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	result, err := h.exports.Roster(c.Request.Context(), c.Query("format"), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}

func filterFromQuery(c *gin.Context) models.EnrollmentFilter {
	return models.EnrollmentFilter{StudentID: c.Query("studentId"), CourseID: c.Query("courseId")}
}
