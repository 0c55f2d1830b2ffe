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

type courseService interface {
	Create(ctx context.Context, req service.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req service.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
}

type courseQueries interface {
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error)
	GetCourse(ctx context.Context, id string) (*models.CourseDetail, error)
}

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses courseService
	queries courseQueries
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService, queries courseQueries) *CourseHandler {
	return &CourseHandler{courses: courses, queries: queries}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param search query string false "Search by title or code"
// @Success 200 {array} models.CourseDetail
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.queries.ListCourses(c.Request.Context(), models.CourseFilter{Search: c.Query("search")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Get godoc
// @Summary Get course detail with enrolled students
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.CourseDetail
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.queries.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorEnvelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, i18n.CourseCreated, gin.H{"course": course})
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, i18n.CourseUpdated, gin.H{"course": course})
}

// Delete godoc
// @Summary Delete course and its enrollments
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, i18n.CourseDeleted, nil)
}
