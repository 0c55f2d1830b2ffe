package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-admin-api/internal/models"
	"github.com/noah-isme/university-admin-api/internal/service"
	"github.com/noah-isme/university-admin-api/pkg/middleware/locale"
)

type studentServiceMock struct {
	createReq  service.CreateStudentRequest
	updateID   string
	updateReq  service.UpdateStudentRequest
	deletedID  string
	student    *models.Student
	err        error
	createCall bool
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	m.createCall = true
	m.createReq = req
	return m.student, m.err
}

func (m *studentServiceMock) Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error) {
	m.updateID = id
	m.updateReq = req
	return m.student, m.err
}

func (m *studentServiceMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

type courseServiceMock struct {
	createReq service.CreateCourseRequest
	updateReq service.UpdateCourseRequest
	deletedID string
	course    *models.Course
	err       error
}

func (m *courseServiceMock) Create(ctx context.Context, req service.CreateCourseRequest) (*models.Course, error) {
	m.createReq = req
	return m.course, m.err
}

func (m *courseServiceMock) Update(ctx context.Context, id string, req service.UpdateCourseRequest) (*models.Course, error) {
	m.updateReq = req
	return m.course, m.err
}

func (m *courseServiceMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

type enrollmentServiceMock struct {
	enrollReq   service.EnrollmentRequest
	unenrollReq service.EnrollmentRequest
	enrollment  *models.Enrollment
	err         error
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, req service.EnrollmentRequest) (*models.Enrollment, error) {
	m.enrollReq = req
	return m.enrollment, m.err
}

func (m *enrollmentServiceMock) Unenroll(ctx context.Context, req service.EnrollmentRequest) error {
	m.unenrollReq = req
	return m.err
}

type queryServiceMock struct {
	students      []models.StudentDetail
	student       *models.StudentDetail
	courses       []models.CourseDetail
	course        *models.CourseDetail
	enrollments   []models.EnrollmentDetail
	studentFilter models.StudentFilter
	courseFilter  models.CourseFilter
	enrollFilter  models.EnrollmentFilter
	err           error
}

func (m *queryServiceMock) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	m.studentFilter = filter
	return m.students, m.err
}

func (m *queryServiceMock) GetStudent(ctx context.Context, id string) (*models.StudentDetail, error) {
	return m.student, m.err
}

func (m *queryServiceMock) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error) {
	m.courseFilter = filter
	return m.courses, m.err
}

func (m *queryServiceMock) GetCourse(ctx context.Context, id string) (*models.CourseDetail, error) {
	return m.course, m.err
}

func (m *queryServiceMock) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	m.enrollFilter = filter
	return m.enrollments, m.err
}

type exporterMock struct {
	format string
	filter models.EnrollmentFilter
	result *service.ExportResult
	err    error
}

func (m *exporterMock) Roster(ctx context.Context, format string, filter models.EnrollmentFilter) (*service.ExportResult, error) {
	m.format = format
	m.filter = filter
	return m.result, m.err
}

type testAPI struct {
	router      *gin.Engine
	students    *studentServiceMock
	courses     *courseServiceMock
	enrollments *enrollmentServiceMock
	queries     *queryServiceMock
	exports     *exporterMock
}

func newTestAPI() *testAPI {
	gin.SetMode(gin.TestMode)
	api := &testAPI{
		students:    &studentServiceMock{},
		courses:     &courseServiceMock{},
		enrollments: &enrollmentServiceMock{},
		queries:     &queryServiceMock{},
		exports:     &exporterMock{},
	}
	r := gin.New()
	r.Use(locale.Middleware())
	Register(r.Group("/api"), Handlers{
		Students:    NewStudentHandler(api.students, api.queries),
		Courses:     NewCourseHandler(api.courses, api.queries),
		Enrollments: NewEnrollmentHandler(api.enrollments, api.queries, api.exports),
		Metrics:     NewMetricsHandler(nil),
	})
	api.router = r
	return api
}

func (a *testAPI) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
