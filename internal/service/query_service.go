package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/university-admin-api/internal/models"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
)

type studentQueryRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

type courseQueryRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

type enrollmentQueryRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	CourseSummariesByStudents(ctx context.Context, studentIDs []string) ([]models.EnrolledCourse, error)
	StudentSummariesByCourses(ctx context.Context, courseIDs []string) ([]models.EnrolledStudent, error)
}

// QueryService assembles the read views. Relations are derived from
// enrollments at read time and fetched in batches.
type QueryService struct {
	students    studentQueryRepository
	courses     courseQueryRepository
	enrollments enrollmentQueryRepository
	cache       *CacheService
	logger      *zap.Logger
}

// NewQueryService constructs QueryService.
func NewQueryService(students studentQueryRepository, courses courseQueryRepository, enrollments enrollmentQueryRepository, cache *CacheService, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{students: students, courses: courses, enrollments: enrollments, cache: cache, logger: logger}
}

// ListStudents returns every student with the title and code of each enrolled course.
func (s *QueryService) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	key := cacheKey(cacheViewStudents, "list", filter.Search)
	var cached []models.StudentDetail
	gen := s.cache.Generation()
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	ids := make([]string, len(students))
	for i, student := range students {
		ids[i] = student.ID
	}
	related, err := s.enrollments.CourseSummariesByStudents(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled courses")
	}
	byStudent := make(map[string][]models.CourseSummary, len(students))
	for _, rc := range related {
		byStudent[rc.StudentID] = append(byStudent[rc.StudentID], rc.CourseSummary)
	}

	result := make([]models.StudentDetail, len(students))
	for i, student := range students {
		courses := byStudent[student.ID]
		if courses == nil {
			courses = []models.CourseSummary{}
		}
		result[i] = models.StudentDetail{Student: student, EnrolledCourses: courses}
	}
	_ = s.cache.SetView(ctx, key, result, gen)
	return result, nil
}

// GetStudent returns one student with the full details of each enrolled course.
func (s *QueryService) GetStudent(ctx context.Context, id string) (*models.StudentDetail, error) {
	if !validID(id) {
		return nil, invalidIDError("id")
	}
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("student not found", i18n.StudentNotFound)
		}
		return nil, internalError(err, "failed to load student")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load enrollments")
	}
	ids := make([]string, len(enrollments))
	for i, e := range enrollments {
		ids[i] = e.CourseID
	}
	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to load courses")
	}
	byID := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	detail := &models.StudentDetail{Student: *student, EnrolledCourses: make([]models.CourseSummary, 0, len(ids))}
	for _, courseID := range ids {
		c, ok := byID[courseID]
		if !ok {
			continue
		}
		detail.EnrolledCourses = append(detail.EnrolledCourses, models.CourseSummary{
			ID:          c.ID,
			Title:       c.Title,
			Code:        c.Code,
			Description: c.Description,
		})
	}
	return detail, nil
}

// ListCourses returns every course with the name and email of each enrolled student.
func (s *QueryService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	key := cacheKey(cacheViewCourses, "list", filter.Search)
	var cached []models.CourseDetail
	gen := s.cache.Generation()
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	ids := make([]string, len(courses))
	for i, course := range courses {
		ids[i] = course.ID
	}
	related, err := s.enrollments.StudentSummariesByCourses(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to load enrolled students")
	}
	byCourse := make(map[string][]models.StudentSummary, len(courses))
	for _, rs := range related {
		byCourse[rs.CourseID] = append(byCourse[rs.CourseID], rs.StudentSummary)
	}

	result := make([]models.CourseDetail, len(courses))
	for i, course := range courses {
		students := byCourse[course.ID]
		if students == nil {
			students = []models.StudentSummary{}
		}
		result[i] = models.CourseDetail{Course: course, Students: students}
	}
	_ = s.cache.SetView(ctx, key, result, gen)
	return result, nil
}

// GetCourse returns one course with the details of each enrolled student.
func (s *QueryService) GetCourse(ctx context.Context, id string) (*models.CourseDetail, error) {
	if !validID(id) {
		return nil, invalidIDError("id")
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("course not found", i18n.CourseNotFound)
		}
		return nil, internalError(err, "failed to load course")
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load enrollments")
	}
	ids := make([]string, len(enrollments))
	for i, e := range enrollments {
		ids[i] = e.StudentID
	}
	students, err := s.students.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to load students")
	}
	byID := make(map[string]models.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	detail := &models.CourseDetail{Course: *course, Students: make([]models.StudentSummary, 0, len(ids))}
	for _, studentID := range ids {
		st, ok := byID[studentID]
		if !ok {
			continue
		}
		age := st.Age
		detail.Students = append(detail.Students, models.StudentSummary{ID: st.ID, Name: st.Name, Email: st.Email, Age: &age})
	}
	return detail, nil
}

// ListEnrollments returns enrollments joined with both sides, newest first.
func (s *QueryService) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	filter.StudentID = strings.TrimSpace(filter.StudentID)
	filter.CourseID = strings.TrimSpace(filter.CourseID)
	if filter.StudentID != "" && !validID(filter.StudentID) {
		return nil, invalidIDError("studentId")
	}
	if filter.CourseID != "" && !validID(filter.CourseID) {
		return nil, invalidIDError("courseId")
	}

	key := cacheKey(cacheViewEnrollments, "list", filter.StudentID, filter.CourseID)
	var cached []models.EnrollmentDetail
	gen := s.cache.Generation()
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	_ = s.cache.SetView(ctx, key, enrollments, gen)
	return enrollments, nil
}
