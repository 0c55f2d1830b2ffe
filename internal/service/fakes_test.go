package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/university-admin-api/internal/models"
	"github.com/noah-isme/university-admin-api/internal/repository"
	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
)

// memDB is an in-memory stand-in for the three tables, enforcing the same
// unique constraints and cascade the PostgreSQL schema does.
type memDB struct {
	mu          sync.Mutex
	students    map[string]models.Student
	courses     map[string]models.Course
	enrollments []models.Enrollment
	clock       time.Time
	failWith    error
}

func newMemDB() *memDB {
	return &memDB{
		students: map[string]models.Student{},
		courses:  map[string]models.Course{},
		clock:    time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) addStudent(name, email string, age int) models.Student {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	s := models.Student{ID: uuid.NewString(), Name: name, Email: email, Age: age, CreatedAt: now, UpdatedAt: now}
	db.students[s.ID] = s
	return s
}

func (db *memDB) addCourse(title, code string) models.Course {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	c := models.Course{ID: uuid.NewString(), Title: title, Code: code, CreatedAt: now, UpdatedAt: now}
	db.courses[c.ID] = c
	return c
}

func (db *memDB) enrollmentCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.enrollments)
}

type fakeStudentRepo struct{ db *memDB }

func (r fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failWith != nil {
		return nil, r.db.failWith
	}
	out := []models.Student{}
	for _, s := range r.db.students {
		if filter.Search == "" || strings.Contains(strings.ToLower(s.Name+" "+s.Email), strings.ToLower(filter.Search)) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failWith != nil {
		return nil, r.db.failWith
	}
	s, ok := r.db.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r fakeStudentRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Student{}
	for _, id := range ids {
		if s, ok := r.db.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.students {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.students {
		if s.Email == student.Email {
			return &repository.ConstraintError{Constraint: "students_email_key", Kind: repository.ErrUniqueViolation}
		}
	}
	now := r.db.tick()
	student.ID = uuid.NewString()
	student.CreatedAt, student.UpdatedAt = now, now
	r.db.students[student.ID] = *student
	return nil
}

func (r fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.students {
		if s.Email == student.Email && s.ID != student.ID {
			return &repository.ConstraintError{Constraint: "students_email_key", Kind: repository.ErrUniqueViolation}
		}
	}
	student.UpdatedAt = r.db.tick()
	r.db.students[student.ID] = *student
	return nil
}

func (r fakeStudentRepo) Delete(ctx context.Context, id string) (bool, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.students[id]; !ok {
		return false, 0, nil
	}
	delete(r.db.students, id)
	removed := r.db.removeEnrollments(func(e models.Enrollment) bool { return e.StudentID == id })
	return true, removed, nil
}

type fakeCourseRepo struct{ db *memDB }

func (r fakeCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Course{}
	for _, c := range r.db.courses {
		if filter.Search == "" || strings.Contains(strings.ToLower(c.Title+" "+c.Code), strings.ToLower(filter.Search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r fakeCourseRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Course{}
	for _, id := range ids {
		if c, ok := r.db.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCourseRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.courses {
		if c.Code == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.courses {
		if c.Code == course.Code {
			return &repository.ConstraintError{Constraint: "courses_code_key", Kind: repository.ErrUniqueViolation}
		}
	}
	now := r.db.tick()
	course.ID = uuid.NewString()
	course.CreatedAt, course.UpdatedAt = now, now
	r.db.courses[course.ID] = *course
	return nil
}

func (r fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	course.UpdatedAt = r.db.tick()
	r.db.courses[course.ID] = *course
	return nil
}

func (r fakeCourseRepo) Delete(ctx context.Context, id string) (bool, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.courses[id]; !ok {
		return false, 0, nil
	}
	delete(r.db.courses, id)
	removed := r.db.removeEnrollments(func(e models.Enrollment) bool { return e.CourseID == id })
	return true, removed, nil
}

// removeEnrollments must be called with the lock held.
func (db *memDB) removeEnrollments(match func(models.Enrollment) bool) int64 {
	kept := db.enrollments[:0]
	var removed int64
	for _, e := range db.enrollments {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	db.enrollments = kept
	return removed
}

type fakeEnrollmentRepo struct{ db *memDB }

func (r fakeEnrollmentRepo) FindByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			found := e
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return &repository.ConstraintError{Constraint: "enrollments_student_course_key", Kind: repository.ErrUniqueViolation}
		}
	}
	if _, ok := r.db.students[enrollment.StudentID]; !ok {
		return &repository.ConstraintError{Constraint: repository.ConstraintEnrollmentStudent, Kind: repository.ErrForeignKeyViolation}
	}
	if _, ok := r.db.courses[enrollment.CourseID]; !ok {
		return &repository.ConstraintError{Constraint: repository.ConstraintEnrollmentCourse, Kind: repository.ErrForeignKeyViolation}
	}
	now := r.db.tick()
	enrollment.ID = uuid.NewString()
	enrollment.EnrolledAt, enrollment.CreatedAt, enrollment.UpdatedAt = now, now, now
	r.db.enrollments = append(r.db.enrollments, *enrollment)
	return nil
}

func (r fakeEnrollmentRepo) DeleteByPair(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, e := range r.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			r.db.enrollments = append(r.db.enrollments[:i], r.db.enrollments[i+1:]...)
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.EnrollmentDetail{}
	for i := len(r.db.enrollments) - 1; i >= 0; i-- {
		e := r.db.enrollments[i]
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		s := r.db.students[e.StudentID]
		c := r.db.courses[e.CourseID]
		out = append(out, models.EnrollmentDetail{
			ID:         e.ID,
			Student:    models.StudentSummary{ID: s.ID, Name: s.Name, Email: s.Email},
			Course:     models.CourseSummary{ID: c.ID, Title: c.Title, Code: c.Code},
			EnrolledAt: e.EnrolledAt,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
		})
	}
	return out, nil
}

func (r fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Enrollment{}
	for _, e := range r.db.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Enrollment{}
	for _, e := range r.db.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeEnrollmentRepo) CourseSummariesByStudents(ctx context.Context, studentIDs []string) ([]models.EnrolledCourse, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := toSet(studentIDs)
	out := []models.EnrolledCourse{}
	for _, e := range r.db.enrollments {
		if _, ok := wanted[e.StudentID]; !ok {
			continue
		}
		c := r.db.courses[e.CourseID]
		out = append(out, models.EnrolledCourse{StudentID: e.StudentID, CourseSummary: models.CourseSummary{ID: c.ID, Title: c.Title, Code: c.Code}})
	}
	return out, nil
}

func (r fakeEnrollmentRepo) StudentSummariesByCourses(ctx context.Context, courseIDs []string) ([]models.EnrolledStudent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := toSet(courseIDs)
	out := []models.EnrolledStudent{}
	for _, e := range r.db.enrollments {
		if _, ok := wanted[e.CourseID]; !ok {
			continue
		}
		s := r.db.students[e.StudentID]
		out = append(out, models.EnrolledStudent{CourseID: e.CourseID, StudentSummary: models.StudentSummary{ID: s.ID, Name: s.Name, Email: s.Email}})
	}
	return out, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// memCache is a map-backed CacheRepository. Patterns support a trailing '*'.
type memCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deletes int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]interface{}{}}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *[]models.StudentDetail:
		*d = value.([]models.StudentDetail)
	case *[]models.CourseDetail:
		*d = value.([]models.CourseDetail)
	case *[]models.EnrollmentDetail:
		*d = value.([]models.EnrollmentDetail)
	}
	return nil
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// harness wires every service over one memDB.
type harness struct {
	db          *memDB
	cache       *memCache
	metrics     *MetricsService
	students    *StudentService
	courses     *CourseService
	enrollments *EnrollmentService
	queries     *QueryService
}

func newHarness() *harness {
	db := newMemDB()
	mc := newMemCache()
	metrics := NewMetricsService()
	cache := NewCacheService(mc, metrics, time.Minute, nil, true)
	return &harness{
		db:          db,
		cache:       mc,
		metrics:     metrics,
		students:    NewStudentService(fakeStudentRepo{db}, cache, metrics, nil, nil),
		courses:     NewCourseService(fakeCourseRepo{db}, cache, metrics, nil, nil),
		enrollments: NewEnrollmentService(fakeEnrollmentRepo{db}, fakeStudentRepo{db}, fakeCourseRepo{db}, cache, metrics, nil),
		queries:     NewQueryService(fakeStudentRepo{db}, fakeCourseRepo{db}, fakeEnrollmentRepo{db}, cache, nil),
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
