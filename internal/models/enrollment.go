package models

import "time"

// Enrollment links one student to one course. The (StudentID, CourseID) pair
// is unique and the record is never updated in place.
type Enrollment struct {
	ID         string    `db:"id" json:"_id"`
	StudentID  string    `db:"student_id" json:"studentId"`
	CourseID   string    `db:"course_id" json:"courseId"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// EnrollmentDetail is an enrollment joined with both sides. The reference
// fields keep the studentId/courseId names the UI reads.
type EnrollmentDetail struct {
	ID         string         `json:"_id"`
	Student    StudentSummary `json:"studentId"`
	Course     CourseSummary  `json:"courseId"`
	EnrolledAt time.Time      `json:"enrolledAt"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
}

// EnrolledCourse pairs a course summary with the student it belongs to, as
// returned by batch back-reference lookups.
type EnrolledCourse struct {
	StudentID string `db:"student_id"`
	CourseSummary
}

// EnrolledStudent pairs a student summary with the course it belongs to.
type EnrolledStudent struct {
	CourseID string `db:"course_id"`
	StudentSummary
}
