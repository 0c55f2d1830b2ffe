package models

import "time"

// Student represents a learner registered at the university.
type Student struct {
	ID        string    `db:"id" json:"_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Age       int       `db:"age" json:"age"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentSummary is the compact student shape embedded in course and
// enrollment views.
type StudentSummary struct {
	ID    string `db:"id" json:"_id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Age   *int   `db:"age" json:"age,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search string
}

// StudentDetail is a student together with the courses derived from its
// enrollments.
type StudentDetail struct {
	Student
	EnrolledCourses []CourseSummary `json:"enrolledCourses"`
}
