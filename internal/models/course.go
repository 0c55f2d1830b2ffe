package models

import "time"

// Course represents a course offered by the university. Code is stored upper-case.
type Course struct {
	ID          string    `db:"id" json:"_id"`
	Title       string    `db:"title" json:"title"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseSummary is the compact course shape embedded in student and
// enrollment views. Description is only populated for detail reads.
type CourseSummary struct {
	ID          string `db:"id" json:"_id"`
	Title       string `db:"title" json:"title"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description,omitempty"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	Search string
}

// CourseDetail is a course together with the students derived from its
// enrollments.
type CourseDetail struct {
	Course
	Students []StudentSummary `json:"students"`
}
