package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted under the API prefix.
type Handlers struct {
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Metrics     *MetricsHandler
}

// Register mounts every API route on the given group.
func Register(api gin.IRouter, h Handlers) {
	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.POST("", h.Students.Create)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.GET("/:id", h.Courses.Get)
	courses.POST("", h.Courses.Create)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Delete)

	enroll := api.Group("/enroll")
	enroll.GET("", h.Enrollments.List)
	enroll.GET("/export", h.Enrollments.Export)
	enroll.POST("", h.Enrollments.Enroll)
	enroll.DELETE("", h.Enrollments.Unenroll)

	api.GET("/health", h.Metrics.Health)
}
