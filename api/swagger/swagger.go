package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Admin API",
        "description": "Students, courses and enrollments. Messages are localized with Accept-Language (en, sq).",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student records"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Enrollments", "description": "Student ↔ course enrollments"},
        {"name": "Health", "description": "Probes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"ok": {"type": "boolean"}}}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with enrolled course summaries",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/StudentDetail"}}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/StudentMessage"}},
                    "400": {"description": "Missing fields, age out of range or duplicate email", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student with enrolled course details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentDetail"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentMessage"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student and its enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses with enrolled student summaries",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/CourseDetail"}}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CourseMessage"}},
                    "400": {"description": "Missing fields or duplicate code", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course with enrolled student details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseDetail"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseMessage"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course and its enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/enroll": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments, newest first",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "courseId", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/EnrollmentDetail"}}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EnrollmentMessage"}},
                    "400": {"description": "Missing or malformed ids, or already enrolled", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Student or course does not exist", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove a student from a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/EnrollmentRequest"}},
                    {"name": "studentId", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "courseId", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Missing or malformed ids", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Enrollment not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/enroll/export": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Download the enrollment roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "studentId", "in": "query", "type": "string", "format": "uuid"},
                    {"name": "courseId", "in": "query", "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "age": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "StudentSummary": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "age": {"type": "integer"}
            }
        },
        "StudentDetail": {
            "allOf": [
                {"$ref": "#/definitions/Student"},
                {"type": "object", "properties": {"enrolledCourses": {"type": "array", "items": {"$ref": "#/definitions/CourseSummary"}}}}
            ]
        },
        "Course": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "CourseSummary": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "CourseDetail": {
            "allOf": [
                {"$ref": "#/definitions/Course"},
                {"type": "object", "properties": {"students": {"type": "array", "items": {"$ref": "#/definitions/StudentSummary"}}}}
            ]
        },
        "Enrollment": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "enrolledAt": {"type": "string", "format": "date-time"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "EnrollmentDetail": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "studentId": {"$ref": "#/definitions/StudentSummary"},
                "courseId": {"$ref": "#/definitions/CourseSummary"},
                "enrolledAt": {"type": "string", "format": "date-time"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "age": {"type": "integer", "minimum": 1, "maximum": 120}
            },
            "required": ["name", "email", "age"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "age": {"type": "integer", "minimum": 1, "maximum": 120}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["title", "code"]
        },
        "UpdateCourseRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "EnrollmentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string", "format": "uuid"},
                "courseId": {"type": "string", "format": "uuid"}
            },
            "required": ["studentId", "courseId"]
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "StudentMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "student": {"$ref": "#/definitions/Student"}
            }
        },
        "CourseMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "course": {"$ref": "#/definitions/Course"}
            }
        },
        "EnrollmentMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "enrollment": {"$ref": "#/definitions/Enrollment"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "field": {"type": "string"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
