// Package i18n resolves user-facing messages for the supported languages.
package i18n

import "strings"

// Supported languages.
const (
	LangEnglish  = "en"
	LangAlbanian = "sq"
)

// Message keys rendered in API responses.
const (
	StudentCreated        = "student_created"
	StudentUpdated        = "student_updated"
	StudentDeleted        = "student_deleted"
	StudentNotFound       = "student_not_found"
	StudentFieldsRequired = "student_fields_required"
	EmailTaken            = "email_taken"
	CourseCreated         = "course_created"
	CourseUpdated         = "course_updated"
	CourseDeleted         = "course_deleted"
	CourseNotFound        = "course_not_found"
	CourseFieldsRequired  = "course_fields_required"
	CodeTaken             = "code_taken"
	Enrolled              = "enrolled"
	Unenrolled            = "unenrolled"
	EnrollmentNotFound    = "enrollment_not_found"
	AlreadyEnrolled       = "already_enrolled"
	InvalidIDs            = "invalid_ids"
	InvalidID             = "invalid_id"
	NotFound              = "not_found"
	ValidationFailed      = "validation_failed"
	InvalidExportFormat   = "invalid_export_format"
	ServerError           = "server_error"
)

var messages = map[string]map[string]string{
	LangEnglish: {
		StudentCreated:        "Student created successfully",
		StudentUpdated:        "Student updated successfully",
		StudentDeleted:        "Student deleted successfully",
		StudentNotFound:       "Student not found",
		StudentFieldsRequired: "Name, email and age are required",
		EmailTaken:            "Email already exists",
		CourseCreated:         "Course created successfully",
		CourseUpdated:         "Course updated successfully",
		CourseDeleted:         "Course deleted successfully",
		CourseNotFound:        "Course not found",
		CourseFieldsRequired:  "Title and code are required",
		CodeTaken:             "Course code already exists",
		Enrolled:              "Student enrolled in course successfully",
		Unenrolled:            "Enrollment removed successfully",
		EnrollmentNotFound:    "Enrollment not found",
		AlreadyEnrolled:       "Student is already enrolled in this course",
		InvalidIDs:            "Invalid student or course id",
		InvalidID:             "Invalid id",
		NotFound:              "Resource not found",
		ValidationFailed:      "Invalid request data",
		InvalidExportFormat:   "Unsupported export format",
		ServerError:           "Something went wrong",
	},
	LangAlbanian: {
		StudentCreated:        "Studenti u krijua me sukses",
		StudentUpdated:        "Studenti u përditësua me sukses",
		StudentDeleted:        "Studenti u fshi me sukses",
		StudentNotFound:       "Studenti nuk u gjet",
		StudentFieldsRequired: "Emri, email-i dhe mosha janë të detyrueshme",
		EmailTaken:            "Email-i ekziston tashmë",
		CourseCreated:         "Kursi u krijua me sukses",
		CourseUpdated:         "Kursi u përditësua me sukses",
		CourseDeleted:         "Kursi u fshi me sukses",
		CourseNotFound:        "Kursi nuk u gjet",
		CourseFieldsRequired:  "Titulli dhe kodi janë të detyrueshëm",
		CodeTaken:             "Kodi i kursit ekziston tashmë",
		Enrolled:              "Studenti u regjistrua në kurs me sukses",
		Unenrolled:            "Regjistrimi u hoq me sukses",
		EnrollmentNotFound:    "Regjistrimi nuk u gjet",
		AlreadyEnrolled:       "Studenti është tashmë i regjistruar në këtë kurs",
		InvalidIDs:            "ID e pavlefshme e studentit ose kursit",
		InvalidID:             "ID e pavlefshme",
		NotFound:              "Burimi nuk u gjet",
		ValidationFailed:      "Të dhëna të pavlefshme",
		InvalidExportFormat:   "Format eksporti i pambështetur",
		ServerError:           "Diçka shkoi keq",
	},
}

// Resolve maps an Accept-Language header value onto a supported language.
// Anything that does not start with "sq" falls back to English.
func Resolve(acceptLanguage string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(acceptLanguage)), LangAlbanian) {
		return LangAlbanian
	}
	return LangEnglish
}

// Translate returns the message for key in lang, falling back to English and
// finally to the key itself.
func Translate(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[LangEnglish][key]; ok {
		return msg
	}
	return key
}
