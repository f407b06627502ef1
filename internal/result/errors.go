// Package result provides the success-or-failure value every use-case
// handler returns, together with the catalogue of failures a client can see.
//
// Handlers never hand a Go error back to the HTTP layer. They return a
// Result that is either a value or one of the Error values below, and the
// controller decides the HTTP status from that.
package result

import "fmt"

// Error is a client-facing failure: a stable numeric code plus a
// human-readable description. It is serialised as-is into error bodies:
//
//	{ "code": 204, "description": "A student with this email already exists" }
type Error struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Error makes Error usable with the standard error interface, which is
// handy in logs and tests.
func (e Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Description)
}

// Course errors (1xx).
var (
	CourseNotFound           = Error{100, "Course not found"}
	CourseAlreadyExists      = Error{101, "A course with this name already exists"}
	CourseInvalidName        = Error{102, "Course name cannot be empty"}
	CourseInvalidDescription = Error{103, "Course description cannot be empty"}
)

// Student errors (2xx).
var (
	StudentNotFound      = Error{200, "Student not found"}
	StudentInvalidName   = Error{201, "Student name cannot be empty"}
	StudentInvalidEmail  = Error{202, "Invalid email address"}
	StudentUnderage      = Error{203, "Student must be at least 18 years old"}
	StudentAlreadyExists = Error{204, "A student with this email already exists"}
)

// Enrollment errors (3xx).
var (
	EnrollmentNotFound        = Error{300, "Enrollment not found"}
	EnrollmentStudentNotFound = Error{301, "Student not found for enrollment"}
	EnrollmentCourseNotFound  = Error{302, "Course not found for enrollment"}
	EnrollmentAlreadyEnrolled = Error{303, "Student is already enrolled in this course"}
	EnrollmentNotEnrolled     = Error{304, "Student is not enrolled in this course"}
)

// Infrastructure errors (9xx).
var (
	DatabaseError = Error{900, "A database error occurred"}
	ServerError   = Error{999, "An unexpected server error occurred"}
)

// IsNotFound reports whether e means "the requested resource does not exist".
// Controllers use it to answer 404 instead of 400 on lookups.
func IsNotFound(e Error) bool {
	switch e {
	case CourseNotFound, StudentNotFound, EnrollmentNotFound,
		EnrollmentStudentNotFound, EnrollmentCourseNotFound:
		return true
	}
	return false
}
