package types

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment links one student to one course.
//
// Removing an enrollment never deletes the row: it flips Active to false.
// At most one active enrollment may exist per (student, course) pair.
type Enrollment struct {
	ID         uuid.UUID
	StudentID  uuid.UUID
	CourseID   uuid.UUID
	EnrolledAt time.Time
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time

	// Filled by joined reads only; ignored on writes.
	StudentName string
	CourseName  string
}

// NewEnrollment creates an active enrollment dated now.
func NewEnrollment(studentID, courseID uuid.UUID, now time.Time) Enrollment {
	now = now.UTC()
	return Enrollment{
		ID:         uuid.New(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: now,
		Active:     true,
		CreatedAt:  now,
	}
}

// Deactivate performs the soft removal.
func (e *Enrollment) Deactivate(now time.Time) {
	e.Active = false
	stamp := now.UTC()
	e.UpdatedAt = &stamp
}

// EnrollmentRequest is the body of both POST and DELETE /api/enrollments.
type EnrollmentRequest struct {
	StudentID string `json:"studentId" validate:"required,uuid"`
	CourseID  string `json:"courseId"  validate:"required,uuid"`
}

type EnrollmentResponse struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"studentId"`
	StudentName string    `json:"studentName"`
	CourseID    uuid.UUID `json:"courseId"`
	CourseName  string    `json:"courseName"`
	EnrolledAt  time.Time `json:"enrolledAt"`
	Active      bool      `json:"active"`
}

func (e Enrollment) ToResponse() EnrollmentResponse {
	return EnrollmentResponse{
		ID:          e.ID,
		StudentID:   e.StudentID,
		StudentName: e.StudentName,
		CourseID:    e.CourseID,
		CourseName:  e.CourseName,
		EnrolledAt:  e.EnrolledAt,
		Active:      e.Active,
	}
}
