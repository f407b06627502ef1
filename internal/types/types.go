// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
//
// Three families live here:
//
//   - entities (Student, Course, Enrollment): what the storage layer persists
//   - requests (StudentRequest, ...): what clients send, with validate:"..." rules
//   - responses (StudentResponse, ...): flat projections returned as JSON
package types

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates such as a birth date.
const DateLayout = "2006-01-02"

// AdultAge is the minimum age a student must have to be registered.
const AdultAge = 18

// Student represents a student record in our system.
//
// A student may own zero or more enrollments, but the enrollments are not
// loaded with the student; they are queried through the enrollment
// repository when needed.
type Student struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	BirthDate time.Time  `json:"birthDate"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewStudent builds a fresh student with a random identity.
func NewStudent(name, email string, birthDate, now time.Time) Student {
	return Student{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		BirthDate: birthDate,
		CreatedAt: now.UTC(),
	}
}

// Update replaces the mutable fields and stamps the update time.
func (s *Student) Update(name, email string, birthDate, now time.Time) {
	s.Name = name
	s.Email = email
	s.BirthDate = birthDate
	stamp := now.UTC()
	s.UpdatedAt = &stamp
}

// Age returns the student's age in whole years on the given day.
//
// The rule is "subtract the birth year, then take one off if the birthday
// has not happened yet this year". Someone born on 29 February is still
// 17 on 28 February of the year they would turn 18.
// Both dates are compared as UTC calendar dates.
func (s Student) Age(today time.Time) int {
	today = today.UTC()
	birth := s.BirthDate.UTC()
	age := today.Year() - birth.Year()

	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}

	return age
}

// IsAdult reports whether the student is at least AdultAge on the given day.
func (s Student) IsAdult(today time.Time) bool {
	return s.Age(today) >= AdultAge
}

// StudentRequest is the body of POST /api/students and PUT /api/students/{id}.
//
// BirthDate travels as a plain "YYYY-MM-DD" string so the validator can
// check its format before we ever try to parse it.
type StudentRequest struct {
	Name      string `json:"name"      validate:"required,min=3,max=200"`
	Email     string `json:"email"     validate:"required,email,max=100"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}

// StudentResponse is the JSON projection of a Student.
type StudentResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	BirthDate string    `json:"birthDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse maps the entity to its DTO.
func (s Student) ToResponse() StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		BirthDate: s.BirthDate.Format(DateLayout),
		CreatedAt: s.CreatedAt,
	}
}

// ParseDate parses a "YYYY-MM-DD" string into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}
