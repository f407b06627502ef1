package types

import (
	"time"

	"github.com/google/uuid"
)

// Course is something students can enroll in.
type Course struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func NewCourse(name, description string, now time.Time) Course {
	return Course{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now.UTC(),
	}
}

func (c *Course) Update(name, description string, now time.Time) {
	c.Name = name
	c.Description = description
	stamp := now.UTC()
	c.UpdatedAt = &stamp
}

// CourseRequest is the body of POST /api/courses and PUT /api/courses/{id}.
type CourseRequest struct {
	Name        string `json:"name"        validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
}

type CourseResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c Course) ToResponse() CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
