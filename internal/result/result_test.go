package result

import (
	"errors"
	"testing"
)

func TestSuccess_CarriesValue(t *testing.T) {
	r := Success(42)

	if !r.IsSuccess() || r.IsFailure() {
		t.Fatalf("expected success, got failure %v", r.Err())
	}
	if r.Value() != 42 {
		t.Fatalf("expected 42, got %d", r.Value())
	}
	if r.Err() != (Error{}) {
		t.Fatalf("expected zero error on success, got %v", r.Err())
	}
}

func TestFailure_CarriesError(t *testing.T) {
	r := Failure[string](StudentUnderage)

	if !r.IsFailure() {
		t.Fatalf("expected failure")
	}
	if r.Err() != StudentUnderage {
		t.Fatalf("expected %v, got %v", StudentUnderage, r.Err())
	}
	if r.Value() != "" {
		t.Fatalf("expected zero value on failure, got %q", r.Value())
	}
}

func TestMatch_PicksBranch(t *testing.T) {
	ok := Match(Success("ana"),
		func(v string) int { return 200 },
		func(e Error) int { return 400 })
	if ok != 200 {
		t.Fatalf("expected success branch, got %d", ok)
	}

	failed := Match(Failure[string](CourseNotFound),
		func(v string) int { return 200 },
		func(e Error) int { return e.Code })
	if failed != 100 {
		t.Fatalf("expected failure branch with code 100, got %d", failed)
	}
}

func TestError_ImplementsError(t *testing.T) {
	var err error = EnrollmentAlreadyEnrolled

	var target Error
	if !errors.As(err, &target) || target.Code != 303 {
		t.Fatalf("expected errors.As to recover code 303, got %+v", target)
	}
	if got := err.Error(); got != "303: Student is already enrolled in this course" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	for _, e := range []Error{CourseNotFound, StudentNotFound, EnrollmentNotFound} {
		if !IsNotFound(e) {
			t.Errorf("expected %v to be a not-found error", e)
		}
	}
	for _, e := range []Error{StudentAlreadyExists, DatabaseError, ServerError} {
		if IsNotFound(e) {
			t.Errorf("expected %v not to be a not-found error", e)
		}
	}
}
