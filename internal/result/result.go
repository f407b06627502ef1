package result

// Result is either Success(value) or Failure(error), never both.
//
// The zero value is not meaningful; always build one with Success or Failure.
type Result[T any] struct {
	value T
	err   *Error
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Failure[T any](err Error) Result[T] {
	return Result[T]{err: &err}
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }

func (r Result[T]) IsFailure() bool { return r.err != nil }

// Value returns the success value (the zero T on failure).
func (r Result[T]) Value() T { return r.value }

// Err returns the failure (the zero Error on success).
func (r Result[T]) Err() Error {
	if r.err == nil {
		return Error{}
	}
	return *r.err
}

// Match calls exactly one of the two functions, depending on the outcome.
func Match[T, R any](r Result[T], onSuccess func(T) R, onFailure func(Error) R) R {
	if r.err != nil {
		return onFailure(*r.err)
	}
	return onSuccess(r.value)
}
