package core

// Result carries either a computed value or the error that prevented it.
// Entry points collapse failures with OrEmpty, so callers never see the error.
type Result[T any] struct {
	Value T
	Err   error
}

// success wraps a computed value.
func success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// failure wraps an error.
func failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OrEmpty returns the value, or empty when the computation failed.
func (r Result[T]) OrEmpty(empty T) T {
	if r.Err != nil {
		return empty
	}
	return r.Value
}
