package result

import "fmt"

// Result is either Ok with a value or Err with an error.
type Result[T any] interface {
	Match() Matcher[T]
	Value() (T, error)
	IsOk() bool
	WithDefault(T) T
}

type result[T any] struct {
	value T
	err   error
}

// Ok wraps a value.
func Ok[T any](x T) Result[T] {
	return result[T]{value: x}
}

// Err wraps an error. err should not be nil.
func Err[T any](err error) Result[T] {
	return result[T]{err: err}
}

// From converts a conventional (value, error) pair.
func From[T any](x T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(x)
}

func (r result[T]) Match() Matcher[T] {
	return matcher[T]{r: r}
}

func (r result[T]) Value() (T, error) {
	return r.value, r.err
}

func (r result[T]) IsOk() bool {
	return r.err == nil
}

func (r result[T]) WithDefault(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

func (r result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Err(%v)", r.err)
	}
	return fmt.Sprintf("Ok(%v)", r.value)
}

// AndThen chains a computation which may fail onto r. Errors are passed on
// unchanged.
func AndThen[T, S any](f func(T) Result[S], r Result[T]) Result[S] {
	v, err := r.Value()
	if err != nil {
		return Err[S](err)
	}
	return f(v)
}

// Map applies f to the value of r, if r is Ok.
func Map[T, S any](f func(T) S, r Result[T]) Result[S] {
	v, err := r.Value()
	if err != nil {
		return Err[S](err)
	}
	return Ok(f(v))
}

// MapError applies f to the error of r, if r is Err.
func MapError[T any](f func(error) error, r Result[T]) Result[T] {
	v, err := r.Value()
	if err != nil {
		return Err[T](f(err))
	}
	return Ok(v)
}

// --- Matching --------------------------------------------------------------

// Matcher is used in switch statements to destructure a Result.
type Matcher[T any] interface {
	Ok(*T) Matcher[T]
	Err(*error) Matcher[T]
}

type matcher[T any] struct {
	r result[T]
}

func (rm matcher[T]) Ok(v *T) Matcher[T] {
	if rm.r.err == nil {
		*v = rm.r.value
		return rm
	}
	return nil
}

func (rm matcher[T]) Err(err *error) Matcher[T] {
	if rm.r.err != nil {
		*err = rm.r.err
		return rm
	}
	return nil
}
