package coverity

// Outcome is the settled result of one remote call: a value or a failure.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// settle runs fn and captures its result as an Outcome.
func settle[T any](fn func() (T, error)) Outcome[T] {
	v, err := fn()
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}
