package try

// Fataler has a Fatal method, like *testing.T or *log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either wraps a (T, error) pair.
//
// When the error is nil the Either is "ok" and carries a valid T.
// Otherwise the T value is not to be used.
type Either[T any] interface {
	// Get returns the (value, nil) pair when ok, (zero-value, error) otherwise.
	Get() (T, error)

	// OrFatal returns the T value when ok.
	//
	// Otherwise it calls ftl.Fatal(err). If ftl has a Helper method
	// (like *testing.T), that is called first.
	OrFatal(ftl Fataler) T

	// OrDefault returns the T value when ok, d otherwise.
	OrDefault(d T) T
}

// To wraps a function call returning (T, error) into an Either.
func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return success[T]{ok}
	}
	return failure[T]{ng}
}

type success[T any] struct {
	value T
}

func (ok success[T]) Get() (T, error) {
	return ok.value, nil
}

func (ok success[T]) OrDefault(T) T {
	return ok.value
}

func (ok success[T]) OrFatal(Fataler) T {
	return ok.value
}

type failure[T any] struct {
	err error
}

func (ng failure[T]) Get() (T, error) {
	return *new(T), ng.err
}

func (ng failure[T]) OrDefault(d T) T {
	return d
}

func (ng failure[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)

	return *new(T)
}
