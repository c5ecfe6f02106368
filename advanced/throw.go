package advanced

import "github.com/pkg/errors"

// Threading errors through the mesh walk and the chain merging would add a lot
// of noise to code that only fails structurally. Instead, we use panics, and
// the public API recovers to convert to an error.

type MagnificationError struct {
	error
}

var (
	ErrNoIntersection = errors.New("no triangles found intersecting path")
	ErrNoTriangles    = errors.New("fewer than three usable vertices to form any triangle")
)

// Panic with a MagnificationError.
func fatalf(format string, args ...interface{}) {
	panic(MagnificationError{errors.Errorf(format, args...)})
}

// Panic with a MagnificationError wrapping a sentinel error, so that
// errors.Cause recovers the sentinel.
func fatalWrapf(cause error, format string, args ...interface{}) {
	panic(MagnificationError{errors.Wrapf(cause, format, args...)})
}

func (e MagnificationError) Cause() error {
	return errors.Cause(e.error)
}

func (e MagnificationError) Unwrap() error {
	return e.error
}

func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if magnificationError, ok := r.(MagnificationError); ok {
			return magnificationError
		}
		panic(r)
	}
	return nil
}
