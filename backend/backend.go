package backend

import (
	"errors"

	"github.com/gogpu/gloo/driver"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or fails to initialize.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendNull is the name of the in-memory, GPU-less backend.
	BackendNull = "null"
	// BackendGL41 is the name of the OpenGL 4.1 core backend.
	BackendGL41 = "gl41"
)

// Backend owns a native graphics driver.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "null", "gl41").
	Name() string

	// Init initializes the backend. For GPU backends a current graphics
	// context is required on the calling thread.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Driver returns the native driver gloo objects talk to.
	Driver() driver.Driver
}
