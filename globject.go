package gloo

import (
	"github.com/gogpu/gloo/backend"
	"github.com/gogpu/gloo/driver"
)

// State describes where a GPU-backed object is in its lifecycle.
type State int

// Lifecycle states.
const (
	// StatePending means the native object has not been created yet.
	StatePending State = iota

	// StateNeedsUpdate means the native object exists but host-side state
	// changed since the last upload/compile/link.
	StateNeedsUpdate

	// StateReady means the native object matches host-side state.
	StateReady

	// StateDeleted means the native object was explicitly released.
	StateDeleted
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateNeedsUpdate:
		return "needs-update"
	case StateReady:
		return "ready"
	case StateDeleted:
		return "deleted"
	}
	return "unknown"
}

// resource is implemented by each GPU-backed type on top of GLObject.
// create allocates the native object, update pushes host-side state to it,
// destroy releases it. All three run with the object's driver available.
type resource interface {
	create() error
	update() error
	destroy()
}

// GLObject is the lifecycle state machine shared by every GPU-backed
// resource: pending, created, needs-update, ready, deleted, with lazy
// on-demand (re)creation. Concrete types embed it and implement resource.
type GLObject struct {
	drv         driver.Driver
	handle      driver.Handle
	needsUpdate bool
	deleted     bool
}

// Handle returns the native handle, or driver.InvalidHandle before
// creation and after deletion.
func (o *GLObject) Handle() driver.Handle {
	return o.handle
}

// State returns the current lifecycle state.
func (o *GLObject) State() State {
	switch {
	case o.deleted:
		return StateDeleted
	case o.handle == driver.InvalidHandle:
		return StatePending
	case o.needsUpdate:
		return StateNeedsUpdate
	}
	return StateReady
}

// Driver returns the driver this object talks to. It is the driver given
// at construction, or the default backend's driver once the object first
// touches the GPU.
func (o *GLObject) Driver() driver.Driver {
	if o.drv == nil {
		o.drv = backend.Default().Driver()
	}
	return o.drv
}

// setDriver pins the driver. A nil driver keeps lazy default selection.
func (o *GLObject) setDriver(d driver.Driver) {
	if d != nil {
		o.drv = d
	}
}

// adoptDriver copies the driver from a parent object unless one is
// already pinned. Programs propagate their driver to shaders and buffers
// this way so one program never spans two drivers.
func (o *GLObject) adoptDriver(parent *GLObject) {
	if o.drv == nil {
		o.drv = parent.drv
	}
}

// markDirty schedules an update on next activation.
func (o *GLObject) markDirty() {
	o.needsUpdate = true
}

// dirty reports whether the object must be (re)created or updated before
// use.
func (o *GLObject) dirty() bool {
	return o.handle == driver.InvalidHandle || o.needsUpdate
}

// ensureReady drives the lazy lifecycle: create the native object if it
// does not exist, then run the pending update. A deleted object is
// recreated on demand.
func (o *GLObject) ensureReady(r resource) error {
	if o.handle == driver.InvalidHandle {
		if err := r.create(); err != nil {
			return err
		}
		o.deleted = false
		o.needsUpdate = true
	}
	if o.needsUpdate {
		if err := r.update(); err != nil {
			return err
		}
		o.needsUpdate = false
	}
	return nil
}

// release runs the idempotent deletion protocol: the native delete is
// issued at most once, and deleting a never-created object is a no-op.
func (o *GLObject) release(r resource) {
	if o.handle == driver.InvalidHandle {
		o.deleted = true
		return
	}
	r.destroy()
	o.handle = driver.InvalidHandle
	o.needsUpdate = false
	o.deleted = true
}
