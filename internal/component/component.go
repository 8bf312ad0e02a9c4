package component

// Propagation is the verdict returned by a recovery hook.
type Propagation uint8

const (
	// Propagate lets the error reach the next hook and ancestor.
	Propagate Propagation = iota
	// StopPropagation marks the error as handled.
	StopPropagation
)

// String returns the string representation of Propagation.
func (p Propagation) String() string {
	switch p {
	case Propagate:
		return "propagate"
	case StopPropagation:
		return "stop"
	default:
		return "unknown"
	}
}

// RecoveryHook is an errorCaptured callback bound to the instance that
// registered it.
type RecoveryHook func(err error, origin Instance, info string) (Propagation, error)

// Metadata holds the display data of an instance.
type Metadata struct {
	Name         string // explicit component name
	ComponentTag string // tag the component was mounted under
	File         string // source file the component was declared in
}

// Instance is the read-only view of a tree node consumed by error routing.
type Instance interface {
	// Parent returns the parent instance or nil for the root.
	Parent() Instance
	// Root returns the root of the tree the instance belongs to.
	Root() Instance
	// Kind returns the constructor identity.
	Kind() *Kind
	// RecoveryHooks returns the errorCaptured hooks in registration order.
	RecoveryHooks() []RecoveryHook
	// Metadata returns display data.
	Metadata() Metadata
}

// IsRoot reports whether vm is the root of its tree.
func IsRoot(vm Instance) bool {
	if vm == nil {
		return false
	}
	return vm.Root() == vm
}

// Depth returns the number of ancestors above vm.
func Depth(vm Instance) int {
	if vm == nil {
		return 0
	}
	depth := 0
	for cur := vm.Parent(); cur != nil; cur = cur.Parent() {
		depth++
	}
	return depth
}
