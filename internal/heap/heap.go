// Package heap implements the machine's managed object heap: a map from
// stable references to fixed-shape objects (child slots + raw data bytes),
// reclaimed by a hybrid model — per-object stack-reference counting
// identifies the root set, and an explicit mark-and-sweep trace reclaims
// unreachable objects, including cycles.
package heap

import "errors"

var (
	// ErrAllocation is returned once the reference counter would overflow;
	// every allocation after that point fails the same way.
	ErrAllocation = errors.New("heap: allocation counter exhausted")
	// ErrObjectNotFound is returned when a reference does not resolve in
	// the heap's reference map.
	ErrObjectNotFound = errors.New("heap: object not found")
	// ErrStackReferenceError is returned when incrementing or decrementing
	// an object's stack-reference count would overflow or underflow it.
	ErrStackReferenceError = errors.New("heap: stack reference count overflow or underflow")
	// ErrChildIndexOutOfBounds is returned by child slot get/set calls
	// past an object's fixed children length.
	ErrChildIndexOutOfBounds = errors.New("heap: child index out of bounds")
	// ErrIllegalNullObjectReferenceUsage is returned when the null
	// reference (0) is used where a non-null reference is required.
	ErrIllegalNullObjectReferenceUsage = errors.New("heap: illegal use of null object reference")
	// ErrOutOfBoundsObjectDataAccess is returned by data slice get/set
	// calls that overflow or run past an object's fixed data length.
	ErrOutOfBoundsObjectDataAccess = errors.New("heap: out of bounds object data access")
)

// Reference is a non-zero 64-bit object identifier. Zero is reserved as
// the null reference and is never produced by Allocate.
type Reference uint64

// Null is the reserved null reference.
const Null Reference = 0

// NewReference validates that n is non-zero before admitting it as a
// Reference, for use where a null reference would be illegal.
func NewReference(n uint64) (Reference, error) {
	if n == 0 {
		return 0, ErrIllegalNullObjectReferenceUsage
	}
	return Reference(n), nil
}

// NewNullableReference converts n into an optional Reference, with 0
// mapping to "no reference" rather than an error.
func NewNullableReference(n uint64) *Reference {
	if n == 0 {
		return nil
	}
	r := Reference(n)
	return &r
}

// object is a heap-resident record: a root count, a fixed-length vector of
// optional child references, and a fixed-length mutable data region.
type object struct {
	stackRefs uint16
	children  []*Reference
	data      []byte
}

func newObject(numChildren, numData int) *object {
	return &object{
		stackRefs: 1,
		children:  make([]*Reference, numChildren),
		data:      make([]byte, numData),
	}
}

// Heap is a mapping from object references to objects, plus a monotonic
// non-reusing allocation counter.
type Heap struct {
	counter uint64
	objects map[Reference]*object
}

// New returns an empty heap with its allocation counter ready to mint
// reference 1.
func New() *Heap {
	return &Heap{objects: make(map[Reference]*object)}
}

// Allocate creates an object with numChildren None-filled child slots and
// numData zero-filled data bytes, with stack_refs initialised to 1 (the
// caller is expected to immediately push the returned reference).
func (h *Heap) Allocate(numChildren, numData int) (Reference, error) {
	if h.counter == ^uint64(0) {
		return 0, ErrAllocation
	}
	h.counter++
	ref := Reference(h.counter)
	h.objects[ref] = newObject(numChildren, numData)
	return ref, nil
}

func (h *Heap) get(ref Reference) (*object, error) {
	obj, ok := h.objects[ref]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

// IncrementStackReferences adds one root to ref's count.
func (h *Heap) IncrementStackReferences(ref Reference) error {
	obj, err := h.get(ref)
	if err != nil {
		return err
	}
	if obj.stackRefs == ^uint16(0) {
		return ErrStackReferenceError
	}
	obj.stackRefs++
	return nil
}

// DecrementStackReferences removes one root from ref's count.
func (h *Heap) DecrementStackReferences(ref Reference) error {
	obj, err := h.get(ref)
	if err != nil {
		return err
	}
	if obj.stackRefs == 0 {
		return ErrStackReferenceError
	}
	obj.stackRefs--
	return nil
}

// StackReferences returns the current root count for ref (for tests and
// diagnostics).
func (h *Heap) StackReferences(ref Reference) (uint16, error) {
	obj, err := h.get(ref)
	if err != nil {
		return 0, err
	}
	return obj.stackRefs, nil
}

// SetChild assigns child (possibly nil) into parent's fixed-length child
// slot at index.
func (h *Heap) SetChild(parent Reference, index int, child *Reference) error {
	obj, err := h.get(parent)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(obj.children) {
		return ErrChildIndexOutOfBounds
	}
	obj.children[index] = child
	return nil
}

// GetChild reads parent's fixed-length child slot at index.
func (h *Heap) GetChild(parent Reference, index int) (*Reference, error) {
	obj, err := h.get(parent)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(obj.children) {
		return nil, ErrChildIndexOutOfBounds
	}
	return obj.children[index], nil
}

// GetDataSlice returns length bytes of ref's data region starting at
// start, for reading. Like GetMutDataSlice's, the returned slice shares the
// object's storage rather than copying it.
func (h *Heap) GetDataSlice(ref Reference, start, length int) ([]byte, error) {
	obj, err := h.get(ref)
	if err != nil {
		return nil, err
	}
	if start < 0 || length < 0 || start+length > len(obj.data) {
		return nil, ErrOutOfBoundsObjectDataAccess
	}
	return obj.data[start : start+length], nil
}

// GetMutDataSlice returns a writable view of length bytes of ref's data
// region starting at start.
func (h *Heap) GetMutDataSlice(ref Reference, start, length int) ([]byte, error) {
	obj, err := h.get(ref)
	if err != nil {
		return nil, err
	}
	if start < 0 || length < 0 || start+length > len(obj.data) {
		return nil, ErrOutOfBoundsObjectDataAccess
	}
	return obj.data[start : start+length], nil
}

// Len reports how many live objects the heap currently holds (diagnostics
// and tests only).
func (h *Heap) Len() int {
	return len(h.objects)
}

// CollectGarbage runs one stop-the-world mark-and-sweep pass: every object
// with stack_refs > 0 is a root; anything not transitively reachable from a
// root via child references is deleted, including cycles.
func (h *Heap) CollectGarbage() {
	garbage := make(map[Reference]bool, len(h.objects))
	var roots []Reference
	for ref, obj := range h.objects {
		garbage[ref] = true
		if obj.stackRefs > 0 {
			roots = append(roots, ref)
		}
	}
	for _, root := range roots {
		h.mark(root, garbage)
	}
	for ref, isGarbage := range garbage {
		if isGarbage {
			delete(h.objects, ref)
		}
	}
}

// mark clears ref (and everything reachable from it) out of the garbage
// set. Already-cleared entries are skipped, making the walk cycle-safe.
func (h *Heap) mark(ref Reference, garbage map[Reference]bool) {
	if !garbage[ref] {
		return
	}
	garbage[ref] = false
	obj := h.objects[ref]
	for _, child := range obj.children {
		if child != nil {
			h.mark(*child, garbage)
		}
	}
}
