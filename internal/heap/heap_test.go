package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stackvm/internal/heap"
)

func TestAllocateZeroesData(t *testing.T) {
	h := heap.New()
	ref, err := h.Allocate(0, 4)
	require.NoError(t, err)

	data, err := h.GetDataSlice(ref, 0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, data)
}

func TestCounterMonotonicity(t *testing.T) {
	h := heap.New()
	a, err := h.Allocate(0, 0)
	require.NoError(t, err)
	b, err := h.Allocate(0, 0)
	require.NoError(t, err)
	require.Less(t, a, b)
}

func TestChildOutOfBounds(t *testing.T) {
	h := heap.New()
	ref, err := h.Allocate(1, 0)
	require.NoError(t, err)

	_, err = h.GetChild(ref, 1)
	require.ErrorIs(t, err, heap.ErrChildIndexOutOfBounds)

	err = h.SetChild(ref, -1, nil)
	require.ErrorIs(t, err, heap.ErrChildIndexOutOfBounds)
}

func TestDataOutOfBounds(t *testing.T) {
	h := heap.New()
	ref, err := h.Allocate(0, 4)
	require.NoError(t, err)

	_, err = h.GetDataSlice(ref, 2, 4)
	require.ErrorIs(t, err, heap.ErrOutOfBoundsObjectDataAccess)
}

func TestStackReferenceUnderflow(t *testing.T) {
	h := heap.New()
	ref, err := h.Allocate(0, 0)
	require.NoError(t, err)

	require.NoError(t, h.DecrementStackReferences(ref)) // consumes the initial count of 1
	err = h.DecrementStackReferences(ref)
	require.ErrorIs(t, err, heap.ErrStackReferenceError)
}

// CollectGarbage on an unreachable acyclic object: after its one stack
// reference is dropped, the next collection removes it.
func TestCollectGarbageUnreachable(t *testing.T) {
	h := heap.New()
	ref, err := h.Allocate(0, 0)
	require.NoError(t, err)
	require.NoError(t, h.DecrementStackReferences(ref))

	h.CollectGarbage()
	require.Equal(t, 0, h.Len())
}

// Reachable objects survive collection.
func TestCollectGarbageKeepsRoots(t *testing.T) {
	h := heap.New()
	ref, err := h.Allocate(0, 0)
	require.NoError(t, err)

	h.CollectGarbage()
	require.Equal(t, 1, h.Len())
	refs, err := h.StackReferences(ref)
	require.NoError(t, err)
	require.Equal(t, uint16(1), refs)
}

// Scenario 6: a two-object reference cycle (A.0 -> B, B.0 -> A) whose
// stack_refs both drop to zero is fully reclaimed by tracing, even
// though neither object is reachable from the other by simple
// ref-counting alone.
func TestCollectGarbageReclaimsCycle(t *testing.T) {
	h := heap.New()
	a, err := h.Allocate(1, 0)
	require.NoError(t, err)
	b, err := h.Allocate(1, 0)
	require.NoError(t, err)

	require.NoError(t, h.SetChild(a, 0, &b))
	require.NoError(t, h.SetChild(b, 0, &a))

	// Drop the stack's hold on both: each object's only root was its
	// initial allocation count of 1.
	require.NoError(t, h.DecrementStackReferences(a))
	require.NoError(t, h.DecrementStackReferences(b))

	require.Equal(t, 2, h.Len())
	h.CollectGarbage()
	require.Equal(t, 0, h.Len())
}
