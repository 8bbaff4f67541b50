package hazard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistrySnapshotSeesPublishedHazards(t *testing.T) {
	var r registry[int]
	s1 := r.acquire()
	s2 := r.acquire()

	p := new(int)
	s1.hazard.Store(p)

	snap := r.snapshot()
	_, ok := snap[p]
	require.True(t, ok)
	require.Len(t, snap, 1)

	r.release(s1)
	r.release(s2)
}

func TestRegistryAcquireGrowsOnlyWhenNoSlotFree(t *testing.T) {
	var r registry[int]
	s1 := r.acquire()
	require.EqualValues(t, 1, r.size())

	r.release(s1)
	s2 := r.acquire()
	require.EqualValues(t, 1, r.size())
	require.Same(t, s1, s2)

	s3 := r.acquire()
	require.EqualValues(t, 2, r.size())
	require.NotSame(t, s2, s3)

	r.release(s2)
	r.release(s3)
}
