package treestore

import (
	"context"
	"portal/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadAbsent(t *testing.T) {
	s := NewMemoryStore()
	n, err := s.Read(context.Background(), "residents/r1")
	require.NoError(t, err)
	assert.False(t, n.IsDefined())
}

func TestMemoryStore_ParentThenChildComposes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.AtomicUpdate(ctx, map[string]models.Node{
		"residents/r1":       models.Object(map[string]models.Node{"name": models.String("ana")}),
		"residents/r1/email": models.String("ana@example.org"),
	})
	require.NoError(t, err)

	n, err := s.Read(ctx, "residents/r1")
	require.NoError(t, err)
	name, _ := n.Member("name").AsString()
	email, _ := n.Member("email").AsString()
	assert.Equal(t, "ana", name)
	assert.Equal(t, "ana@example.org", email)
}

func TestMemoryStore_InvalidPathLeavesTreeUntouched(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.AtomicUpdate(ctx, map[string]models.Node{"a": models.Int(1)}))

	err := s.AtomicUpdate(ctx, map[string]models.Node{
		"a": models.Int(2),
		"/": models.Int(3),
	})
	assert.ErrorIs(t, err, ErrInvalidPath)

	n, _ := s.Read(ctx, "a")
	v, _ := n.AsInt()
	assert.Equal(t, int64(1), v)
}

func TestMemoryStore_DeletePrunes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.AtomicUpdate(ctx, map[string]models.Node{"archives/staff/s1/id": models.String("s1")}))

	require.NoError(t, s.Delete(ctx, "archives/staff/s1"))

	n, err := s.Read(ctx, "archives")
	require.NoError(t, err)
	assert.False(t, n.IsDefined())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Read(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.AtomicUpdate(ctx, map[string]models.Node{"a": models.Int(1)}), context.Canceled)
}

func TestMemoryStore_SnapshotAndLoad(t *testing.T) {
	src := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, src.AtomicUpdate(ctx, map[string]models.Node{"users/u1/name": models.String("ana")}))

	dst := NewMemoryStore()
	dst.Load(src.Snapshot())

	root, err := dst.Read(ctx, "")
	require.NoError(t, err)
	assert.True(t, root.Equal(src.Snapshot()))
}

func TestOrderUpdates_ShortestFirst(t *testing.T) {
	ordered, err := orderUpdates(map[string]models.Node{
		"a/b/c": models.Int(1),
		"b":     models.Int(2),
		"a":     models.Int(3),
	})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"a"}, ordered[0].segs)
	assert.Equal(t, []string{"b"}, ordered[1].segs)
	assert.Equal(t, []string{"a", "b", "c"}, ordered[2].segs)
}
