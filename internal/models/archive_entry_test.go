package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivePaths_DecodesSequence(t *testing.T) {
	var p ArchivePaths
	require.NoError(t, json.Unmarshal([]byte(`[{"path":"b/x","value":1},{"path":"a/y","value":"s"}]`), &p))

	require.Len(t, p, 2)
	assert.Equal(t, "b/x", p[0].Path)
	assert.Equal(t, "a/y", p[1].Path)
}

func TestArchivePaths_DecodesLegacyMappingSorted(t *testing.T) {
	var p ArchivePaths
	require.NoError(t, json.Unmarshal([]byte(`{"users/u1":{"name":"ana"},"residents/r1":"x"}`), &p))

	require.Len(t, p, 2)
	assert.Equal(t, "residents/r1", p[0].Path)
	assert.Equal(t, "users/u1", p[1].Path)
	name, _ := p[1].Value.Member("name").AsString()
	assert.Equal(t, "ana", name)
}

func TestArchivePaths_DecodesIndexedSequence(t *testing.T) {
	var p ArchivePaths
	require.NoError(t, json.Unmarshal([]byte(`{"1":{"path":"a","value":1},"0":{"path":"z","value":2}}`), &p))

	require.Len(t, p, 2)
	assert.Equal(t, "z", p[0].Path)
	assert.Equal(t, "a", p[1].Path)
}

func TestArchivePaths_RejectsScalar(t *testing.T) {
	var p ArchivePaths
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &p))
}

func TestPathsFromMap_Sorted(t *testing.T) {
	p := PathsFromMap(map[string]Node{"b": Int(1), "a": Int(2)})
	require.Len(t, p, 2)
	assert.Equal(t, "a", p[0].Path)
}

func TestArchiveEntry_NodeRoundTrip(t *testing.T) {
	by := "clerk-1"
	entry := &ArchiveEntry{
		Entity:     "residents",
		ID:         "r1",
		ArchivedAt: 1700000000000,
		ArchivedBy: &by,
		Paths:      ArchivePaths{{Path: "residents/r1", Value: MustFromAny(map[string]any{"name": "ana"})}},
		Preview:    map[string]Node{"name": String("ana")},
	}

	n, err := entry.ToNode()
	require.NoError(t, err)

	back, err := EntryFromNode(n)
	require.NoError(t, err)
	assert.Equal(t, "residents", back.Entity)
	assert.Equal(t, int64(1700000000000), back.ArchivedAt)
	require.NotNil(t, back.ArchivedBy)
	assert.Equal(t, "clerk-1", *back.ArchivedBy)
	require.Len(t, back.Paths, 1)
	assert.True(t, entry.Paths[0].Value.Equal(back.Paths[0].Value))

	name, ok := back.PreviewString("name")
	assert.True(t, ok)
	assert.Equal(t, "ana", name)
}

func TestArchiveEntry_NilPreviewOmitted(t *testing.T) {
	entry := &ArchiveEntry{Entity: "staff", ID: "s1", Paths: ArchivePaths{{Path: "staff/s1", Value: Int(1)}}}
	n, err := entry.ToNode()
	require.NoError(t, err)

	assert.False(t, n.Member("preview").IsDefined())
	assert.True(t, n.Member("archivedBy").IsNull())

	_, ok := entry.PreviewString("name")
	assert.False(t, ok)
}

func TestEntryFromNode_RejectsNonObject(t *testing.T) {
	_, err := EntryFromNode(String("x"))
	assert.Error(t, err)
}

func TestSanitizePreview(t *testing.T) {
	out := SanitizePreview(map[string]Node{"a": Undefined, "b": Null()})
	assert.Len(t, out, 1)
	assert.True(t, out["b"].IsNull())

	assert.Nil(t, SanitizePreview(map[string]Node{"a": Undefined}))
	assert.Nil(t, SanitizePreview(nil))
}
