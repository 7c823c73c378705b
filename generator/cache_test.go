package generator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A project without scripts/meta.json is stale
func TestChangeCache_MissingCache(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	project := tp.project()

	changes, err := cache.Diff(project)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ReasonCacheMissing, changes[0].Reason)
	assert.Equal(t, project.CacheFile.Path(), changes[0].Path)

	stale, err := cache.IsStale(project)
	require.NoError(t, err)
	assert.True(t, stale)
}

// An empty JSON object counts as no cache at all
func TestChangeCache_EmptyCache(t *testing.T) {
	tp := newTestProject(t)
	tp.write("scripts/meta.json", "{}")
	cache := NewChangeCache(tp.fs)

	changes, err := cache.Diff(tp.project())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ReasonCacheEmpty, changes[0].Reason)
}

// Refresh stores one entry per watched file and makes the project fresh
func TestChangeCache_RefreshMakesFresh(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	project := tp.project()

	require.NoError(t, cache.Refresh(project))

	stale, err := cache.IsStale(project)
	require.NoError(t, err)
	assert.False(t, stale)

	var stored map[string]float64
	require.NoError(t, json.Unmarshal([]byte(tp.read("scripts/meta.json")), &stored))
	assert.Len(t, stored, 6)
	for _, rel := range []string{
		"include/Mod/A.h", "include/Mod/B.h", "src/A.cpp", "src/B.cpp",
		"blueprints/object_blueprint.h", "blueprints/object_blueprint.cpp",
	} {
		assert.Equal(t, ModTimeSeconds(baseTime), stored[tp.path(rel)], rel)
	}
}

// Touching a single watched file is enough to make the whole project stale
func TestChangeCache_ModifiedFile(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	require.NoError(t, cache.Refresh(tp.project()))

	tp.touch("src/B.cpp", baseTime.Add(time.Second))

	changes, err := cache.Diff(tp.project())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, tp.path("src/B.cpp"), changes[0].Path)
	assert.Equal(t, ReasonModified, changes[0].Reason)
}

// An older timestamp is a change too; only equality counts as fresh
func TestChangeCache_OlderTimestamp(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	require.NoError(t, cache.Refresh(tp.project()))

	tp.touch("blueprints/object_blueprint.h", baseTime.Add(-time.Hour))

	stale, err := cache.IsStale(tp.project())
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestChangeCache_NewFile(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	require.NoError(t, cache.Refresh(tp.project()))

	tp.write("include/Mod/C.h", "struct C {};\n")

	changes, err := cache.Diff(tp.project())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, tp.path("include/Mod/C.h"), changes[0].Path)
	assert.Equal(t, ReasonNewFile, changes[0].Reason)
}

// Removing a trait does not make the project stale, and the next refresh drops its key
func TestChangeCache_DeletedFile(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	require.NoError(t, cache.Refresh(tp.project()))

	require.NoError(t, tp.fs.Remove(tp.path("src/B.cpp")))

	project := tp.project()
	stale, err := cache.IsStale(project)
	require.NoError(t, err)
	assert.False(t, stale)

	require.NoError(t, cache.Refresh(project))
	stored, exists, err := cache.Load(project)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Len(t, stored, 5)
	assert.NotContains(t, stored, tp.path("src/B.cpp"))
}

// Keys that are not part of the watched set are ignored by Diff and dropped by Refresh
func TestChangeCache_ExtraKeys(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	project := tp.project()

	current, err := cache.Current(project)
	require.NoError(t, err)
	current["/somewhere/else.h"] = 1.5
	data, err := json.Marshal(current)
	require.NoError(t, err)
	tp.write("scripts/meta.json", string(data))

	stale, err := cache.IsStale(project)
	require.NoError(t, err)
	assert.False(t, stale)

	require.NoError(t, cache.Refresh(project))
	stored, _, err := cache.Load(project)
	require.NoError(t, err)
	assert.NotContains(t, stored, "/somewhere/else.h")
}

func TestChangeCache_CorruptCache(t *testing.T) {
	tp := newTestProject(t)
	tp.write("scripts/meta.json", "{not json")
	cache := NewChangeCache(tp.fs)

	_, err := cache.Diff(tp.project())
	assert.ErrorIs(t, err, ErrIO)

	stale, err := cache.IsStale(tp.project())
	assert.Error(t, err)
	assert.True(t, stale)
}

// Refresh never leaves temp files behind in the scripts directory
func TestChangeCache_RefreshIsAtomic(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)

	require.NoError(t, cache.Refresh(tp.project()))
	require.NoError(t, cache.Refresh(tp.project()))

	entries, err := tp.list("scripts")
	require.NoError(t, err)
	assert.Equal(t, []string{"meta.json"}, entries)
}

func TestChangeCache_Reset(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	project := tp.project()
	require.NoError(t, cache.Refresh(project))

	require.NoError(t, cache.Reset(project))
	assert.False(t, tp.exists("scripts/meta.json"))

	// resetting twice is fine
	require.NoError(t, cache.Reset(project))

	stale, err := cache.IsStale(project)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestModTimeSeconds(t *testing.T) {
	assert.Equal(t, 1700000000.5, ModTimeSeconds(time.Unix(1700000000, 500000000)))
	assert.Equal(t, ModTimeSeconds(baseTime), ModTimeSeconds(baseTime.In(time.Local)))
}

// Store persists an earlier snapshot as is, even when files moved on since
func TestChangeCache_StoreEarlierSnapshot(t *testing.T) {
	tp := newTestProject(t)
	cache := NewChangeCache(tp.fs)
	project := tp.project()

	snapshot, err := cache.Current(project)
	require.NoError(t, err)

	tp.touch("include/Mod/A.h", baseTime.Add(time.Second))
	require.NoError(t, cache.Store(project, snapshot))

	changes, err := cache.Diff(project)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Path: tp.path("include/Mod/A.h"), Reason: ReasonModified}, changes[0])
}

// Watched files that disappeared are left out of the snapshot
func TestChangeCache_CurrentSkipsMissing(t *testing.T) {
	tp := newTestProject(t)
	project := tp.project()
	require.NoError(t, tp.fs.Remove(tp.path("src/B.cpp")))

	snapshot, err := NewChangeCache(tp.fs).Current(project)
	require.NoError(t, err)
	assert.Len(t, snapshot, 5)
	assert.NotContains(t, snapshot, tp.path("src/B.cpp"))
}
